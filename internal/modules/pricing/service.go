// README: Pricing service computes per-call cost estimates from catalog rates.
package pricing

import (
	"math"

	"shutterplan/internal/ai"
	"shutterplan/internal/types"
)

const tokensPerRate = 1_000_000

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Calculate prices a call in micro-USD. Rates are USD per million tokens, so a
// token at rate r costs exactly r micro-USD. Absent counts contribute zero.
func (s *Service) Calculate(req CostRequest) CostResult {
	in := microCost(req.InputTokens, req.InputCostPerM)
	out := microCost(req.OutputTokens, req.OutputCostPerM)
	return CostResult{
		Total:    in + out,
		Currency: types.CurrencyMicroUSD,
		Breakdown: map[string]int64{
			"input":  in,
			"output": out,
		},
	}
}

// Estimate prices a call against model's catalog rates.
func (s *Service) Estimate(model ai.ModelConfig, inputTokens, outputTokens *int) types.Money {
	res := s.Calculate(CostRequest{
		InputCostPerM:  model.InputCostPerM,
		OutputCostPerM: model.OutputCostPerM,
		InputTokens:    inputTokens,
		OutputTokens:   outputTokens,
	})
	return types.MicroUSD(res.Total)
}

// PerCallUSD is the expected dollar cost of a call with the given token
// volumes, used for catalog listings.
func PerCallUSD(model ai.ModelConfig, inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*model.InputCostPerM + float64(outputTokens)*model.OutputCostPerM) / tokensPerRate
}

func microCost(tokens *int, ratePerM float64) int64 {
	if tokens == nil || *tokens <= 0 || ratePerM <= 0 {
		return 0
	}
	return int64(math.Round(float64(*tokens) * ratePerM))
}
