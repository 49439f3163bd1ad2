// README: Cost estimate request/result for one model call.
package pricing

type CostRequest struct {
	InputCostPerM  float64
	OutputCostPerM float64
	InputTokens    *int
	OutputTokens   *int
}

type CostResult struct {
	Total     int64
	Currency  string
	Breakdown map[string]int64
}
