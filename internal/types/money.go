// README: Common money value object used across modules.
package types

import "fmt"

// CurrencyMicroUSD marks amounts stored in millionths of a US dollar.
const CurrencyMicroUSD = "USD_MICRO"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MicroUSD(amount int64) Money {
	return Money{Amount: amount, Currency: CurrencyMicroUSD}
}

// Add sums two amounts of the same currency. A zero-value operand adopts the
// other's currency.
func (m Money) Add(o Money) Money {
	if m.Currency == "" {
		m.Currency = o.Currency
	}
	m.Amount += o.Amount
	return m
}

// USD converts a micro-USD amount to dollars.
func (m Money) USD() float64 {
	return float64(m.Amount) / 1e6
}

func (m Money) String() string {
	if m.Currency == CurrencyMicroUSD {
		return fmt.Sprintf("$%.6f", m.USD())
	}
	return fmt.Sprintf("%d %s", m.Amount, m.Currency)
}
