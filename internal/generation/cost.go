package generation

import "fmt"

// CostPer1KTokens is the billing rate for generation tokens in USD.
const CostPer1KTokens = 0.03

// Cost returns the USD cost of the given token count.
func Cost(tokens int) float64 {
	return (float64(tokens) / 1000) * CostPer1KTokens
}

// FormatCost renders a token cost for display, e.g. "$0.45".
func FormatCost(tokens int) string {
	return fmt.Sprintf("$%.2f", Cost(tokens))
}
