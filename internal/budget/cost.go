package budget

// costPerMillion is the $/1M-token rate per model. Unknown models fall
// back to the baseline rate.
var costPerMillion = map[string]float64{
	"gemini-2.5-flash-lite":  0.01,
	"gemini-3-flash-preview": 0.03,
}

const baselineCostPerMillion = 0.01

// EstimateCost converts a token count into an approximate USD cost for the
// given model.
func EstimateCost(tokens int, model string) float64 {
	rate, ok := costPerMillion[model]
	if !ok {
		rate = baselineCostPerMillion
	}
	return float64(tokens) / 1_000_000 * rate
}
