package engine

// EvaluateSavings converts the actual/recommended gap into a signed
// daily dollar figure: positive is money wasted by over-dosing,
// negative is the risk-avoided-cost placeholder for under-dosing.
//
// zeroUnderDosing switches the under-dosing convention for consumers
// that only aggregate recoverable waste: negative values are reported
// as zero instead.
func EvaluateSavings(actual, recommended, costPerGallon float64, zeroUnderDosing bool) float64 {
	savings := (actual - recommended) * costPerGallon
	if zeroUnderDosing && savings < 0 {
		return 0
	}
	return savings
}
