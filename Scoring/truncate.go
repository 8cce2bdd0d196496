package Scoring

import "math"

// TruncateToOneDecimal cuts a value to one decimal place, truncating toward
// zero. Truncation, not rounding: 12.37 -> 12.3 and -12.37 -> -12.3. Every
// finalized score, allocation and share percent goes through this rule, so
// it must stay bit-exact everywhere.
func TruncateToOneDecimal(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Trunc(x*10.0) / 10.0
}
