package report

import (
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// FormatMinutes rounds to one decimal place, ties to even, working from
// the exact binary value of v so results match float rounding elsewhere.
func FormatMinutes(v float64) string {
	var d apd.Decimal
	if _, _, err := d.SetString(strconv.FormatFloat(v, 'f', 30, 64)); err != nil {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	ctx := apd.BaseContext.WithPrecision(40)
	ctx.Rounding = apd.RoundHalfEven

	var out apd.Decimal
	if _, err := ctx.Quantize(&out, &d, -1); err != nil {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return out.Text('f')
}
