// Package format renders engine figures for display.
package format

import (
	"fmt"
	"math"

	"github.com/iwvelando/str-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Japanese)

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// Yen returns a yen string with thousands separators (e.g., "¥1,680,000").
// Fractional yen are truncated toward zero, negative amounts render as
// "¥-1,234" and non-finite amounts as "¥0".
func Yen(amount float64) string {
	if !mathutil.IsFinite(amount) {
		return "¥0"
	}
	whole := decimal.NewFromFloat(amount).Truncate(0)
	if whole.GreaterThan(maxInt64) || whole.LessThan(minInt64) {
		f, _ := whole.Float64()
		return "¥" + printer.Sprintf("%.0f", f)
	}
	return "¥" + printer.Sprintf("%d", whole.IntPart())
}

// YenValue formats an arbitrary value as Yen, falling back to "¥0" when the
// value cannot be read as a number.
func YenValue(value interface{}) string {
	amount, err := cast.ToFloat64E(value)
	if err != nil {
		return "¥0"
	}
	return Yen(amount)
}

// Percent renders a percentage with one decimal place (e.g., "37.6%").
func Percent(value float64) string {
	if !mathutil.IsFinite(value) {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", value)
}
