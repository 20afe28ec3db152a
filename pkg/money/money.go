// Package money renders amounts and relative changes for adjustment logs.
package money

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Amount formats v rounded to whole units with thousands separators.
func Amount(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// SignedAmount is Amount with an explicit sign.
func SignedAmount(v float64) string {
	if v < 0 {
		return "-" + Amount(-v)
	}
	return "+" + Amount(v)
}

// Percent formats a percentage change with one decimal and explicit sign.
func Percent(pct float64) string {
	if math.Abs(pct) < 0.05 {
		pct = 0
	}
	return fmt.Sprintf("%+.1f%%", pct)
}

// Change describes the move from before to after as a signed percentage.
func Change(before, after float64) string {
	if before == 0 {
		return Percent(0)
	}
	return Percent((after - before) / before * 100)
}
