package ui

import (
	"fmt"
	"strconv"
)

// BRL formats a real amount as "R$ 12.34".
func BRL(v float64) string {
	return fmt.Sprintf("R$ %.2f", v)
}

// BTC formats an asset amount with eight decimals.
func BTC(v float64) string {
	return fmt.Sprintf("%.8f BTC", v)
}

// SignedPercent formats a percent change with an explicit sign when
// non-negative, e.g. "+1.5%" or "-0.3%".
func SignedPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64) + "%"
	if v >= 0 {
		return "+" + s
	}
	return s
}
