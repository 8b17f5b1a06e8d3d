// Package format renders run times and dates for the wire. Formatting is
// display-only: cached and fresh values are raw typed data and both pass
// through here, so hits and misses produce identical bytes.
package format

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// RunTime renders a fixed-point elapsed time as "M:SS.ffff" when it is a
// minute or longer, otherwise "SS.ffff".
func RunTime(d decimal.Decimal) string {
	if d.Sign() < 0 {
		d = decimal.Zero
	}

	minutes := d.Div(sixty).Floor().IntPart()
	seconds := d.Sub(decimal.NewFromInt(minutes).Mul(sixty))

	if minutes > 0 {
		s := seconds.StringFixed(4)
		if seconds.LessThan(decimal.NewFromInt(10)) {
			s = "0" + s
		}
		return fmt.Sprintf("%d:%s", minutes, s)
	}
	return seconds.StringFixed(4)
}

// Date renders a unix timestamp as a human-readable ordinal-day form,
// e.g. "2nd of January 2006, 15:04:05".
func Date(unix int64) string {
	t := time.Unix(unix, 0).UTC()
	return fmt.Sprintf("%s of %s %d, %s",
		ordinal(t.Day()),
		t.Month().String(),
		t.Year(),
		t.Format("15:04:05"),
	)
}

func ordinal(n int) string {
	if r := n % 100; r >= 11 && r <= 13 {
		return fmt.Sprintf("%dth", n)
	}
	switch n % 10 {
	case 1:
		return fmt.Sprintf("%dst", n)
	case 2:
		return fmt.Sprintf("%dnd", n)
	case 3:
		return fmt.Sprintf("%drd", n)
	default:
		return fmt.Sprintf("%dth", n)
	}
}
