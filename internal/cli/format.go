package cli

import (
	"fmt"
	"strings"
	"time"
)

// Display layouts.
const (
	DateLayout     = "Jan 02, 2006"
	DateTimeLayout = "Jan 02, 2006 15:04"
)

// FormatCurrency formats an amount as dollars with thousands separators and
// two decimal places.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")

	result := "$" + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl float64) string {
	formatted := FormatCurrency(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatPrice formats a price. Sub-10 prices, which covers most currency
// pairs, get five decimals.
func FormatPrice(price float64) string {
	if price == 0 {
		return "-"
	}
	if price >= 10 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.5f", price)
}

// FormatSize formats a lot size or quantity.
func FormatSize(size float64) string {
	return fmt.Sprintf("%.4f", size)
}

// FormatRiskReward formats a reward:risk ratio.
func FormatRiskReward(rr float64) string {
	if rr == 0 {
		return "-"
	}
	return fmt.Sprintf("1:%.2f", rr)
}

// FormatDate formats a date in local time.
func FormatDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// FormatDateTime formats a date and time in local time.
func FormatDateTime(t time.Time) string {
	return t.Local().Format(DateTimeLayout)
}

// FormatStreak renders a signed streak as W3 or L2.
func FormatStreak(n int) string {
	switch {
	case n > 0:
		return fmt.Sprintf("W%d", n)
	case n < 0:
		return fmt.Sprintf("L%d", -n)
	default:
		return "-"
	}
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// ShortID returns the last eight characters of a trade id, which is the
// random part of the ULID and enough to tell trades apart on screen.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
