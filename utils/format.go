package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatDate returns the date as "2 January 2006" in local time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	local := t.In(time.Local)
	return strconv.Itoa(local.Day()) + " " + local.Format("January 2006")
}

// FormatDatePtr returns the formatted date for pointer values.
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}

// FormatAmount renders a dollar amount with thousands separators. Cents are
// dropped when zero.
func FormatAmount(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	whole, cents := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	b.WriteByte('$')
	for i, ch := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	if cents != "00" {
		b.WriteByte('.')
		b.WriteString(cents)
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatAmountText formats raw when it is a plain number and returns display
// strings such as "$1M - $5M" unchanged.
func FormatAmountText(raw string) string {
	raw = strings.TrimSpace(raw)
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return raw
	}
	return FormatAmount(d)
}
