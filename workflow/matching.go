package workflow

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Preferences are a partner's declared investment filters. Empty lists and
// nil bounds mean "no filter".
type Preferences struct {
	AssetClasses []string
	Geographies  []string
	MinDealSize  *decimal.Decimal
	MaxDealSize  *decimal.Decimal
	MinScore     *float64
}

// DealSummary is the subset of a deal the matcher looks at. Amount may be a
// number, a numeric string or a display range such as "$1M - $5M".
type DealSummary struct {
	AssetClasses []string
	Geographies  []string
	Amount       any
	Score        *float64
}

// MatchResult explains a match decision.
type MatchResult struct {
	Matches      bool     `json:"matches"`
	MatchReasons []string `json:"match_reasons"`
}

// CheckMatch applies every specified filter and matches only when all of
// them pass. Nil preferences match everything.
func CheckMatch(prefs *Preferences, deal DealSummary) MatchResult {
	result := MatchResult{Matches: true, MatchReasons: []string{}}
	if prefs == nil {
		return result
	}

	if len(prefs.AssetClasses) > 0 {
		if hits := intersectFold(prefs.AssetClasses, deal.AssetClasses); len(hits) > 0 {
			result.MatchReasons = append(result.MatchReasons, "Asset class match: "+strings.Join(hits, ", "))
		} else {
			result.Matches = false
		}
	}

	if prefs.MinDealSize != nil || prefs.MaxDealSize != nil {
		if reason, ok := sizeWithin(prefs.MinDealSize, prefs.MaxDealSize, deal.Amount); ok {
			result.MatchReasons = append(result.MatchReasons, reason)
		} else {
			result.Matches = false
		}
	}

	if len(prefs.Geographies) > 0 {
		if hits := intersectFold(prefs.Geographies, deal.Geographies); len(hits) > 0 {
			result.MatchReasons = append(result.MatchReasons, "Geography match: "+strings.Join(hits, ", "))
		} else {
			result.Matches = false
		}
	}

	if prefs.MinScore != nil && deal.Score != nil {
		if *deal.Score >= *prefs.MinScore {
			result.MatchReasons = append(result.MatchReasons,
				fmt.Sprintf("Score %s meets minimum of %s", formatScore(*deal.Score), formatScore(*prefs.MinScore)))
		} else {
			result.Matches = false
		}
	}

	return result
}

func intersectFold(preferred, actual []string) []string {
	want := make(map[string]struct{}, len(preferred))
	for _, p := range preferred {
		if key := strings.ToLower(strings.TrimSpace(p)); key != "" {
			want[key] = struct{}{}
		}
	}
	var hits []string
	for _, a := range actual {
		key := strings.ToLower(strings.TrimSpace(a))
		if _, ok := want[key]; ok {
			hits = append(hits, strings.TrimSpace(a))
			delete(want, key)
		}
	}
	return hits
}

func sizeWithin(floor, ceiling *decimal.Decimal, amount any) (string, bool) {
	low, high, ok := ParseAmountRange(amount)
	if !ok {
		return "", false
	}
	if floor != nil && low.LessThan(*floor) {
		return "", false
	}
	upper := low
	if high != nil {
		upper = *high
	}
	if ceiling != nil && upper.GreaterThan(*ceiling) {
		return "", false
	}
	return "Deal size within preferred range", true
}

func formatScore(v float64) string {
	return decimal.NewFromFloat(v).String()
}

var (
	amountTokenPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(k|mm|m|bn|b)?`)
	amountMultipliers  = map[string]decimal.Decimal{
		"":   decimal.NewFromInt(1),
		"k":  decimal.NewFromInt(1_000),
		"m":  decimal.NewFromInt(1_000_000),
		"mm": decimal.NewFromInt(1_000_000),
		"b":  decimal.NewFromInt(1_000_000_000),
		"bn": decimal.NewFromInt(1_000_000_000),
	}
)

// ParseAmountRange reduces an amount to a comparable lower bound and an
// optional upper bound (nil when open-ended, as in "$10M+"). Plain numbers
// yield low == high.
func ParseAmountRange(v any) (decimal.Decimal, *decimal.Decimal, bool) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, nil, false
	case decimal.Decimal:
		return t, &t, true
	case *decimal.Decimal:
		if t == nil {
			return decimal.Zero, nil, false
		}
		return *t, t, true
	case int:
		d := decimal.NewFromInt(int64(t))
		return d, &d, true
	case int64:
		d := decimal.NewFromInt(t)
		return d, &d, true
	case float64:
		d := decimal.NewFromFloat(t)
		return d, &d, true
	case string:
		return parseAmountString(t)
	case *string:
		if t == nil {
			return decimal.Zero, nil, false
		}
		return parseAmountString(*t)
	}
	return decimal.Zero, nil, false
}

func parseAmountString(raw string) (decimal.Decimal, *decimal.Decimal, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("$", "", ",", "", "usd", "").Replace(s)
	if s == "" {
		return decimal.Zero, nil, false
	}

	if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
		return d, &d, true
	}

	matches := amountTokenPattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return decimal.Zero, nil, false
	}

	// "1-5M": a bare number borrows the unit of the number after it.
	suffixes := make([]string, len(matches))
	next := ""
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i][2] != "" {
			next = matches[i][2]
		}
		suffixes[i] = next
	}

	values := make([]decimal.Decimal, 0, 2)
	for _, i := range []int{0, len(matches) - 1} {
		n, err := decimal.NewFromString(matches[i][1])
		if err != nil {
			return decimal.Zero, nil, false
		}
		values = append(values, n.Mul(amountMultipliers[suffixes[i]]))
	}

	switch {
	case strings.HasPrefix(s, "under") || strings.HasPrefix(s, "less than") || strings.HasPrefix(s, "<") || strings.HasPrefix(s, "up to"):
		high := values[len(values)-1]
		return decimal.Zero, &high, true
	case strings.HasSuffix(s, "+") || strings.HasPrefix(s, "over") || strings.HasPrefix(s, "more than") || strings.HasPrefix(s, ">"):
		return values[0], nil, true
	}

	low := values[0]
	high := values[len(values)-1]
	if high.LessThan(low) {
		low, high = high, low
	}
	return low, &high, true
}
