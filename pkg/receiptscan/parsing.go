package receiptscan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var trailingCentsRE = regexp.MustCompile(`[.,]\d{2}$`)

// ParseAmount turns a matched substring into whole rupiah. A trailing
// two-digit decimal part is dropped (10.000,00 -> 10000); every other
// separator is treated as digit grouping.
func ParseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty match")
	}
	if trailingCentsRE.MatchString(raw) {
		if i := strings.LastIndexAny(raw, ".,"); i > 0 {
			raw = raw[:i]
		}
	}
	digits := onlyDigits(raw)
	if digits == "" {
		return 0, fmt.Errorf("no digits in %q", raw)
	}
	amt, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", digits, err)
	}
	return amt, nil
}

// plausibleAmount filters out phone numbers, reference numbers, and dates
// that happen to match the amount regex. Currency markers or grouping
// separators are strong signals; bare digit runs must look like round dues
// figures.
func plausibleAmount(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	low := strings.ToLower(s)
	hasCurrency := strings.Contains(low, "rp") || strings.Contains(low, "idr")
	d := onlyDigits(s)
	if d == "" || d[0] == '0' {
		return false
	}
	if hasCurrency {
		return len(d) >= 3 && len(d) <= 9
	}
	if strings.ContainsAny(s, ".,") {
		return len(d) >= 3 && len(d) <= 9
	}
	// bare digit run: accept only short round figures
	if len(d) < 4 || len(d) > 7 {
		return false
	}
	return strings.HasSuffix(d, "000") || strings.HasSuffix(d, "500")
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
