// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// isoDate is the canonical output layout for issue dates.
const isoDate = "2006-01-02"

// parseAmount parses monetary text according to the dialect's declared
// decimal/grouping convention. Grouping separators are accepted only in
// valid positions (a leading group of 1-3 digits followed by groups of
// exactly 3), so text like "1.2.3" is rejected rather than silently
// collapsed to "123".
func parseAmount(raw string, nf NumberFormat) (decimal.Decimal, error) {
	fail := func() (decimal.Decimal, error) {
		return decimal.Decimal{}, fmt.Errorf("unparseable amount %q", raw)
	}

	s := strings.TrimSpace(raw)
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}

	intPart := s
	fracPart := ""
	hasDecimal := false
	if i := strings.IndexRune(s, nf.Decimal); i >= 0 {
		hasDecimal = true
		intPart = s[:i]
		fracPart = s[i+utf8.RuneLen(nf.Decimal):]
	}
	if hasDecimal && (fracPart == "" || !allDigits(fracPart)) {
		return fail()
	}

	digits := intPart
	switch {
	case strings.ContainsRune(intPart, nf.Grouping):
		groups := strings.Split(intPart, string(nf.Grouping))
		for i, g := range groups {
			if len(g) == 0 || !allDigits(g) {
				return fail()
			}
			if (i == 0 && len(g) > 3) || (i > 0 && len(g) != 3) {
				return fail()
			}
		}
		digits = strings.Join(groups, "")
	case intPart == "":
		if !hasDecimal {
			return fail()
		}
		digits = "0"
	case !allDigits(intPart):
		return fail()
	}

	out := sign + digits
	if hasDecimal {
		out += "." + fracPart
	}
	d, err := decimal.NewFromString(out)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unparseable amount %q: %w", raw, err)
	}
	return d, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseDate tries the dialect's declared layouts in order and normalizes the
// first match to ISO form.
func parseDate(raw string, layouts []string) (string, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(isoDate), nil
		}
	}
	return "", fmt.Errorf("date %q matches none of the declared formats", raw)
}
