package transform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"schemagraph/internal/model"
)

// ErrUnknownNormalization is returned for a normalization rule Apply does
// not implement.
var ErrUnknownNormalization = errors.New("unknown normalization rule")

// Apply converts a local value into its global representation.
//
// A unit conversion applies when the value starts with a number: the number
// becomes number*Factor + Offset, followed by the target unit when one is
// set. Converted values are returned as is. Any other value runs through the
// normalization rules in order.
func Apply(rule *model.TransformRule, value string) (string, error) {
	if rule.IsEmpty() {
		return value, nil
	}

	if conv := rule.UnitConversion; conv != nil {
		if n, ok := LeadingNumber(value); ok {
			return convert(conv, n), nil
		}
	}

	for _, r := range rule.Normalize {
		switch r {
		case model.NormalizeLowercase:
			value = cases.Lower(language.Und).String(value)
		case model.NormalizeUppercase:
			value = cases.Upper(language.Und).String(value)
		case model.NormalizeTrim:
			value = strings.TrimSpace(value)
		case model.NormalizeCollapseSpace:
			value = strings.Join(strings.Fields(value), " ")
		default:
			return "", fmt.Errorf("%w: %q", ErrUnknownNormalization, string(r))
		}
	}

	return value, nil
}

func convert(conv *model.UnitConversion, n float64) string {
	out := strconv.FormatFloat(n*conv.Factor+conv.Offset, 'f', -1, 64)
	if conv.ToUnit != "" {
		out += " " + conv.ToUnit
	}

	return out
}

// LeadingNumber parses the number at the start of s, ignoring leading
// spaces and any trailing text such as a unit ("18 feet", "-3.5in").
func LeadingNumber(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	digits := false
	dot := false

scan:
	for i, r := range s {
		switch {
		case (r == '-' || r == '+') && i == 0:
		case r == '.' && !dot:
			dot = true
		case r >= '0' && r <= '9':
			digits = true
		default:
			break scan
		}

		end = i + 1
	}

	if !digits {
		return 0, false
	}

	n, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}

	return n, true
}
