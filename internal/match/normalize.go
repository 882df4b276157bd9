package match

import (
	"strings"
	"unicode"
)

// NormalizeName folds a property name for fuzzy comparison: tokens are
// lowercased and joined without separators.
func NormalizeName(s string) string {
	return strings.Join(Tokenize(s), "")
}

// Tokenize splits a property name into lowercase tokens at separators,
// camelCase boundaries and letter/digit boundaries.
//
//   - "minVerticalClearance" -> ["min", "vertical", "clearance"]
//   - "depth_in" -> ["depth", "in"]
//   - "HDPEConduit" -> ["hdpe", "conduit"]
//   - "clearance12ft" -> ["clearance", "12", "ft"]
func Tokenize(s string) []string {
	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '%'
}

// startsToken reports whether runes[i] begins a new token.
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]

	if isSeparator(prev) {
		return false
	}

	if unicode.IsDigit(r) != unicode.IsDigit(prev) {
		return true
	}

	if r == '%' || prev == '%' {
		return true
	}

	if unicode.IsUpper(r) && unicode.IsLower(prev) {
		return true
	}

	// End of an acronym: "HDPEConduit" splits before 'C'.
	nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

	return unicode.IsUpper(r) && unicode.IsUpper(prev) && nextLower
}
