// Package textkey derives the normalized keys used for prefix search and
// name ordering.
package textkey

import (
	"strings"

	"golang.org/x/text/cases"
)

// PrefixSentinel is the highest code point. Appended to a prefix it forms
// the exclusive upper bound of a prefix range scan under byte or code-point
// ordering.
const PrefixSentinel = "\U0010FFFF"

// Fold trims and case-folds s. cases.Caser is not safe for concurrent use,
// so a fresh one is built per call.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// PrefixBounds returns the [lower, upper) range matching every key that
// starts with the folded prefix.
func PrefixBounds(prefix string) (string, string) {
	lower := Fold(prefix)
	return lower, lower + PrefixSentinel
}
