//go:build unit

package textkey_test

import (
	"testing"

	"treatment-booking/internal/pkg/textkey"

	"github.com/stretchr/testify/assert"
)

func TestPrefixBounds(t *testing.T) {
	lower, upper := textkey.PrefixBounds("  ALI ")
	assert.Equal(t, "ali", lower)

	testCases := []struct {
		name   string
		key    string
		inside bool
	}{
		{name: "exact prefix", key: "ali", inside: true},
		{name: "ascii continuation", key: "alice martin", inside: true},
		{name: "fullwidth continuation", key: "aliｂ wide", inside: true},
		{name: "emoji continuation", key: "ali\U0001F600 star", inside: true},
		{name: "next prefix", key: "alj", inside: false},
		{name: "shorter key", key: "al", inside: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.key >= lower && tc.key < upper
			assert.Equal(t, tc.inside, got)
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "zoé petit", textkey.Fold(" Zoé Petit "))
	assert.Equal(t, "strasse", textkey.Fold("STRASSE"))
}
