package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"approved", StatusApproved},
		{"  UNDER_REVIEW ", StatusUnderReview},
		{"Awaiting_UBO", StatusAwaitingUBO},
		{"active", StatusApproved},
		{"verified", StatusApproved},
		{"pending", StatusUnderReview},
		{"manual_review", StatusUnderReview},
		{"in_review", StatusUnderReview},
		{"Submitted", StatusUnderReview},
		{"paused", StatusPaused},
		{"offboarded", StatusOffboarded},
		{"needs_more_info", StatusNotStarted},
		{"", StatusNotStarted},
		{"something-new", StatusNotStarted},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeString(tt.raw))
		})
	}

	t.Run("nil input", func(t *testing.T) {
		assert.Equal(t, StatusNotStarted, Normalize(nil))
	})

	t.Run("pointer input", func(t *testing.T) {
		raw := " Active "
		assert.Equal(t, StatusApproved, Normalize(&raw))
	})
}

// TestNormalize_Total checks the result stays inside the canonical set for
// arbitrary casing, padding and garbage.
func TestNormalize_Total(t *testing.T) {
	inputs := []string{"\x00", "\t\n", "APPROVED​", strings.Repeat("x", 4096), "rejected ", "ÅPPROVED"}
	for _, s := range CanonicalStatuses {
		inputs = append(inputs, strings.ToUpper(string(s)), " "+string(s)+"\n")
	}
	for alias := range legacyAliases {
		inputs = append(inputs, strings.ToUpper(alias))
	}

	for _, in := range inputs {
		got := NormalizeString(in)
		assert.True(t, got.IsCanonical(), "input %q produced %q", in, got)
	}
}

func FuzzNormalize(f *testing.F) {
	f.Add("approved")
	f.Add("  Pending ")
	f.Add("")
	f.Fuzz(func(t *testing.T, raw string) {
		if got := NormalizeString(raw); !got.IsCanonical() {
			t.Fatalf("NormalizeString(%q) = %q outside canonical set", raw, got)
		}
	})
}
