package moderation_test

import (
	"testing"

	"marketplace-server/services/moderation-api/internal/domain/moderation"
)

func TestParseLikelihood(t *testing.T) {
	tests := []struct {
		value    string
		expected moderation.Likelihood
	}{
		{"VERY_UNLIKELY", moderation.VeryUnlikely},
		{"UNLIKELY", moderation.Unlikely},
		{"POSSIBLE", moderation.Possible},
		{"LIKELY", moderation.Likely},
		{"VERY_LIKELY", moderation.VeryLikely},
		{"UNKNOWN", moderation.LikelihoodUnknown},
		{"", moderation.LikelihoodUnknown},
		{"garbage", moderation.LikelihoodUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := moderation.ParseLikelihood(tt.value); got != tt.expected {
				t.Errorf("ParseLikelihood(%q) = %v, want %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestLikelihoodOrdering(t *testing.T) {
	ordered := []moderation.Likelihood{
		moderation.LikelihoodUnknown,
		moderation.VeryUnlikely,
		moderation.Unlikely,
		moderation.Possible,
		moderation.Likely,
		moderation.VeryLikely,
	}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i].AtLeast(ordered[i-1]) {
			t.Errorf("%s should be at least %s", ordered[i], ordered[i-1])
		}
		if ordered[i-1].AtLeast(ordered[i]) {
			t.Errorf("%s should not be at least %s", ordered[i-1], ordered[i])
		}
	}
}
