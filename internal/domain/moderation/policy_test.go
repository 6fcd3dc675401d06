package moderation_test

import (
	"testing"

	"marketplace-server/services/moderation-api/internal/domain/moderation"
)

func TestIsUnsafe(t *testing.T) {
	tests := []struct {
		name    string
		verdict moderation.SafetyVerdict
		unsafe  bool
	}{
		{
			"all very unlikely",
			moderation.SafetyVerdict{Adult: moderation.VeryUnlikely, Violence: moderation.VeryUnlikely, Racy: moderation.VeryUnlikely},
			false,
		},
		{
			"all unknown",
			moderation.SafetyVerdict{},
			false,
		},
		{
			"adult possible rejects",
			moderation.SafetyVerdict{Adult: moderation.Possible, Violence: moderation.VeryUnlikely, Racy: moderation.Unlikely},
			true,
		},
		{
			"adult likely rejects",
			moderation.SafetyVerdict{Adult: moderation.Likely},
			true,
		},
		{
			"adult very likely rejects",
			moderation.SafetyVerdict{Adult: moderation.VeryLikely},
			true,
		},
		{
			"violence possible rejects",
			moderation.SafetyVerdict{Violence: moderation.Possible},
			true,
		},
		{
			"violence unlikely passes",
			moderation.SafetyVerdict{Violence: moderation.Unlikely},
			false,
		},
		{
			"racy possible is tolerated",
			moderation.SafetyVerdict{Adult: moderation.Unlikely, Violence: moderation.Unlikely, Racy: moderation.Possible},
			false,
		},
		{
			"racy likely rejects",
			moderation.SafetyVerdict{Adult: moderation.Unlikely, Violence: moderation.Unlikely, Racy: moderation.Likely},
			true,
		},
		{
			"racy very likely rejects",
			moderation.SafetyVerdict{Racy: moderation.VeryLikely},
			true,
		},
		{
			"everything at threshold",
			moderation.SafetyVerdict{Adult: moderation.Possible, Violence: moderation.Possible, Racy: moderation.Likely},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := moderation.IsUnsafe(tt.verdict); got != tt.unsafe {
				t.Errorf("IsUnsafe(%s) = %v, want %v", tt.verdict, got, tt.unsafe)
			}
		})
	}
}
