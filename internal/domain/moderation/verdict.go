package moderation

import "fmt"

// Likelihood is the ordinal confidence level reported by the classifier
// for one content category.
type Likelihood int

const (
	LikelihoodUnknown Likelihood = iota
	VeryUnlikely
	Unlikely
	Possible
	Likely
	VeryLikely
)

var likelihoodNames = map[string]Likelihood{
	"UNKNOWN":       LikelihoodUnknown,
	"VERY_UNLIKELY": VeryUnlikely,
	"UNLIKELY":      Unlikely,
	"POSSIBLE":      Possible,
	"LIKELY":        Likely,
	"VERY_LIKELY":   VeryLikely,
}

// ParseLikelihood maps the classifier's wire level to its ordinal value.
// Unrecognised levels parse as UNKNOWN rather than failing the verdict.
func ParseLikelihood(value string) Likelihood {
	if l, ok := likelihoodNames[value]; ok {
		return l
	}
	return LikelihoodUnknown
}

// AtLeast reports whether the likelihood meets the given threshold.
func (l Likelihood) AtLeast(threshold Likelihood) bool {
	return l >= threshold
}

func (l Likelihood) String() string {
	switch l {
	case VeryUnlikely:
		return "VERY_UNLIKELY"
	case Unlikely:
		return "UNLIKELY"
	case Possible:
		return "POSSIBLE"
	case Likely:
		return "LIKELY"
	case VeryLikely:
		return "VERY_LIKELY"
	default:
		return "UNKNOWN"
	}
}

// SafetyVerdict is the per-category scoring for one classified image. It is
// ephemeral: consumed once by the decision policy, never persisted.
type SafetyVerdict struct {
	Adult    Likelihood
	Violence Likelihood
	Racy     Likelihood
}

func (v SafetyVerdict) String() string {
	return fmt.Sprintf("adult=%s violence=%s racy=%s", v.Adult, v.Violence, v.Racy)
}
