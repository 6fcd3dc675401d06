package moderation

// RejectionReason is the diagnostic written to rejected records.
const RejectionReason = "Content flagged as unsafe"

// Thresholds: adult and violence reject at POSSIBLE or above; racy is held
// to the higher bar of LIKELY, so POSSIBLE racy content is tolerated. The
// asymmetry is deliberate policy and must be preserved.
const (
	adultThreshold    = Possible
	violenceThreshold = Possible
	racyThreshold     = Likely
)

// IsUnsafe applies the decision policy to a verdict.
func IsUnsafe(v SafetyVerdict) bool {
	return v.Adult.AtLeast(adultThreshold) ||
		v.Violence.AtLeast(violenceThreshold) ||
		v.Racy.AtLeast(racyThreshold)
}
