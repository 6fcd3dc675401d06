package submission

import "strings"

// ObjectFinalized is the trigger contract for the moderation pipeline: one
// event per newly finalized stored object under the upload prefix.
type ObjectFinalized struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Bucket      string `json:"bucket"`
}

// IsImage reports whether the finalized object claims an image content type.
func (e ObjectFinalized) IsImage() bool {
	return strings.HasPrefix(e.ContentType, "image/")
}
