package submission

import (
	"fmt"
	"strings"

	"marketplace-server/services/moderation-api/utils/submissionid"
)

// ErrInvalidObjectKey is returned when a storage key does not parse back to
// a submission id under the upload prefix.
var ErrInvalidObjectKey = fmt.Errorf("storage key does not name a submission")

// ObjectKey builds the storage key for a submission's blob:
// "<prefix><id>.<ext>".
func ObjectKey(prefix, id, ext string) string {
	return prefix + id + "." + ext
}

// ParseObjectKey recovers the submission id from a storage key. The parse
// is strict: the key must carry the upload prefix, the filename must have
// exactly one dot-delimited extension, and the stem must be a valid
// submission id. Anything else returns ErrInvalidObjectKey.
func ParseObjectKey(prefix, key string) (string, error) {
	name, ok := strings.CutPrefix(key, prefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("%w: %q lacks prefix %q", ErrInvalidObjectKey, key, prefix)
	}
	stem, ext, ok := strings.Cut(name, ".")
	if !ok || ext == "" || strings.Contains(ext, ".") {
		return "", fmt.Errorf("%w: %q has no single extension", ErrInvalidObjectKey, key)
	}
	if !submissionid.IsValid(stem) {
		return "", fmt.Errorf("%w: %q is not a submission id", ErrInvalidObjectKey, stem)
	}
	return stem, nil
}
