package submission_test

import (
	"errors"
	"testing"

	"marketplace-server/services/moderation-api/internal/domain/submission"
	"marketplace-server/services/moderation-api/utils/submissionid"
)

func TestObjectKeyRoundTrip(t *testing.T) {
	id := submissionid.New()
	key := submission.ObjectKey("uploads/", id, "jpg")

	got, err := submission.ParseObjectKey("uploads/", key)
	if err != nil {
		t.Fatalf("ParseObjectKey(%q) error: %v", key, err)
	}
	if got != id {
		t.Errorf("ParseObjectKey(%q) = %q, want %q", key, got, id)
	}
}

func TestParseObjectKey_Strict(t *testing.T) {
	id := submissionid.New()

	tests := []struct {
		name string
		key  string
	}{
		{"missing prefix", id + ".jpg"},
		{"wrong prefix", "other/" + id + ".jpg"},
		{"nested path", "uploads/nested/" + id + ".jpg"},
		{"no extension", "uploads/" + id},
		{"double extension", "uploads/" + id + ".tar.gz"},
		{"trailing dot", "uploads/" + id + "."},
		{"stem not a submission id", "uploads/readme.jpg"},
		{"prefix only", "uploads/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := submission.ParseObjectKey("uploads/", tt.key)
			if !errors.Is(err, submission.ErrInvalidObjectKey) {
				t.Errorf("ParseObjectKey(%q) error = %v, want ErrInvalidObjectKey", tt.key, err)
			}
		})
	}
}
