package storage

import "testing"

func TestFallbackURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		bucket   string
		key      string
		want     string
	}{
		{
			"upload key",
			"http://127.0.0.1:9199",
			"listings",
			"uploads/itm_01hv3examplesubmission0id.jpg",
			"http://127.0.0.1:9199/v0/b/listings/o/uploads%2Fitm_01hv3examplesubmission0id.jpg?alt=media",
		},
		{
			"trailing slash endpoint",
			"http://127.0.0.1:9199/",
			"listings",
			"uploads/a.png",
			"http://127.0.0.1:9199/v0/b/listings/o/uploads%2Fa.png?alt=media",
		},
		{
			"key with spaces",
			"http://localhost:9199",
			"b",
			"uploads/my image.jpg",
			"http://localhost:9199/v0/b/b/o/uploads%2Fmy%20image.jpg?alt=media",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FallbackURL(tt.endpoint, tt.bucket, tt.key); got != tt.want {
				t.Errorf("FallbackURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
