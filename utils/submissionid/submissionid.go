package submissionid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyOnce sync.Once
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

// New returns an itm_* ULID string. The alphabet contains no dots, so ids
// can be embedded in storage object keys and recovered by a strict parse.
func New() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	return "itm_" + strings.ToLower(id.String())
}

// IsValid reports whether the string is an itm_* ULID.
func IsValid(value string) bool {
	if !strings.HasPrefix(value, "itm_") {
		return false
	}
	_, err := Parse(value)
	return err == nil
}

// Parse strips the itm_ prefix and returns the ULID.
func Parse(value string) (ulid.ULID, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "itm_")
	value = strings.TrimPrefix(value, "ITM_")
	return ulid.Parse(value)
}
