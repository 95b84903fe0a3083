package population

import (
	"io"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Epoch stamps the ids of every CLI run, so a seed alone determines them.
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// IDSource hands out ULIDs for generated people. It keeps its own entropy
// so that drawing ids never perturbs the generation random source, and a
// fixed epoch and seed reproduce the same ids.
type IDSource struct {
	ms      uint64
	entropy io.Reader
}

// NewIDSource returns an IDSource stamping every id with epoch.
func NewIDSource(epoch time.Time, seed int64) *IDSource {
	return &IDSource{
		ms:      ulid.Timestamp(epoch),
		entropy: ulid.Monotonic(rand.New(rand.NewSource(seed)), 0),
	}
}

// Next returns a new id, strictly increasing within the source.
func (s *IDSource) Next() string {
	return ulid.MustNew(s.ms, s.entropy).String()
}
