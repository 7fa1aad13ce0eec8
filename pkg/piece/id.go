package piece

import (
	"strconv"
	"sync/atomic"

	"github.com/jonboulle/clockwork"
)

// idPrefix starts every generated instance ID.
const idPrefix = "cjsp"

// IDSource generates instance identifiers of the form
// "cjsp-<counter>-<unix millis in base 36>". IDs are unique for the
// lifetime of the source; they are not meant to be unpredictable.
// An IDSource is safe for concurrent use.
type IDSource struct {
	counter atomic.Uint64
	clock   clockwork.Clock
}

// NewIDSource returns an IDSource reading time from clock.
// A nil clock uses the real clock.
func NewIDSource(clock clockwork.Clock) *IDSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IDSource{clock: clock}
}

// Next returns a new identifier.
func (s *IDSource) Next() string {
	n := s.counter.Add(1)
	ms := s.clock.Now().UnixMilli()
	return idPrefix + "-" + strconv.FormatUint(n, 10) + "-" + strconv.FormatInt(ms, 36)
}

// defaultIDs is the process-wide source used unless WithIDSource is given.
var defaultIDs = NewIDSource(nil)
