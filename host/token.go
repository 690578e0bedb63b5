package host

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// TokenGenerator produces binding IDs.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 binding IDs, so bindings
// attached later sort later in logs and traces.
//
// Safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7. It panics if the system random
// source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Clock stamps every emission a binding applies with a sequence number.
type Clock interface {
	Next() int64
}

// counter is the default Clock: a per-binding monotonic counter from 1.
type counter struct {
	seq atomic.Int64
}

func (c *counter) Next() int64 {
	return c.seq.Add(1)
}
