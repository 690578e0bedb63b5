package testutil

import "sync/atomic"

// SeqClock stamps binding emissions with 1, 2, 3... It implements
// host.Clock, and a fresh clock per run keeps traces byte-identical.
type SeqClock struct {
	seq atomic.Int64
}

// NewSeqClock returns a clock whose first Next is 1.
func NewSeqClock() *SeqClock {
	return &SeqClock{}
}

// Next advances the clock and returns the new sequence number.
func (c *SeqClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out, or 0.
func (c *SeqClock) Current() int64 {
	return c.seq.Load()
}
