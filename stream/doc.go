// Package stream implements synchronous push streams.
//
// A Stream delivers values to an Observer through Next, then at most one
// terminal notification (Error or Complete). Streams built with New are cold:
// every Subscribe runs the producer again. Subjects are hot and multicast;
// a Behavior additionally owns a latest-value cell that it replays to every
// new subscriber.
//
// SINGLE LOGICAL THREAD:
// Every notification is delivered on the goroutine that produced it, before the
// producing call returns. No operator in this package starts a goroutine,
// buffers, or reorders. Combine and merge operators emit in the exact order
// their sources emit.
//
// Subjects guard their observer lists with a mutex that is never held while an
// observer runs, so an observer may push into a subject re-entrantly.
package stream
