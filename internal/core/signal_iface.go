package core

import "errors"

// Frame is a serialized outbound event.
type Frame []byte

var (
	ErrConnClosed   = errors.New("connection closed")
	ErrBackpressure = errors.New("backpressure")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
// TrySend never blocks: it returns ErrConnClosed once the connection is
// no longer open and ErrBackpressure when the outbound queue is full.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
