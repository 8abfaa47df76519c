package core

import "errors"

// Frame is one encoded text message ready for the wire.
type Frame []byte

var (
	ErrBackpressure = errors.New("send queue full")
	ErrConnClosed   = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend never blocks. It returns ErrBackpressure when the queue is full
	// and ErrConnClosed after Close.
	TrySend(Frame) error
	Close()
}
