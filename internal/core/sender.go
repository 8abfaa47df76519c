//go:generate go run go.uber.org/mock/mockgen -source=sender.go -destination=../mocks/mock_sender.go -package=mocks
package core

import "github.com/dkeye/callhub/internal/domain"

// Sender is what the coordinator needs from the transport.
// Both methods are called while the dispatch lock is held, so neither may block
// or call back into the coordinator.
type Sender interface {
	Send(to domain.ConnectionID, frame Frame) error
	// Kick closes the connection. Its read loop reports the disconnect later.
	Kick(to domain.ConnectionID)
}
