package session

import "github.com/lox/quizforbots/internal/protocol"

// Broadcaster delivers envelopes to connected players. Implementations must
// not block: delivery is best effort and a failure for one player never
// affects the others or the game state.
type Broadcaster interface {
	Broadcast(env protocol.Envelope)
	Send(player string, env protocol.Envelope) error
}
