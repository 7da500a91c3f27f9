package session

import (
	"sync"

	"github.com/lox/quizforbots/internal/game"
)

// RoundState tracks one round through its lifecycle.
type RoundState int

const (
	RoundPending RoundState = iota
	RoundActive
	RoundDecisiveEnd
	RoundTimedOut
	RoundClosed
)

func (s RoundState) String() string {
	switch s {
	case RoundPending:
		return "pending"
	case RoundActive:
		return "active"
	case RoundDecisiveEnd:
		return "decisive_end"
	case RoundTimedOut:
		return "timed_out"
	case RoundClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Round is one timed activation of a game. The mutex serializes answers,
// the timeout and the closing broadcasts; state is the single flag both
// the decisive path and the timeout path check before acting.
type Round struct {
	mu      sync.Mutex
	number  int
	game    game.Game
	state   RoundState
	info    string
	awards  []game.Award
	decided chan struct{}
}

// RoundRecord is how a finished round turned out.
type RoundRecord struct {
	Number        int
	Kind          game.Kind
	Ended         RoundState
	CorrectAnswer string
	Info          string
	Awards        []game.Award
}

func newRound(number int, g game.Game) *Round {
	return &Round{
		number:  number,
		game:    g,
		state:   RoundPending,
		decided: make(chan struct{}),
	}
}

// State returns the current state.
func (r *Round) State() RoundState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// finish moves an active round to the given end state. Only the first caller
// wins; later callers get false and must do nothing.
func (r *Round) finish(to RoundState, info string) bool {
	if r.state != RoundActive {
		return false
	}
	r.state = to
	r.info = info
	if to == RoundDecisiveEnd {
		close(r.decided)
	}
	return true
}
