package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"time"
)

// Kind identifies one of the game variants. The set is closed: New is the
// only way to obtain a Game and it rejects unknown kinds.
type Kind string

const (
	KindTargetNumber Kind = "TargetNumber"
	KindCodeBreaker  Kind = "CodeBreaker"
	KindTrivia       Kind = "Trivia"
)

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// DefaultOrder is the sequence a session plays when none is configured.
func DefaultOrder() []Kind {
	return []Kind{KindTargetNumber, KindCodeBreaker, KindTrivia}
}

// ParseKind accepts the canonical kind names case-insensitively.
func ParseKind(s string) (Kind, error) {
	for _, k := range DefaultOrder() {
		if strings.EqualFold(strings.TrimSpace(s), string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown game kind %q", s)
}

// Award credits points to a player.
type Award struct {
	Player string
	Points int
}

// Verdict is the outcome of one submission (or of the round expiring).
// The orchestrator applies it: Reply goes to the submitter as RESULT,
// Announce is broadcast as INFO, Awards are added to the score table and
// Done ends the round.
type Verdict struct {
	Reply    string
	Announce string
	Awards   []Award
	Done     bool
	Rejected bool // advisory rejection, the answer was not evaluated
}

// Game is the contract shared by every variant.
//
// Implementations are not safe for concurrent use; the orchestrator
// serializes all calls for a round.
type Game interface {
	Kind() Kind
	Duration() time.Duration
	PointsForWin() int
	// CorrectAnswer is populated by StartRound.
	CorrectAnswer() string

	// StartRound draws fresh secret data and clears all per-player state.
	StartRound()
	Prompt() string
	CheckAnswer(answer string) bool
	Feedback(answer string) string

	// Submit evaluates one answer from player. roster lists every registered
	// player and is used for "everyone has finished" checks.
	Submit(player, answer string, roster []string) Verdict
	// Expire resolves an undecided round when its countdown elapses.
	Expire(roster []string) Verdict
}

// Options overrides per-variant defaults. Zero values keep the default.
type Options struct {
	Duration      time.Duration
	Points        int
	ReducedPoints int // CodeBreaker: bonus for the second player to crack the code
	Attempts      int // CodeBreaker: guesses per player
	Questions     []Question

	// TargetNumber: a fixed puzzle replayed every round instead of a random
	// draw. Both must be set; see ValidatePuzzle.
	Target int
	Tiles  []int
}

// New creates a game of the given kind drawing randomness from rng.
func New(kind Kind, rng *rand.Rand, opts Options) (Game, error) {
	if rng == nil {
		return nil, fmt.Errorf("game %s: nil random source", kind)
	}

	switch kind {
	case KindTargetNumber:
		return NewTargetNumber(rng, opts), nil
	case KindCodeBreaker:
		return NewCodeBreaker(rng, opts), nil
	case KindTrivia:
		return NewTrivia(rng, opts), nil
	}
	return nil, fmt.Errorf("unknown game kind %q", kind)
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func intOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
