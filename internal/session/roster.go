package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"
)

// MaxNameLength bounds display names in runes.
const MaxNameLength = 32

var (
	ErrEmptyName          = errors.New("name must not be empty")
	ErrNameTooLong        = fmt.Errorf("name must be at most %d characters", MaxNameLength)
	ErrDuplicateName      = errors.New("name is already taken")
	ErrRegistrationClosed = errors.New("registration is closed")
	ErrRosterFull         = errors.New("session is full")
)

// Score is one line of the score table.
type Score struct {
	Name   string
	Points int
}

// Roster holds registered players and their points. Registration order is
// preserved and points only ever grow.
type Roster struct {
	mu         sync.RWMutex
	maxPlayers int
	names      []string
	points     map[string]int
	closed     bool
	joined     chan struct{}
}

// NewRoster creates an empty roster. maxPlayers of 0 means unlimited.
func NewRoster(maxPlayers int) *Roster {
	return &Roster{
		maxPlayers: maxPlayers,
		points:     make(map[string]int),
		joined:     make(chan struct{}, 1),
	}
}

// Register adds a player and returns the trimmed name it was stored under.
// Names are unique ignoring case.
func (r *Roster) Register(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrRegistrationClosed
	}
	if r.maxPlayers > 0 && len(r.names) >= r.maxPlayers {
		return "", ErrRosterFull
	}
	for _, existing := range r.names {
		if strings.EqualFold(existing, name) {
			return "", fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
	}

	r.names = append(r.names, name)
	r.points[name] = 0

	select {
	case r.joined <- struct{}{}:
	default:
	}
	return name, nil
}

// Joined signals after registrations. Several registrations may collapse
// into a single signal, so receivers re-read Len.
func (r *Roster) Joined() <-chan struct{} {
	return r.joined
}

// Close stops further registrations.
func (r *Roster) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// Closed reports whether registration has been closed.
func (r *Roster) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Names returns the registered players in registration order.
func (r *Roster) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

func (r *Roster) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.points[name]
	return ok
}

// Award adds points to a registered player. Unknown players and
// non-positive amounts are ignored.
func (r *Roster) Award(name string, points int) bool {
	if points <= 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.points[name]; !ok {
		return false
	}
	r.points[name] += points
	return true
}

// Points returns a player's current total.
func (r *Roster) Points(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.points[name]
}

// Snapshot returns every score taken under a single read lock.
func (r *Roster) Snapshot() []Score {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scores := make([]Score, len(r.names))
	for i, name := range r.names {
		scores[i] = Score{Name: name, Points: r.points[name]}
	}
	return scores
}

// FormatScores renders a header line followed by one "name: points" line
// per player.
func FormatScores(header string, scores []Score) string {
	var b strings.Builder
	b.WriteString(header)
	for _, s := range scores {
		fmt.Fprintf(&b, "\n%s: %d", s.Name, s.Points)
	}
	return b.String()
}
