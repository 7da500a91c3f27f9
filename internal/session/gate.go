package session

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/quizforbots/internal/protocol"
)

const (
	DefaultRegistrationWindow = 30 * time.Second
	DefaultQuorum             = 2
)

// Gate holds the session back until players have registered. It waits for
// the first player, then keeps registration open for a window that ends
// early once the quorum is reached.
type Gate struct {
	roster *Roster
	out    Broadcaster
	clock  quartz.Clock
	window time.Duration
	quorum int
	logger *log.Logger
}

// NewGate creates a gate over roster. Zero window or quorum use the defaults.
func NewGate(roster *Roster, out Broadcaster, clock quartz.Clock, window time.Duration, quorum int, logger *log.Logger) *Gate {
	if window <= 0 {
		window = DefaultRegistrationWindow
	}
	if quorum <= 0 {
		quorum = DefaultQuorum
	}
	return &Gate{
		roster: roster,
		out:    out,
		clock:  clock,
		window: window,
		quorum: quorum,
		logger: logger.WithPrefix("gate"),
	}
}

// Wait blocks until registration is over, closes the roster and returns the
// number of registered players.
func (g *Gate) Wait(ctx context.Context) (int, error) {
	g.logger.Info("Waiting for the first player")
	for g.roster.Len() == 0 {
		select {
		case <-g.roster.Joined():
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	if g.roster.Len() < g.quorum {
		if err := g.holdWindow(ctx); err != nil {
			return 0, err
		}
	}

	g.roster.Close()
	count := g.roster.Len()
	g.logger.Info("Registration closed", "players", count)
	return count, nil
}

func (g *Gate) holdWindow(ctx context.Context) error {
	expired := make(chan struct{})
	timer := g.clock.AfterFunc(g.window, func() {
		close(expired)
	}, "gate", "window")
	defer timer.Stop()

	g.logger.Info("Registration window open", "window", g.window, "quorum", g.quorum)
	g.out.Broadcast(protocol.Text(protocol.TypeInfo,
		fmt.Sprintf("Registration is open for %d more seconds.", int(g.window.Seconds()))))

	for {
		select {
		case <-g.roster.Joined():
			if g.roster.Len() >= g.quorum {
				return nil
			}
		case <-expired:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
