package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/quizforbots/internal/game"
	"github.com/lox/quizforbots/internal/protocol"
	"github.com/lox/quizforbots/internal/randutil"
)

const (
	DefaultInterlude = 800 * time.Millisecond

	ScoresHeader      = "Current scores:"
	FinalScoresHeader = "Game over! Final scores:"
)

// Phase is where the session as a whole is.
type Phase int

const (
	PhaseRegistration Phase = iota
	PhasePlaying
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseRegistration:
		return "registration"
	case PhasePlaying:
		return "playing"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Config controls a session.
type Config struct {
	Order              []game.Kind
	Options            map[game.Kind]game.Options
	RegistrationWindow time.Duration
	Quorum             int
	Interlude          time.Duration // pause between rounds, 0 disables
	Seed               int64
}

// DefaultConfig returns the standard three round session.
func DefaultConfig() Config {
	return Config{
		Order:              game.DefaultOrder(),
		RegistrationWindow: DefaultRegistrationWindow,
		Quorum:             DefaultQuorum,
		Interlude:          DefaultInterlude,
	}
}

// Status is a point in time view of the session.
type Status struct {
	Phase   Phase
	Round   int
	Rounds  int
	Kind    game.Kind
	State   RoundState
	Players int
}

// Orchestrator drives the round sequence: it waits on the gate, then runs
// each game in order, routing answers to the active round.
type Orchestrator struct {
	cfg    Config
	roster *Roster
	gate   *Gate
	out    Broadcaster
	clock  quartz.Clock
	logger *log.Logger
	games  []game.Game

	mu      sync.RWMutex
	phase   Phase
	current *Round
	history []RoundRecord
}

// NewOrchestrator builds every game up front so a bad order fails fast.
func NewOrchestrator(cfg Config, roster *Roster, out Broadcaster, clock quartz.Clock, logger *log.Logger) (*Orchestrator, error) {
	if len(cfg.Order) == 0 {
		cfg.Order = game.DefaultOrder()
	}
	if cfg.Interlude < 0 {
		return nil, errors.New("interlude must not be negative")
	}

	rng := randutil.New(cfg.Seed)
	games := make([]game.Game, 0, len(cfg.Order))
	for _, kind := range cfg.Order {
		g, err := game.New(kind, rng, cfg.Options[kind])
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}

	return &Orchestrator{
		cfg:    cfg,
		roster: roster,
		gate:   NewGate(roster, out, clock, cfg.RegistrationWindow, cfg.Quorum, logger),
		out:    out,
		clock:  clock,
		logger: logger.WithPrefix("orchestrator"),
		games:  games,
	}, nil
}

// Run plays the whole session. It returns nil once the final scores have
// been broadcast, or the context error if cancelled first.
func (o *Orchestrator) Run(ctx context.Context) error {
	players, err := o.gate.Wait(ctx)
	if err != nil {
		return err
	}

	o.setPhase(PhasePlaying)
	o.logger.Info("Session starting", "players", players, "rounds", len(o.games))
	o.out.Broadcast(protocol.Text(protocol.TypeInfo,
		fmt.Sprintf("Registration closed with %d player(s). Starting %d rounds.", players, len(o.games))))

	for i, g := range o.games {
		if err := o.playRound(ctx, i+1, g); err != nil {
			return err
		}
		if i < len(o.games)-1 {
			if err := o.pause(ctx); err != nil {
				return err
			}
		}
	}

	o.out.Broadcast(protocol.Text(protocol.TypeScores, FormatScores(FinalScoresHeader, o.roster.Snapshot())))
	o.setPhase(PhaseFinished)
	o.logger.Info("Session finished")
	return nil
}

func (o *Orchestrator) playRound(ctx context.Context, number int, g game.Game) error {
	logger := o.logger.With("round", number, "kind", g.Kind())
	r := newRound(number, g)
	g.StartRound()

	o.mu.Lock()
	o.current = r
	o.mu.Unlock()

	expired := make(chan struct{})

	r.mu.Lock()
	timer := o.clock.AfterFunc(g.Duration(), func() {
		close(expired)
	}, "round", g.Kind().String())
	r.state = RoundActive
	start, err := protocol.NewEnvelope(protocol.TypeRoundStart, protocol.RoundStart{
		Game:            g.Kind().String(),
		DurationSeconds: wholeSeconds(g.Duration()),
		Prompt:          g.Prompt(),
	})
	if err == nil {
		o.out.Broadcast(start)
	}
	r.mu.Unlock()
	if err != nil {
		timer.Stop()
		return err
	}
	logger.Info("Round started", "state", RoundActive, "duration", g.Duration())

	select {
	case <-r.decided:
		timer.Stop()
	case <-expired:
		o.expire(r, logger)
	case <-ctx.Done():
		timer.Stop()
		r.mu.Lock()
		r.state = RoundClosed
		r.mu.Unlock()
		return ctx.Err()
	}

	o.close(r, logger)
	return nil
}

// wholeSeconds rounds d up so a sub-second countdown never reports zero.
func wholeSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// expire handles the countdown firing. If an answer already ended the round
// this does nothing.
func (o *Orchestrator) expire(r *Round, logger *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != RoundActive {
		logger.Debug("Countdown fired after round ended", "state", r.state)
		return
	}

	v := r.game.Expire(o.roster.Names())
	info := v.Announce
	if info == "" {
		info = "Time is up."
	}
	r.finish(RoundTimedOut, info)
	o.apply(r, v, logger)
	logger.Info("Round timed out", "state", RoundTimedOut)
}

func (o *Orchestrator) close(r *Round, logger *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := r.game
	end, err := protocol.NewEnvelope(protocol.TypeRoundEnd, protocol.RoundEnd{
		Game:          g.Kind().String(),
		CorrectAnswer: g.CorrectAnswer(),
		Info:          r.info,
	})
	if err != nil {
		logger.Error("Failed to encode round end", "error", err)
	} else {
		o.out.Broadcast(end)
	}
	o.out.Broadcast(protocol.Text(protocol.TypeScores, FormatScores(ScoresHeader, o.roster.Snapshot())))

	ended := r.state
	r.state = RoundClosed

	o.mu.Lock()
	o.history = append(o.history, RoundRecord{
		Number:        r.number,
		Kind:          g.Kind(),
		Ended:         ended,
		CorrectAnswer: g.CorrectAnswer(),
		Info:          r.info,
		Awards:        r.awards,
	})
	o.mu.Unlock()
	logger.Info("Round closed", "ended", ended, "state", RoundClosed, "answer", g.CorrectAnswer())
}

func (o *Orchestrator) pause(ctx context.Context) error {
	if o.cfg.Interlude == 0 {
		return nil
	}
	done := make(chan struct{})
	timer := o.clock.AfterFunc(o.cfg.Interlude, func() {
		close(done)
	}, "interlude")
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit routes an answer to the active round. It returns false, with no
// effect and nothing sent, when no round is active or player is not
// registered.
func (o *Orchestrator) Submit(player, answer string) bool {
	o.mu.RLock()
	r := o.current
	o.mu.RUnlock()

	if r == nil || !o.roster.Contains(player) {
		o.logger.Debug("Ignoring answer", "player", player, "reason", "no round or unknown player")
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != RoundActive {
		o.logger.Debug("Ignoring answer", "player", player, "round", r.number, "state", r.state)
		return false
	}

	logger := o.logger.With("round", r.number, "kind", r.game.Kind())
	v := r.game.Submit(player, answer, o.roster.Names())
	if v.Reply != "" {
		if err := o.out.Send(player, protocol.Text(protocol.TypeResult, v.Reply)); err != nil {
			logger.Warn("Failed to send result", "player", player, "error", err)
		}
	}
	if v.Rejected {
		logger.Debug("Answer rejected", "player", player, "reply", v.Reply)
	}

	o.apply(r, v, logger)
	if v.Done && r.finish(RoundDecisiveEnd, v.Announce) {
		logger.Info("Round decided", "state", RoundDecisiveEnd, "player", player)
	}
	return true
}

// apply credits awards and announces them. Callers hold the round mutex with
// the round active or just transitioned out of active.
func (o *Orchestrator) apply(r *Round, v game.Verdict, logger *log.Logger) {
	for _, a := range v.Awards {
		if o.roster.Award(a.Player, a.Points) {
			r.awards = append(r.awards, a)
			logger.Info("Points awarded", "player", a.Player, "points", a.Points)
		}
	}
	if v.Announce != "" {
		o.out.Broadcast(protocol.Text(protocol.TypeInfo, v.Announce))
	}
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

// Status reports the session phase and the current round.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	st := Status{Phase: o.phase, Rounds: len(o.games), Players: o.roster.Len()}
	r := o.current
	o.mu.RUnlock()

	if r != nil {
		st.Round = r.number
		st.Kind = r.game.Kind()
		st.State = r.State()
	}
	return st
}

// History returns the rounds closed so far, oldest first.
func (o *Orchestrator) History() []RoundRecord {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]RoundRecord(nil), o.history...)
}

// Roster returns the roster the session plays with.
func (o *Orchestrator) Roster() *Roster {
	return o.roster
}
