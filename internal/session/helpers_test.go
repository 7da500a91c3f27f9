package session

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/quizforbots/internal/game"
	"github.com/lox/quizforbots/internal/protocol"
)

type delivery struct {
	To  string // empty for broadcasts
	Env protocol.Envelope
}

// recorder is a Broadcaster that keeps everything it was asked to deliver.
type recorder struct {
	mu     sync.Mutex
	sent   []delivery
	stream chan delivery
}

func newRecorder() *recorder {
	return &recorder{stream: make(chan delivery, 256)}
}

func (r *recorder) Broadcast(env protocol.Envelope) {
	r.record(delivery{Env: env})
}

func (r *recorder) Send(player string, env protocol.Envelope) error {
	r.record(delivery{To: player, Env: env})
	return nil
}

func (r *recorder) record(d delivery) {
	r.mu.Lock()
	r.sent = append(r.sent, d)
	r.mu.Unlock()
	select {
	case r.stream <- d:
	default:
	}
}

// next returns the next delivery of type t, skipping anything else.
func (r *recorder) next(t *testing.T, typ protocol.MessageType) delivery {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case d := <-r.stream:
			if d.Env.Type == typ {
				return d
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

// broadcasts returns every broadcast envelope in order.
func (r *recorder) broadcasts() []protocol.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []protocol.Envelope
	for _, d := range r.sent {
		if d.To == "" {
			out = append(out, d.Env)
		}
	}
	return out
}

func (r *recorder) sentTo(player string) []protocol.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []protocol.Envelope
	for _, d := range r.sent {
		if d.To == player {
			out = append(out, d.Env)
		}
	}
	return out
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// stubGame is a game whose rules are fixed by the test.
type stubGame struct {
	kind     game.Kind
	duration time.Duration
	answer   string
	expiry   game.Verdict

	started int
	expired int
}

func (s *stubGame) Kind() game.Kind                { return s.kind }
func (s *stubGame) Duration() time.Duration        { return s.duration }
func (s *stubGame) PointsForWin() int              { return 10 }
func (s *stubGame) CorrectAnswer() string          { return s.answer }
func (s *stubGame) StartRound()                    { s.started++ }
func (s *stubGame) Prompt() string                 { return "say " + s.answer }
func (s *stubGame) CheckAnswer(answer string) bool { return answer == s.answer }

func (s *stubGame) Feedback(answer string) string {
	if s.CheckAnswer(answer) {
		return "CORRECT"
	}
	return "INCORRECT"
}

func (s *stubGame) Submit(player, answer string, roster []string) game.Verdict {
	if !s.CheckAnswer(answer) {
		return game.Verdict{Reply: "INCORRECT"}
	}
	return game.Verdict{
		Reply:    "CORRECT",
		Announce: player + " wins",
		Awards:   []game.Award{{Player: player, Points: 10}},
		Done:     true,
	}
}

func (s *stubGame) Expire(roster []string) game.Verdict {
	s.expired++
	return s.expiry
}

type harness struct {
	o     *Orchestrator
	out   *recorder
	clock *quartz.Mock
	errs  chan error
}

func newHarness(t *testing.T, cfg Config, players ...string) *harness {
	t.Helper()
	out := newRecorder()
	clock := quartz.NewMock(t)
	roster := NewRoster(0)
	for _, p := range players {
		_, err := roster.Register(p)
		require.NoError(t, err)
	}

	o, err := NewOrchestrator(cfg, roster, out, clock, testLogger())
	require.NoError(t, err)
	return &harness{o: o, out: out, clock: clock, errs: make(chan error, 1)}
}

func (h *harness) run(ctx context.Context) {
	go func() {
		h.errs <- h.o.Run(ctx)
	}()
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.errs:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
		return nil
	}
}
