package session

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/quizforbots/internal/protocol"
)

type gateResult struct {
	count int
	err   error
}

func startGate(ctx context.Context, g *Gate) <-chan gateResult {
	done := make(chan gateResult, 1)
	go func() {
		n, err := g.Wait(ctx)
		done <- gateResult{n, err}
	}()
	return done
}

func awaitGate(t *testing.T, done <-chan gateResult) gateResult {
	t.Helper()
	select {
	case res := <-done:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("gate did not open")
		return gateResult{}
	}
}

func TestGateQuorumEndsWindowEarly(t *testing.T) {
	ctx := testContext(t)
	roster := NewRoster(0)
	out := newRecorder()
	gate := NewGate(roster, out, quartz.NewMock(t), 30*time.Second, 2, testLogger())

	done := startGate(ctx, gate)

	_, err := roster.Register("ana")
	require.NoError(t, err)
	info := out.next(t, protocol.TypeInfo)
	assert.Equal(t, "Registration is open for 30 more seconds.", info.Env.Data)

	_, err = roster.Register("bob")
	require.NoError(t, err)

	res := awaitGate(t, done)
	require.NoError(t, res.err)
	assert.Equal(t, 2, res.count)
	assert.True(t, roster.Closed())
}

func TestGateWindowExpires(t *testing.T) {
	ctx := testContext(t)
	roster := NewRoster(0)
	out := newRecorder()
	clock := quartz.NewMock(t)
	gate := NewGate(roster, out, clock, 30*time.Second, 2, testLogger())

	_, err := roster.Register("solo")
	require.NoError(t, err)
	done := startGate(ctx, gate)

	out.next(t, protocol.TypeInfo)
	d, w := clock.AdvanceNext()
	w.MustWait(ctx)
	assert.Equal(t, 30*time.Second, d)

	res := awaitGate(t, done)
	require.NoError(t, res.err)
	assert.Equal(t, 1, res.count)

	_, err = roster.Register("late")
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestGateQuorumAlreadyMet(t *testing.T) {
	ctx := testContext(t)
	roster := NewRoster(0)
	out := newRecorder()
	_, _ = roster.Register("ana")
	_, _ = roster.Register("bob")

	gate := NewGate(roster, out, quartz.NewMock(t), 0, 0, testLogger())
	n, err := gate.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, out.broadcasts(), "no window announcement when quorum is met")
}

func TestGateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	roster := NewRoster(0)
	gate := NewGate(roster, newRecorder(), quartz.NewMock(t), time.Second, 2, testLogger())

	done := startGate(ctx, gate)
	cancel()

	res := awaitGate(t, done)
	assert.ErrorIs(t, res.err, context.Canceled)
	assert.False(t, roster.Closed())
}
