package tui

import (
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/quizforbots/internal/protocol"
)

type recordingAnswerer struct {
	answers []string
	err     error
}

func (r *recordingAnswerer) Answer(text string) error {
	r.answers = append(r.answers, text)
	return r.err
}

func newTestModel(t *testing.T, answerer Answerer) (*TUIModel, chan protocol.Envelope) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	inbox := make(chan protocol.Envelope, 8)
	return NewTUIModelWithOptions("ana", inbox, answerer, logger, true), inbox
}

func TestTUIRendersRound(t *testing.T) {
	m, _ := newTestModel(t, &recordingAnswerer{})

	start, err := protocol.NewEnvelope(protocol.TypeRoundStart, protocol.RoundStart{
		Game: "Trivia", DurationSeconds: 25, Prompt: "Question: 2 + 2?",
	})
	require.NoError(t, err)
	end, err := protocol.NewEnvelope(protocol.TypeRoundEnd, protocol.RoundEnd{
		Game: "Trivia", CorrectAnswer: "4", Info: "Round winner (Trivia): ana +10 points",
	})
	require.NoError(t, err)

	m.Update(EnvelopeMsg{Envelope: start})
	assert.True(t, m.roundActive)
	m.Update(EnvelopeMsg{Envelope: protocol.Text(protocol.TypeResult, "CORRECT")})
	m.Update(EnvelopeMsg{Envelope: end})
	assert.False(t, m.roundActive)
	m.Update(EnvelopeMsg{Envelope: protocol.Text(protocol.TypeScores, "Current scores:\nana: 10\nbob: 0")})

	assert.Equal(t, []string{
		"=== Trivia (25s) ===",
		"Question: 2 + 2?",
		"CORRECT",
		"Round over: Trivia. Correct answer: 4",
		"Round winner (Trivia): ana +10 points",
	}, m.GetCapturedLog())
	assert.Equal(t, []ScoreLine{{Name: "ana", Points: "10"}, {Name: "bob", Points: "0"}}, m.Scores())
}

func TestTUIFinalScores(t *testing.T) {
	m, _ := newTestModel(t, &recordingAnswerer{})
	m.Update(EnvelopeMsg{Envelope: protocol.Text(protocol.TypeScores, "Game over! Final scores:\nana: 25")})

	assert.True(t, m.gameOver)
	assert.Equal(t, []string{"Game over! Final scores:", "  ana: 25"}, m.GetCapturedLog())
}

func TestTUISubmitsAnswers(t *testing.T) {
	answerer := &recordingAnswerer{}
	m, _ := newTestModel(t, answerer)

	m.answerInput.SetValue("  (4 + 1) * 100 ")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"(4 + 1) * 100"}, answerer.answers)
	assert.Empty(t, m.answerInput.Value())

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Len(t, answerer.answers, 1, "empty input is not sent")

	answerer.err = errors.New("send buffer full")
	m.answerInput.SetValue("42")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, m.GetCapturedLog(), "Failed to send answer: send buffer full")
}

func TestTUIDisconnect(t *testing.T) {
	answerer := &recordingAnswerer{}
	m, inbox := newTestModel(t, answerer)
	close(inbox)

	msg := m.waitForEnvelope()()
	assert.Equal(t, DisconnectedMsg{}, msg)

	m.Update(msg)
	m.answerInput.SetValue("42")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, answerer.answers)
	assert.Contains(t, m.GetCapturedLog(), "Not connected.")
}

func TestTUIWaitsForEnvelope(t *testing.T) {
	m, inbox := newTestModel(t, &recordingAnswerer{})
	inbox <- protocol.Text(protocol.TypeInfo, "Welcome, ana!")

	msg := m.waitForEnvelope()()
	require.IsType(t, EnvelopeMsg{}, msg)
	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "keeps listening")
	assert.Equal(t, []string{"Welcome, ana!"}, m.GetCapturedLog())
}

func TestParseScores(t *testing.T) {
	header, scores := ParseScores("Current scores:\nMr: Colon: 5")
	assert.Equal(t, "Current scores:", header)
	assert.Equal(t, []ScoreLine{{Name: "Mr: Colon", Points: "5"}}, scores)

	header, scores = ParseScores("Current scores:")
	assert.Equal(t, "Current scores:", header)
	assert.Empty(t, scores)
}

func TestTUIQuit(t *testing.T) {
	m, _ := newTestModel(t, &recordingAnswerer{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestApplyTheme(t *testing.T) {
	t.Cleanup(func() { _ = ApplyTheme("default") })

	require.NoError(t, ApplyTheme("light"))
	assert.Equal(t, palettes["light"].Bad, ErrorStyle.GetForeground())

	require.NoError(t, ApplyTheme("default"))
	assert.Equal(t, palettes["default"].Bad, ErrorStyle.GetForeground())

	assert.Error(t, ApplyTheme("neon"))
	assert.Equal(t, palettes["default"].Bad, ErrorStyle.GetForeground(), "unknown theme leaves styles alone")
}
