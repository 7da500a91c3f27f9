package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/quizforbots/internal/randutil"
)

func TestQuestionAccepts(t *testing.T) {
	q := Question{Prompt: "What is the capital of Serbia?", Answer: "Belgrade", Aliases: []string{"Beograd"}}

	assert.True(t, q.Accepts("Belgrade"))
	assert.True(t, q.Accepts("  belgrade "))
	assert.True(t, q.Accepts("BEOGRAD"))
	assert.False(t, q.Accepts("Novi Sad"))
	assert.False(t, q.Accepts("   "))
}

func TestTriviaFirstCorrectWins(t *testing.T) {
	bank := []Question{{Prompt: "2 + 2?", Answer: "4", Aliases: []string{"four"}}}
	g := NewTrivia(randutil.New(1), Options{Questions: bank})
	g.StartRound()
	roster := []string{"ana", "bob"}

	assert.Equal(t, "Question: 2 + 2?", g.Prompt())

	v := g.Submit("ana", "5", roster)
	assert.Equal(t, "INCORRECT", v.Reply)
	assert.False(t, v.Done)

	v = g.Submit("ana", "Four", roster)
	assert.Equal(t, "CORRECT", v.Reply)
	require.True(t, v.Done)
	assert.Equal(t, []Award{{Player: "ana", Points: 10}}, v.Awards)
	assert.Equal(t, "Round winner (Trivia): ana +10 points", v.Announce)

	v = g.Submit("bob", "4", roster)
	assert.True(t, v.Rejected)
	assert.Empty(t, v.Awards)
}

func TestTriviaStartRoundResetsWinner(t *testing.T) {
	bank := []Question{{Prompt: "Red planet?", Answer: "Mars"}}
	g := NewTrivia(randutil.New(1), Options{Questions: bank, Points: 3})
	g.StartRound()
	g.Submit("ana", "mars", nil)

	g.StartRound()
	v := g.Submit("bob", "Mars", nil)
	assert.Equal(t, []Award{{Player: "bob", Points: 3}}, v.Awards)
}

func TestTriviaExpireAwardsNothing(t *testing.T) {
	g := NewTrivia(randutil.New(1), Options{})
	g.StartRound()
	assert.Equal(t, Verdict{}, g.Expire([]string{"ana"}))
}

func TestTriviaFeedback(t *testing.T) {
	g := NewTrivia(randutil.New(1), Options{Questions: []Question{{Prompt: "Gold?", Answer: "Au"}}})
	assert.False(t, g.CheckAnswer("Au"), "no question before StartRound")

	g.StartRound()
	assert.Equal(t, "CORRECT", g.Feedback("au"))
	assert.Equal(t, "INCORRECT", g.Feedback("Ag"))
	assert.Equal(t, "Au", g.CorrectAnswer())
}

func TestDefaultQuestionsAreAnswerable(t *testing.T) {
	for _, q := range DefaultQuestions() {
		assert.NotEmpty(t, q.Prompt)
		assert.True(t, q.Accepts(q.Answer), q.Prompt)
		assert.Empty(t, q.Aliases, "built-in answers are exact: %s", q.Prompt)
	}

	ocean := DefaultQuestions()[4]
	assert.True(t, ocean.Accepts(" pacific "))
	assert.False(t, ocean.Accepts("Pacific Ocean"))
}
