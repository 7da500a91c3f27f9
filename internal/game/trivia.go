package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"time"
)

const (
	triviaDuration = 25 * time.Second
	triviaPoints   = 10
)

// Question is one trivia prompt. Answers match case-insensitively after
// trimming; Aliases lists other accepted spellings and is only set by
// configured banks.
type Question struct {
	Prompt  string
	Answer  string
	Aliases []string
}

// Accepts reports whether answer matches the question's answer or an alias.
func (q Question) Accepts(answer string) bool {
	a := strings.TrimSpace(answer)
	if a == "" {
		return false
	}
	if strings.EqualFold(a, strings.TrimSpace(q.Answer)) {
		return true
	}
	for _, alias := range q.Aliases {
		if strings.EqualFold(a, strings.TrimSpace(alias)) {
			return true
		}
	}
	return false
}

// DefaultQuestions is the built-in question bank. Each answer is a single
// unambiguous spelling; aliases are left to configured banks.
func DefaultQuestions() []Question {
	return []Question{
		{Prompt: "What is the capital of Serbia?", Answer: "Belgrade"},
		{Prompt: "Which planet is known as the Red Planet?", Answer: "Mars"},
		{Prompt: "What is the chemical symbol for gold?", Answer: "Au"},
		{Prompt: "How many sides does a hexagon have? (digits)", Answer: "6"},
		{Prompt: "Which ocean is the largest?", Answer: "Pacific"},
		{Prompt: "What is the surname of the author of the play Hamlet?", Answer: "Shakespeare"},
		{Prompt: "What is the smallest prime number? (digits)", Answer: "2"},
		{Prompt: "Which river flows through Vienna, Budapest and Belgrade? (English name)", Answer: "Danube"},
	}
}

// Trivia asks one question; the first correct answer wins the round.
type Trivia struct {
	rng      *rand.Rand
	duration time.Duration
	points   int
	bank     []Question

	current Question
	winner  string
}

// NewTrivia creates a Trivia game. An empty question bank falls back to
// DefaultQuestions.
func NewTrivia(rng *rand.Rand, opts Options) *Trivia {
	bank := opts.Questions
	if len(bank) == 0 {
		bank = DefaultQuestions()
	}
	return &Trivia{
		rng:      rng,
		duration: durationOr(opts.Duration, triviaDuration),
		points:   intOr(opts.Points, triviaPoints),
		bank:     bank,
	}
}

func (g *Trivia) Kind() Kind              { return KindTrivia }
func (g *Trivia) Duration() time.Duration { return g.duration }
func (g *Trivia) PointsForWin() int       { return g.points }
func (g *Trivia) CorrectAnswer() string   { return g.current.Answer }

func (g *Trivia) StartRound() {
	g.current = g.bank[g.rng.IntN(len(g.bank))]
	g.winner = ""
}

func (g *Trivia) Prompt() string {
	return fmt.Sprintf("Question: %s", g.current.Prompt)
}

func (g *Trivia) CheckAnswer(answer string) bool {
	return g.current.Answer != "" && g.current.Accepts(answer)
}

func (g *Trivia) Feedback(answer string) string {
	if g.CheckAnswer(answer) {
		return "CORRECT"
	}
	return "INCORRECT"
}

func (g *Trivia) Submit(player, answer string, roster []string) Verdict {
	if g.winner != "" {
		return Verdict{Reply: fmt.Sprintf("%s already answered this question.", g.winner), Rejected: true}
	}
	if !g.CheckAnswer(answer) {
		return Verdict{Reply: "INCORRECT"}
	}

	g.winner = player
	return Verdict{
		Reply:    "CORRECT",
		Announce: fmt.Sprintf("Round winner (%s): %s +%d points", KindTrivia, player, g.points),
		Awards:   []Award{{Player: player, Points: g.points}},
		Done:     true,
	}
}

// Expire has nothing to resolve: nobody answered in time.
func (g *Trivia) Expire(roster []string) Verdict {
	return Verdict{}
}
