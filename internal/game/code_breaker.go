package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"
	"time"

	"github.com/lox/quizforbots/internal/randutil"
)

const (
	codeBreakerDuration      = 120 * time.Second
	codeBreakerPoints        = 15
	codeBreakerReducedPoints = 10
	codeBreakerAttempts      = 8
	codeLength               = 4
	maxSymbol                = 6

	// the round ends once this many players cracked the code
	codeBreakerMaxWinners = 2
)

// Feedback markers, one per guess position.
const (
	MarkExact     = 'T'
	MarkMisplaced = 'M'
	MarkNone      = 'N'
)

// CodeBreaker hides a four digit code with digits 1-6 (repeats allowed).
// Every player has their own attempt budget and guess history.
type CodeBreaker struct {
	rng           *rand.Rand
	duration      time.Duration
	points        int
	reducedPoints int
	attempts      int

	secret       string
	attemptsLeft map[string]int
	history      map[string][]string
	winners      []string
}

// NewCodeBreaker creates a CodeBreaker game.
func NewCodeBreaker(rng *rand.Rand, opts Options) *CodeBreaker {
	return &CodeBreaker{
		rng:           rng,
		duration:      durationOr(opts.Duration, codeBreakerDuration),
		points:        intOr(opts.Points, codeBreakerPoints),
		reducedPoints: intOr(opts.ReducedPoints, codeBreakerReducedPoints),
		attempts:      intOr(opts.Attempts, codeBreakerAttempts),
		attemptsLeft:  make(map[string]int),
		history:       make(map[string][]string),
	}
}

func (g *CodeBreaker) Kind() Kind              { return KindCodeBreaker }
func (g *CodeBreaker) Duration() time.Duration { return g.duration }
func (g *CodeBreaker) PointsForWin() int       { return g.points }
func (g *CodeBreaker) CorrectAnswer() string   { return g.secret }

func (g *CodeBreaker) StartRound() {
	var b strings.Builder
	for i := 0; i < codeLength; i++ {
		b.WriteByte(byte('0' + randutil.IntRange(g.rng, 1, maxSymbol)))
	}
	g.setup(b.String())
}

func (g *CodeBreaker) setup(secret string) {
	g.secret = secret
	g.attemptsLeft = make(map[string]int)
	g.history = make(map[string][]string)
	g.winners = nil
}

func (g *CodeBreaker) Prompt() string {
	return fmt.Sprintf("Crack the code: enter %d digits from 1 to %d. You have %d attempts.\nFeedback: %c = right digit right place, %c = right digit wrong place, %c = no match.",
		codeLength, maxSymbol, g.attempts, MarkExact, MarkMisplaced, MarkNone)
}

func (g *CodeBreaker) CheckAnswer(answer string) bool {
	return g.secret != "" && normalizeGuess(answer) == g.secret
}

func (g *CodeBreaker) Feedback(answer string) string {
	guess := normalizeGuess(answer)
	if !validGuess(guess) {
		return fmt.Sprintf("Invalid guess: enter %d digits from 1 to %d", codeLength, maxSymbol)
	}
	return Score(g.secret, guess)
}

// AttemptsLeft returns how many guesses player still has.
func (g *CodeBreaker) AttemptsLeft(player string) int {
	if left, ok := g.attemptsLeft[player]; ok {
		return left
	}
	return g.attempts
}

// History returns the guesses player has made this round.
func (g *CodeBreaker) History(player string) []string {
	return append([]string(nil), g.history[player]...)
}

func (g *CodeBreaker) hasWon(player string) bool {
	for _, w := range g.winners {
		if w == player {
			return true
		}
	}
	return false
}

// Submit spends one attempt per guess, malformed ones included. Only
// well-formed guesses enter the history.
func (g *CodeBreaker) Submit(player, answer string, roster []string) Verdict {
	if g.hasWon(player) {
		return Verdict{Reply: "You already cracked the code!", Rejected: true}
	}
	left := g.AttemptsLeft(player)
	if left == 0 {
		return Verdict{Reply: "You have no attempts left.", Rejected: true}
	}

	left--
	g.attemptsLeft[player] = left

	guess := normalizeGuess(answer)
	if !validGuess(guess) {
		return Verdict{
			Reply: fmt.Sprintf("%s | Attempts left: %d", g.Feedback(guess), left),
			Done:  g.finished(roster),
		}
	}

	g.history[player] = append(g.history[player], guess)

	var v Verdict
	if guess == g.secret {
		g.winners = append(g.winners, player)
		points := g.points
		if len(g.winners) > 1 {
			points = g.reducedPoints
		}
		v.Reply = fmt.Sprintf("Correct! Cracked in %d attempt(s).", len(g.history[player]))
		v.Announce = fmt.Sprintf("%s cracked the code! +%d points", player, points)
		v.Awards = []Award{{Player: player, Points: points}}
	} else {
		v.Reply = fmt.Sprintf("Feedback: %s | Attempts left: %d", Score(g.secret, guess), left)
	}

	v.Done = g.finished(roster)
	return v
}

// Expire has nothing to resolve: wins are awarded as they happen.
func (g *CodeBreaker) Expire(roster []string) Verdict {
	return Verdict{}
}

// finished reports whether two players have won, or every registered player
// has either won or run out of attempts.
func (g *CodeBreaker) finished(roster []string) bool {
	if len(g.winners) >= codeBreakerMaxWinners {
		return true
	}
	if len(roster) == 0 {
		return false
	}
	for _, p := range roster {
		if !g.hasWon(p) && g.AttemptsLeft(p) > 0 {
			return false
		}
	}
	return true
}

// Score compares guess against secret with Mastermind rules: exact positions
// are marked first, then remaining guess digits are matched by value against
// remaining secret digits, each digit consumed at most once on both sides.
func Score(secret, guess string) string {
	marks := make([]byte, len(guess))
	remaining := make(map[byte]int)

	for i := 0; i < len(guess); i++ {
		if i < len(secret) && guess[i] == secret[i] {
			marks[i] = MarkExact
			continue
		}
		if i < len(secret) {
			remaining[secret[i]]++
		}
	}

	for i := 0; i < len(guess); i++ {
		if marks[i] == MarkExact {
			continue
		}
		if remaining[guess[i]] > 0 {
			marks[i] = MarkMisplaced
			remaining[guess[i]]--
		} else {
			marks[i] = MarkNone
		}
	}

	return string(marks)
}

func normalizeGuess(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "")
}

func validGuess(guess string) bool {
	if len(guess) != codeLength {
		return false
	}
	for i := 0; i < len(guess); i++ {
		if guess[i] < '1' || guess[i] > '0'+maxSymbol {
			return false
		}
	}
	return true
}
