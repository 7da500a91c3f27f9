package game

import (
	"fmt"
	"math"
	rand "math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/lox/quizforbots/internal/expr"
	"github.com/lox/quizforbots/internal/randutil"
)

const (
	targetNumberDuration = 30 * time.Second
	targetNumberPoints   = 15

	// results closer than this to the target are exact, and differences
	// closer than this to each other are tied
	exactEpsilon = 1e-9
)

type submission struct {
	value float64
	diff  float64 // +Inf when the expression did not evaluate
}

// TargetNumber asks players to reach a three digit target using six tiles:
// four from 1-9 and two from 10-50. Each player gets a single submission.
type TargetNumber struct {
	rng      *rand.Rand
	duration time.Duration
	points   int

	fixedTarget int
	fixedTiles  []int

	target  int
	tiles   []int
	results map[string]submission
	winner  string
	settled bool
}

// ValidatePuzzle checks a fixed TargetNumber puzzle has the drawn shape: a
// three digit target, four tiles from 1-9 then two from 10-50.
func ValidatePuzzle(target int, tiles []int) error {
	if target < 100 || target > 999 {
		return fmt.Errorf("target %d is not a three digit number", target)
	}
	if len(tiles) != 6 {
		return fmt.Errorf("puzzle needs 6 tiles, got %d", len(tiles))
	}
	for i, t := range tiles {
		lo, hi := 1, 9
		if i >= 4 {
			lo, hi = 10, 50
		}
		if t < lo || t > hi {
			return fmt.Errorf("tile %d (%d) must be between %d and %d", i+1, t, lo, hi)
		}
	}
	return nil
}

// NewTargetNumber creates a TargetNumber game. A valid fixed puzzle in opts
// replaces the random draw.
func NewTargetNumber(rng *rand.Rand, opts Options) *TargetNumber {
	g := &TargetNumber{
		rng:      rng,
		duration: durationOr(opts.Duration, targetNumberDuration),
		points:   intOr(opts.Points, targetNumberPoints),
		results:  make(map[string]submission),
	}
	if ValidatePuzzle(opts.Target, opts.Tiles) == nil {
		g.fixedTarget = opts.Target
		g.fixedTiles = append([]int(nil), opts.Tiles...)
	}
	return g
}

func (g *TargetNumber) Kind() Kind              { return KindTargetNumber }
func (g *TargetNumber) Duration() time.Duration { return g.duration }
func (g *TargetNumber) PointsForWin() int       { return g.points }

func (g *TargetNumber) CorrectAnswer() string {
	if g.target == 0 {
		return ""
	}
	return strconv.Itoa(g.target)
}

// Tiles returns a copy of the current tiles.
func (g *TargetNumber) Tiles() []int {
	return append([]int(nil), g.tiles...)
}

func (g *TargetNumber) StartRound() {
	if g.fixedTarget != 0 {
		g.setup(g.fixedTarget, append([]int(nil), g.fixedTiles...))
		return
	}

	tiles := make([]int, 0, 6)
	for i := 0; i < 4; i++ {
		tiles = append(tiles, randutil.IntRange(g.rng, 1, 9))
	}
	for i := 0; i < 2; i++ {
		tiles = append(tiles, randutil.IntRange(g.rng, 10, 50))
	}
	g.setup(randutil.IntRange(g.rng, 100, 999), tiles)
}

func (g *TargetNumber) setup(target int, tiles []int) {
	g.target = target
	g.tiles = tiles
	g.results = make(map[string]submission)
	g.winner = ""
	g.settled = false
}

func (g *TargetNumber) Prompt() string {
	nums := make([]string, len(g.tiles))
	for i, t := range g.tiles {
		nums[i] = strconv.Itoa(t)
	}
	return fmt.Sprintf("Target: %d\nNumbers: %s\nCombine the numbers with + - * / and parentheses, each at most once. One attempt per player.",
		g.target, strings.Join(nums, ", "))
}

func (g *TargetNumber) evaluate(answer string) (submission, error) {
	v, err := expr.Evaluate(answer, g.tiles)
	if err != nil {
		return submission{value: math.NaN(), diff: math.Inf(1)}, err
	}
	return submission{value: v, diff: math.Abs(v - float64(g.target))}, nil
}

func (g *TargetNumber) CheckAnswer(answer string) bool {
	s, err := g.evaluate(answer)
	return err == nil && s.diff < exactEpsilon
}

func (g *TargetNumber) Feedback(answer string) string {
	s, err := g.evaluate(answer)
	if err != nil {
		return describeExprError(err)
	}
	return fmt.Sprintf("Result: %s | Difference: %s", formatNumber(s.value), formatNumber(s.diff))
}

// Submit charges the player's single attempt even when the expression fails
// to evaluate.
func (g *TargetNumber) Submit(player, answer string, roster []string) Verdict {
	if _, tried := g.results[player]; tried {
		return Verdict{Reply: "You already used your attempt in TargetNumber.", Rejected: true}
	}

	s, err := g.evaluate(answer)
	g.results[player] = s

	var v Verdict
	if err != nil {
		v.Reply = describeExprError(err)
	} else {
		v.Reply = fmt.Sprintf("Result: %s | Difference: %s", formatNumber(s.value), formatNumber(s.diff))
		if s.diff < exactEpsilon && g.winner == "" {
			g.winner = player
			g.settled = true
			v.Announce = fmt.Sprintf("%s hit the target first! +%d points", player, g.points)
			v.Awards = []Award{{Player: player, Points: g.points}}
			v.Done = true
			return v
		}
	}

	if g.allSubmitted(roster) {
		closing := g.resolve(roster, "Nobody hit the target exactly.")
		v.Announce = closing.Announce
		v.Awards = closing.Awards
		v.Done = true
	}
	return v
}

// Expire awards the closest submission when nobody was exact.
func (g *TargetNumber) Expire(roster []string) Verdict {
	if g.settled {
		return Verdict{}
	}
	return g.resolve(roster, "Time is up.")
}

func (g *TargetNumber) allSubmitted(roster []string) bool {
	if len(roster) == 0 {
		return false
	}
	for _, p := range roster {
		if _, ok := g.results[p]; !ok {
			return false
		}
	}
	return true
}

// resolve picks the unique closest finite difference among roster players.
// Every entry within exactEpsilon of the minimum counts towards a tie, so a
// three way near-tie is a draw too.
func (g *TargetNumber) resolve(roster []string, lead string) Verdict {
	g.settled = true

	best := math.Inf(1)
	for _, p := range roster {
		if s, ok := g.results[p]; ok && s.diff < best {
			best = s.diff
		}
	}
	if math.IsInf(best, 1) {
		return Verdict{Announce: lead + " No valid submissions, no points awarded."}
	}

	var closest []string
	for _, p := range roster {
		if s, ok := g.results[p]; ok && math.Abs(s.diff-best) < exactEpsilon {
			closest = append(closest, p)
		}
	}
	if len(closest) > 1 {
		return Verdict{Announce: fmt.Sprintf("%s Draw between %s (difference %s), no points awarded.",
			lead, strings.Join(closest, ", "), formatNumber(best))}
	}

	winner := closest[0]
	g.winner = winner
	return Verdict{
		Announce: fmt.Sprintf("%s Closest was %s (difference %s) +%d points", lead, winner, formatNumber(best), g.points),
		Awards:   []Award{{Player: winner, Points: g.points}},
	}
}

func describeExprError(err error) string {
	return fmt.Sprintf("Invalid expression (%s): %v", expr.Kind(err), err)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
