// Package results records how a finished session went: every round's
// outcome and the final standings, written as one JSON document.
package results

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/quizforbots/internal/session"
)

type Summary struct {
	SessionID  string    `json:"sessionId"`
	Seed       int64     `json:"seed"`
	FinishedAt time.Time `json:"finishedAt"`
	Rounds     []Round   `json:"rounds"`
	Scores     []Score   `json:"scores"`
}

type Round struct {
	Number        int     `json:"number"`
	Game          string  `json:"game"`
	Outcome       string  `json:"outcome"`
	CorrectAnswer string  `json:"correctAnswer"`
	Info          string  `json:"info"`
	Awards        []Award `json:"awards"`
}

type Award struct {
	Player string `json:"player"`
	Points int    `json:"points"`
}

type Score struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Build assembles a summary from the orchestrator's round history and the
// roster's final scores.
func Build(sessionID string, seed int64, finishedAt time.Time, history []session.RoundRecord, scores []session.Score) Summary {
	s := Summary{
		SessionID:  sessionID,
		Seed:       seed,
		FinishedAt: finishedAt.UTC(),
		Rounds:     make([]Round, 0, len(history)),
		Scores:     make([]Score, 0, len(scores)),
	}

	for _, rec := range history {
		r := Round{
			Number:        rec.Number,
			Game:          rec.Kind.String(),
			Outcome:       rec.Ended.String(),
			CorrectAnswer: rec.CorrectAnswer,
			Info:          rec.Info,
			Awards:        make([]Award, 0, len(rec.Awards)),
		}
		for _, a := range rec.Awards {
			r.Awards = append(r.Awards, Award{Player: a.Player, Points: a.Points})
		}
		s.Rounds = append(s.Rounds, r)
	}

	for _, sc := range scores {
		s.Scores = append(s.Scores, Score{Name: sc.Name, Points: sc.Points})
	}
	return s
}

// Write stores the summary at path, replacing any previous file atomically.
func Write(path string, s Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'), 0o644)
}
