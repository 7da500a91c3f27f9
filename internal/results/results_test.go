package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/quizforbots/internal/game"
	"github.com/lox/quizforbots/internal/session"
)

func sampleSummary() Summary {
	history := []session.RoundRecord{
		{
			Number:        1,
			Kind:          game.KindTargetNumber,
			Ended:         session.RoundTimedOut,
			CorrectAnswer: "512",
			Info:          "Time is up. Closest was ana",
			Awards:        []game.Award{{Player: "ana", Points: 15}},
		},
		{
			Number:        2,
			Kind:          game.KindTrivia,
			Ended:         session.RoundTimedOut,
			CorrectAnswer: "Mars",
			Info:          "Time is up.",
		},
	}
	scores := []session.Score{{Name: "ana", Points: 15}, {Name: "bob", Points: 0}}
	finished := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	return Build("abc", 42, finished, history, scores)
}

func TestBuild(t *testing.T) {
	s := sampleSummary()

	assert.Equal(t, "abc", s.SessionID)
	assert.Equal(t, int64(42), s.Seed)
	assert.Equal(t, time.UTC, s.FinishedAt.Location())
	require.Len(t, s.Rounds, 2)
	assert.Equal(t, Round{
		Number:        1,
		Game:          "TargetNumber",
		Outcome:       "timed_out",
		CorrectAnswer: "512",
		Info:          "Time is up. Closest was ana",
		Awards:        []Award{{Player: "ana", Points: 15}},
	}, s.Rounds[0])
	assert.NotNil(t, s.Rounds[1].Awards, "no awards encodes as an empty list")
	assert.Equal(t, []Score{{Name: "ana", Points: 15}, {Name: "bob", Points: 0}}, s.Scores)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.json")

	require.NoError(t, Write(path, sampleSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "abc", got["sessionId"])
	assert.Len(t, got["rounds"], 2)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	require.NoError(t, Write(path, sampleSummary()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sessionId": "abc"`)
}

func TestWriteMissingDirectory(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "missing", "results.json"), sampleSummary())
	assert.Error(t, err)
}
