package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundStartWireFormat(t *testing.T) {
	env, err := NewEnvelope(TypeRoundStart, RoundStart{Game: "Trivia", DurationSeconds: 25, Prompt: "Question: ?"})
	require.NoError(t, err)

	data, err := Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"ROUND_START","data":"{\"game\":\"Trivia\",\"durationSeconds\":25,\"prompt\":\"Question: ?\"}"}`,
		string(data))

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	rs, err := decoded.RoundStart()
	require.NoError(t, err)
	assert.Equal(t, 25, rs.DurationSeconds)
	assert.Equal(t, "Trivia", rs.Game)
}

func TestRoundEndDecode(t *testing.T) {
	env, err := NewEnvelope(TypeRoundEnd, RoundEnd{Game: "CodeBreaker", CorrectAnswer: "1234", Info: "Time is up."})
	require.NoError(t, err)

	re, err := env.RoundEnd()
	require.NoError(t, err)
	assert.Equal(t, "1234", re.CorrectAnswer)

	_, err = env.RoundStart()
	assert.Error(t, err)
}

func TestUnmarshal(t *testing.T) {
	e, err := Unmarshal([]byte(`{"type":"ANSWER","data":"(4 + 1) * 100"}`))
	require.NoError(t, err)
	assert.Equal(t, Text(TypeAnswer, "(4 + 1) * 100"), e)
	assert.True(t, e.Type.Inbound())

	e, err = Unmarshal([]byte(`{"type":"JOIN","data":"x"}`))
	assert.True(t, errors.Is(err, ErrUnknownMessageType))
	assert.Equal(t, MessageType("JOIN"), e.Type)

	_, err = Unmarshal([]byte(`not json`))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownMessageType))
}

func TestInbound(t *testing.T) {
	assert.True(t, TypeRegister.Inbound())
	assert.False(t, TypeScores.Inbound())
	assert.Equal(t, "RESULT", TypeResult.String())
}
