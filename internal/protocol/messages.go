package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies the type of an envelope
type MessageType string

const (
	// Client -> Server
	TypeRegister MessageType = "REGISTER"
	TypeAnswer   MessageType = "ANSWER"

	// Server -> Client
	TypeRoundStart MessageType = "ROUND_START"
	TypeRoundEnd   MessageType = "ROUND_END"
	TypeResult     MessageType = "RESULT"
	TypeInfo       MessageType = "INFO"
	TypeScores     MessageType = "SCORES"
	TypeError      MessageType = "ERROR"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Inbound reports whether clients may send this type.
func (mt MessageType) Inbound() bool {
	return mt == TypeRegister || mt == TypeAnswer
}

// ErrUnknownMessageType is returned when decoding an envelope whose type is
// not part of the protocol.
var ErrUnknownMessageType = errors.New("unknown message type")

// Envelope is the unit exchanged over a connection. Data is plain text for
// most types and a JSON document for ROUND_START and ROUND_END.
type Envelope struct {
	Type MessageType `json:"type"`
	Data string      `json:"data"`
}

// RoundStart is carried by ROUND_START envelopes
type RoundStart struct {
	Game            string `json:"game"`
	DurationSeconds int    `json:"durationSeconds"`
	Prompt          string `json:"prompt"`
}

// RoundEnd is carried by ROUND_END envelopes
type RoundEnd struct {
	Game          string `json:"game"`
	CorrectAnswer string `json:"correctAnswer"`
	Info          string `json:"info"`
}

// Text builds an envelope with a plain text payload.
func Text(t MessageType, text string) Envelope {
	return Envelope{Type: t, Data: text}
}

// NewEnvelope builds an envelope whose data is the JSON encoding of payload.
func NewEnvelope(t MessageType, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encoding %s payload: %w", t, err)
	}
	return Envelope{Type: t, Data: string(data)}, nil
}

// DecodeData unmarshals the envelope's JSON payload into v.
func (e Envelope) DecodeData(v any) error {
	if err := json.Unmarshal([]byte(e.Data), v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return nil
}

// RoundStart decodes a ROUND_START payload.
func (e Envelope) RoundStart() (RoundStart, error) {
	var rs RoundStart
	if e.Type != TypeRoundStart {
		return rs, fmt.Errorf("expected %s, got %s", TypeRoundStart, e.Type)
	}
	err := e.DecodeData(&rs)
	return rs, err
}

// RoundEnd decodes a ROUND_END payload.
func (e Envelope) RoundEnd() (RoundEnd, error) {
	var re RoundEnd
	if e.Type != TypeRoundEnd {
		return re, fmt.Errorf("expected %s, got %s", TypeRoundEnd, e.Type)
	}
	err := e.DecodeData(&re)
	return re, err
}
