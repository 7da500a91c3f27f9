package protocol

import (
	"encoding/json"
	"fmt"
)

var known = map[MessageType]bool{
	TypeRegister:   true,
	TypeAnswer:     true,
	TypeRoundStart: true,
	TypeRoundEnd:   true,
	TypeResult:     true,
	TypeInfo:       true,
	TypeScores:     true,
	TypeError:      true,
}

// Marshal serializes an envelope for the wire
func Marshal(e Envelope) ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal parses one envelope. Unknown types are reported with
// ErrUnknownMessageType alongside the decoded envelope so callers can
// answer with the offending type.
func Unmarshal(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("invalid envelope: %w", err)
	}
	if !known[e.Type] {
		return e, fmt.Errorf("%w: %q", ErrUnknownMessageType, e.Type)
	}
	return e, nil
}
