package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	// Handshake.
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"

	// Control (client -> server).
	TypeStart  = "START"
	TypePause  = "PAUSE"
	TypeResume = "RESUME"
	TypeStep   = "STEP"
	TypeReset  = "RESET"
	TypeStop   = "STOP"

	// Server -> client.
	TypeState = "STATE"
	TypeFrame = "FRAME"
	TypeInfo  = "INFO"
	TypeError = "ERROR"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// IsControl reports whether t is one of the run-control message types.
func IsControl(t string) bool {
	switch t {
	case TypeStart, TypePause, TypeResume, TypeStep, TypeReset, TypeStop:
		return true
	}
	return false
}
