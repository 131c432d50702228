package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove       MessageType = "move"
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeResign     MessageType = "resign"
	MessageTypeClock      MessageType = "clock"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MovePayload is the body of a MessageTypeMove message: cell indexes, a1=0.
type MovePayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// ErrorPayload carries a human-readable failure reason.
type ErrorPayload struct {
	Reason string `json:"reason"`
}

// ClockPayload carries the remaining time for both sides in milliseconds.
type ClockPayload struct {
	WhiteTimeMs int64 `json:"whiteTimeMs"`
	BlackTimeMs int64 `json:"blackTimeMs"`
}
