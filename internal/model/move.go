package model

// MoveCandidate is a single legal destination produced by move generation.
// It is transient: consumed by validation, the AI, or discarded.
type MoveCandidate struct {
	To           int  `json:"to"`
	IsCapture    bool `json:"isCapture"`
	IsEnPassant  bool `json:"isEnPassant,omitempty"`
	IsDoublePush bool `json:"isDoublePush,omitempty"`
}

// SimpleMove is a from/to pair, the shape exchanged with clients.
type SimpleMove struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// MoveRecord is one entry of the move history. Immutable once appended.
type MoveRecord struct {
	From         int    `json:"from"`
	To           int    `json:"to"`
	Piece        Piece  `json:"piece"`
	Captured     *Piece `json:"captured,omitempty"`
	MoveNumber   int    `json:"moveNumber"`
	IsEnPassant  bool   `json:"isEnPassant,omitempty"`
	IsDoublePush bool   `json:"isDoublePush,omitempty"`
	Promotion    bool   `json:"promotion,omitempty"`
}

// EndReason records how a finished game ended.
type EndReason string

const (
	EndCheckmate   EndReason = "checkmate"
	EndStalemate   EndReason = "stalemate"
	EndLeftInCheck EndReason = "leftInCheck"
	EndTimeout     EndReason = "timeout"
	EndResignation EndReason = "resignation"
)

// GameStatus is the outcome of the termination check run after every move.
// Over=false with InCheck=true is the non-terminal "in check" status.
type GameStatus struct {
	Over    bool      `json:"over"`
	Winner  *Color    `json:"winner,omitempty"`
	Reason  EndReason `json:"reason,omitempty"`
	InCheck bool      `json:"inCheck"`
}
