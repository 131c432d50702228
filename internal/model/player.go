package model

// Player is a participant waiting for or seated in a match. Seating colors
// travel in MatchFoundEvent, not here.
type Player struct {
	ID string `json:"id"`
}

// MatchFoundEvent tells a queued player which match they were paired into.
type MatchFoundEvent struct {
	GameID string `json:"gameId"`
	Color  Color  `json:"color"`
}
