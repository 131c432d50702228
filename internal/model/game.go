package model

import (
	"errors"
	"math/rand"
	"time"
)

// MakeMove failure reasons. These are the human-readable strings surfaced to
// clients, so they are capitalized sentences rather than the usual Go style.
var (
	ErrGameOver    = errors.New("Game is over")
	ErrNoPiece     = errors.New("No piece at square")
	ErrNotYourTurn = errors.New("Not your turn")
	ErrInvalidMove = errors.New("Invalid move")
)

// Game is the aggregate root for a single match: position, result, history
// and both clocks. It is synchronous and lock-free; callers running a Game
// from multiple goroutines must serialize access themselves.
type Game struct {
	pos       Position
	gameOver  bool
	winner    *Color
	endReason EndReason
	lastMove  *SimpleMove
	history   []MoveRecord

	whiteTimeMs   int64
	blackTimeMs   int64
	lastTimestamp time.Time
	timerRunning  bool
	timeControl   int // minutes per side, 0 = untimed

	rng *rand.Rand
	now func() time.Time
}

// NewGame creates a fresh empty-board game with the given time control in
// minutes per side (0 for untimed). The board stays empty until
// GenerateStartingPosition is called.
func NewGame(timeControlMinutes int) *Game {
	return NewGameWithRand(timeControlMinutes, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGameWithRand is NewGame with an injected random source, so starting
// positions are reproducible under test.
func NewGameWithRand(timeControlMinutes int, rng *rand.Rand) *Game {
	budget := int64(timeControlMinutes) * 60 * 1000
	return &Game{
		pos:         NewPosition(),
		history:     make([]MoveRecord, 0),
		whiteTimeMs: budget,
		blackTimeMs: budget,
		timeControl: timeControlMinutes,
		rng:         rng,
		now:         time.Now,
	}
}

// GenerateStartingPosition deals a random Kalas layout onto the board and
// returns it. Safe to call again for a re-deal before the first move.
func (g *Game) GenerateStartingPosition() Board {
	g.pos.GenerateStartingPosition(g.rng)
	return g.pos.Board
}

func (g *Game) CurrentTurn() Color      { return g.pos.Turn }
func (g *Game) TurnCount() int          { return g.pos.TurnCount }
func (g *Game) MoveNumber() int         { return g.pos.MoveNumber }
func (g *Game) GameOver() bool          { return g.gameOver }
func (g *Game) Winner() *Color          { return g.winner }
func (g *Game) EndReason() EndReason    { return g.endReason }
func (g *Game) LastMove() *SimpleMove   { return g.lastMove }
func (g *Game) Board() Board            { return g.pos.Board }
func (g *Game) PieceAt(cell int) *Piece { return g.pos.PieceAt(cell) }

// Position returns a scratch copy of the current position for the search
// engine. Mutating the copy never touches the game.
func (g *Game) Position() Position {
	pos := g.pos
	if g.pos.EnPassantTarget != nil {
		ep := *g.pos.EnPassantTarget
		pos.EnPassantTarget = &ep
	}
	return pos
}

func (g *Game) MoveHistory() []MoveRecord {
	out := make([]MoveRecord, len(g.history))
	copy(out, g.history)
	return out
}

func (g *Game) IsInCheck(color Color) bool     { return g.pos.InCheck(color) }
func (g *Game) FindKing(color Color) int       { return g.pos.FindKing(color) }
func (g *Game) HasValidMoves(color Color) bool { return g.pos.HasValidMoves(color) }

// GetValidMoves returns the legal destinations for the piece on the cell.
// Empty when the game is over, the cell is empty, or the piece does not
// belong to the side to move.
func (g *Game) GetValidMoves(cell int) []MoveCandidate {
	if g.gameOver {
		return []MoveCandidate{}
	}
	piece := g.pos.PieceAt(cell)
	if piece == nil || piece.Color != g.pos.Turn {
		return []MoveCandidate{}
	}
	return g.pos.CandidateMoves(cell)
}

// MoveResult is the successful outcome of MakeMove.
type MoveResult struct {
	Move   MoveRecord `json:"move"`
	Status GameStatus `json:"gameStatus"`
}

// MakeMove validates and executes a move. On any failure the game is left
// exactly as it was and the error carries the reason. On success the move is
// applied, clocks and counters advance, and the termination status for the
// resulting position is returned.
func (g *Game) MakeMove(from, to int) (MoveResult, error) {
	if g.gameOver {
		return MoveResult{}, ErrGameOver
	}
	piece := g.pos.PieceAt(from)
	if piece == nil {
		return MoveResult{}, ErrNoPiece
	}
	if piece.Color != g.pos.Turn {
		return MoveResult{}, ErrNotYourTurn
	}
	var chosen *MoveCandidate
	for _, cand := range g.pos.CandidateMoves(from) {
		if cand.To == to {
			c := cand
			chosen = &c
			break
		}
	}
	if chosen == nil {
		return MoveResult{}, ErrInvalidMove
	}

	// Deduct the mover's thinking time before the turn flips.
	g.UpdateTime()

	mover := piece.Color
	record := MoveRecord{
		From:         from,
		To:           to,
		Piece:        *piece,
		MoveNumber:   g.pos.MoveNumber,
		IsEnPassant:  chosen.IsEnPassant,
		IsDoublePush: chosen.IsDoublePush,
	}
	undo := g.pos.Apply(Move{From: from, MoveCandidate: *chosen})
	if undo.captured != nil {
		captured := *undo.captured
		record.Captured = &captured
	}
	if promoted := g.pos.Board[to]; promoted != nil && promoted.Type == Queen && piece.Type == Pawn {
		record.Promotion = true
	}
	g.history = append(g.history, record)
	g.lastMove = &SimpleMove{From: from, To: to}
	g.lastTimestamp = g.now()

	status := g.concludeTurn(mover)
	return MoveResult{Move: record, Status: status}, nil
}

// concludeTurn runs the termination ladder after a successful move by the
// given color. Leaving your own king in check is an immediate loss, not an
// illegal move.
func (g *Game) concludeTurn(mover Color) GameStatus {
	next := g.pos.Turn
	if g.pos.InCheck(mover) {
		winner := mover.Opponent()
		return g.finish(&winner, EndLeftInCheck)
	}
	if !g.pos.HasValidMoves(next) {
		if g.pos.InCheck(next) {
			winner := mover
			return g.finish(&winner, EndCheckmate)
		}
		return g.finish(nil, EndStalemate)
	}
	return GameStatus{InCheck: g.pos.InCheck(next)}
}

// Resign ends the game in favor of the resigner's opponent.
func (g *Game) Resign(color Color) GameStatus {
	if g.gameOver {
		return GameStatus{Over: true, Winner: g.winner, Reason: g.endReason}
	}
	winner := color.Opponent()
	return g.finish(&winner, EndResignation)
}

func (g *Game) finish(winner *Color, reason EndReason) GameStatus {
	g.gameOver = true
	g.winner = winner
	g.endReason = reason
	g.timerRunning = false
	status := GameStatus{Over: true, Winner: winner, Reason: reason}
	if winner != nil {
		status.InCheck = g.pos.InCheck(winner.Opponent())
	}
	return status
}

// GameState is the wire snapshot of a whole game. GetState/LoadState
// round-trip it losslessly; the transport layer serializes it as-is.
type GameState struct {
	Board           []*Piece     `json:"board"`
	CurrentTurn     Color        `json:"currentTurn"`
	MoveNumber      int          `json:"moveNumber"`
	TurnCount       int          `json:"turnCount"`
	GameOver        bool         `json:"gameOver"`
	Winner          *Color       `json:"winner"`
	EndReason       EndReason    `json:"endReason,omitempty"`
	LastMove        *SimpleMove  `json:"lastMove"`
	EnPassantTarget *int         `json:"enPassantTarget"`
	MoveHistory     []MoveRecord `json:"moveHistory"`
	WhiteTimeMs     int64        `json:"whiteTimeMs"`
	BlackTimeMs     int64        `json:"blackTimeMs"`
	TimeControl     int          `json:"timeControl"`
}

// GetState snapshots the entire aggregate as plain data.
func (g *Game) GetState() GameState {
	board := make([]*Piece, BoardSize)
	copy(board, g.pos.Board[:])
	state := GameState{
		Board:       board,
		CurrentTurn: g.pos.Turn,
		MoveNumber:  g.pos.MoveNumber,
		TurnCount:   g.pos.TurnCount,
		GameOver:    g.gameOver,
		EndReason:   g.endReason,
		MoveHistory: g.MoveHistory(),
		WhiteTimeMs: g.whiteTimeMs,
		BlackTimeMs: g.blackTimeMs,
		TimeControl: g.timeControl,
	}
	if g.winner != nil {
		w := *g.winner
		state.Winner = &w
	}
	if g.lastMove != nil {
		lm := *g.lastMove
		state.LastMove = &lm
	}
	if g.pos.EnPassantTarget != nil {
		ep := *g.pos.EnPassantTarget
		state.EnPassantTarget = &ep
	}
	return state
}

// LoadState replaces the aggregate with the snapshot's contents. Loading a
// freshly-taken snapshot reproduces an equivalent game.
func (g *Game) LoadState(state GameState) {
	g.pos = NewPosition()
	for cell := 0; cell < BoardSize && cell < len(state.Board); cell++ {
		g.pos.Board[cell] = state.Board[cell]
	}
	g.pos.Turn = state.CurrentTurn
	g.pos.MoveNumber = state.MoveNumber
	g.pos.TurnCount = state.TurnCount
	if state.EnPassantTarget != nil {
		ep := *state.EnPassantTarget
		g.pos.EnPassantTarget = &ep
	}
	g.gameOver = state.GameOver
	g.endReason = state.EndReason
	g.winner = nil
	if state.Winner != nil {
		w := *state.Winner
		g.winner = &w
	}
	g.lastMove = nil
	if state.LastMove != nil {
		lm := *state.LastMove
		g.lastMove = &lm
	}
	g.history = make([]MoveRecord, len(state.MoveHistory))
	copy(g.history, state.MoveHistory)
	g.whiteTimeMs = state.WhiteTimeMs
	g.blackTimeMs = state.BlackTimeMs
	g.timeControl = state.TimeControl
	g.timerRunning = false
}
