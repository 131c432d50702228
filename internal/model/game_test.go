package model

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// testGame builds an untimed game holding exactly the given pieces.
func testGame(pieces map[int]Piece, turn Color, turnCount int) *Game {
	g := NewGame(0)
	board := make([]*Piece, BoardSize)
	for cell, piece := range pieces {
		pc := piece
		board[cell] = &pc
	}
	g.LoadState(GameState{
		Board:       board,
		CurrentTurn: turn,
		MoveNumber:  1,
		TurnCount:   turnCount,
		MoveHistory: []MoveRecord{},
	})
	return g
}

func TestMakeMoveRejections(t *testing.T) {
	e2, e7 := CellAt(1, 4), CellAt(6, 4)
	g := testGame(map[int]Piece{
		e2:           {Type: Pawn, Color: White},
		e7:           {Type: Pawn, Color: Black},
		CellAt(0, 4): {Type: King, Color: White},
		CellAt(7, 4): {Type: King, Color: Black},
	}, White, 10)

	t.Run("empty origin", func(t *testing.T) {
		if _, err := g.MakeMove(CellAt(3, 3), CellAt(4, 3)); !errors.Is(err, ErrNoPiece) {
			t.Errorf("err = %v; want ErrNoPiece", err)
		}
	})

	t.Run("wrong turn", func(t *testing.T) {
		_, err := g.MakeMove(e7, CellAt(5, 4))
		if !errors.Is(err, ErrNotYourTurn) {
			t.Fatalf("err = %v; want ErrNotYourTurn", err)
		}
		if err.Error() != "Not your turn" {
			t.Errorf("reason = %q; want %q", err.Error(), "Not your turn")
		}
	})

	t.Run("illegal destination", func(t *testing.T) {
		if _, err := g.MakeMove(e2, CellAt(4, 4)); !errors.Is(err, ErrInvalidMove) {
			t.Errorf("err = %v; want ErrInvalidMove", err)
		}
	})

	t.Run("no mutation on failure", func(t *testing.T) {
		if g.CurrentTurn() != White || g.TurnCount() != 10 || len(g.MoveHistory()) != 0 {
			t.Error("failed moves mutated the game")
		}
	})
}

func TestMakeMoveAdvancesCounters(t *testing.T) {
	e2, e7 := CellAt(1, 4), CellAt(6, 4)
	g := testGame(map[int]Piece{
		e2:           {Type: Pawn, Color: White},
		e7:           {Type: Pawn, Color: Black},
		CellAt(0, 0): {Type: King, Color: White},
		CellAt(7, 7): {Type: King, Color: Black},
	}, White, 10)

	result, err := g.MakeMove(e2, CellAt(2, 4))
	if err != nil {
		t.Fatalf("white move failed: %v", err)
	}
	if g.CurrentTurn() != Black {
		t.Error("turn did not pass to black")
	}
	if g.TurnCount() != 11 {
		t.Errorf("turnCount = %d; want 11", g.TurnCount())
	}
	if g.MoveNumber() != 1 {
		t.Errorf("moveNumber after white's move = %d; want 1", g.MoveNumber())
	}
	if result.Status.Over {
		t.Error("quiet move reported the game over")
	}

	if _, err := g.MakeMove(e7, CellAt(5, 4)); err != nil {
		t.Fatalf("black move failed: %v", err)
	}
	if g.MoveNumber() != 2 {
		t.Errorf("moveNumber after black's move = %d; want 2", g.MoveNumber())
	}
	if got := len(g.MoveHistory()); got != 2 {
		t.Errorf("history length = %d; want 2", got)
	}
	if lm := g.LastMove(); lm == nil || lm.From != e7 {
		t.Errorf("lastMove = %+v; want from e7", lm)
	}
}

func TestLeftInCheckLosesImmediately(t *testing.T) {
	e1, e2, e8 := CellAt(0, 4), CellAt(1, 4), CellAt(7, 4)
	g := testGame(map[int]Piece{
		e1:           {Type: King, Color: White},
		e2:           {Type: Rook, Color: White},
		e8:           {Type: Rook, Color: Black},
		CellAt(7, 0): {Type: King, Color: Black},
	}, White, 10)

	// The rook move is a perfectly valid rook destination, but it exposes
	// the white king to the e8 rook.
	result, err := g.MakeMove(e2, CellAt(1, 3))
	if err != nil {
		t.Fatalf("move rejected: %v", err)
	}
	if !result.Status.Over {
		t.Fatal("game not over after leaving own king in check")
	}
	if result.Status.Reason != EndLeftInCheck {
		t.Errorf("reason = %q; want %q", result.Status.Reason, EndLeftInCheck)
	}
	if result.Status.Winner == nil || *result.Status.Winner != Black {
		t.Errorf("winner = %v; want black", result.Status.Winner)
	}
	if !g.GameOver() {
		t.Error("gameOver flag not set")
	}
}

// blockadePieces boxes the black king into a8 behind its own stuck pieces.
// During the capture-free opening the blockers have no moves at all, so the
// position is terminal for black as soon as white has moved.
func blockadePieces() map[int]Piece {
	return map[int]Piece{
		CellAt(7, 0): {Type: King, Color: Black},   // a8
		CellAt(6, 0): {Type: Pawn, Color: Black},   // a7
		CellAt(6, 1): {Type: Pawn, Color: Black},   // b7
		CellAt(7, 1): {Type: Bishop, Color: Black}, // b8
		CellAt(5, 0): {Type: Pawn, Color: White},   // a6 blocks a7
		CellAt(5, 1): {Type: Pawn, Color: White},   // b6 blocks b7
		CellAt(5, 4): {Type: Knight, Color: White}, // e6
		CellAt(0, 4): {Type: King, Color: White},   // e1
	}
}

func TestCheckmate(t *testing.T) {
	g := testGame(blockadePieces(), White, 1)

	// Nc7 checks the boxed king; black has no reply on half-move 2.
	result, err := g.MakeMove(CellAt(5, 4), CellAt(6, 2))
	if err != nil {
		t.Fatalf("move rejected: %v", err)
	}
	if !result.Status.Over || result.Status.Reason != EndCheckmate {
		t.Fatalf("status = %+v; want checkmate", result.Status)
	}
	if result.Status.Winner == nil || *result.Status.Winner != White {
		t.Errorf("winner = %v; want white", result.Status.Winner)
	}
}

func TestStalemate(t *testing.T) {
	pieces := blockadePieces()
	pieces[CellAt(6, 2)] = Piece{Type: Pawn, Color: White} // c7 keeps the bishop boxed
	g := testGame(pieces, White, 1)

	// Nd8 leaves the boxed king unchecked and black without a move.
	result, err := g.MakeMove(CellAt(5, 4), CellAt(7, 3))
	if err != nil {
		t.Fatalf("move rejected: %v", err)
	}
	if !result.Status.Over || result.Status.Reason != EndStalemate {
		t.Fatalf("status = %+v; want stalemate", result.Status)
	}
	if result.Status.Winner != nil {
		t.Errorf("winner = %v; want draw", result.Status.Winner)
	}
}

func TestCheckStatusNonTerminal(t *testing.T) {
	g := testGame(map[int]Piece{
		CellAt(0, 4): {Type: King, Color: White},
		CellAt(1, 7): {Type: Rook, Color: White}, // h2
		CellAt(7, 4): {Type: King, Color: Black},
		CellAt(7, 0): {Type: Rook, Color: Black},
	}, White, 10)

	// Rh2-h8 gives check; the black king can still step aside.
	result, err := g.MakeMove(CellAt(1, 7), CellAt(7, 7))
	if err != nil {
		t.Fatalf("move rejected: %v", err)
	}
	if result.Status.Over {
		t.Fatal("check reported as terminal")
	}
	if !result.Status.InCheck {
		t.Error("check not reported")
	}
}

func TestEnPassantThroughGame(t *testing.T) {
	d2, d4, d3, e4 := CellAt(1, 3), CellAt(3, 3), CellAt(2, 3), CellAt(3, 4)
	g := testGame(map[int]Piece{
		d2:           {Type: Pawn, Color: White},
		e4:           {Type: Pawn, Color: Black},
		CellAt(0, 0): {Type: King, Color: White},
		CellAt(7, 7): {Type: King, Color: Black},
	}, White, 5)

	if _, err := g.MakeMove(d2, d4); err != nil {
		t.Fatalf("double push failed: %v", err)
	}
	result, err := g.MakeMove(e4, d3)
	if err != nil {
		t.Fatalf("en passant capture failed: %v", err)
	}
	if !result.Move.IsEnPassant {
		t.Error("move record not flagged en passant")
	}
	if result.Move.Captured == nil || result.Move.Captured.Type != Pawn {
		t.Error("captured pawn missing from the record")
	}
	if g.PieceAt(d4) != nil {
		t.Error("passed-over pawn still on d4")
	}
	if piece := g.PieceAt(d3); piece == nil || piece.Color != Black {
		t.Error("capturing pawn not on d3")
	}
}

func TestAutoPromotion(t *testing.T) {
	a7, a8 := CellAt(6, 0), CellAt(7, 0)
	g := testGame(map[int]Piece{
		a7:           {Type: Pawn, Color: White},
		CellAt(0, 4): {Type: King, Color: White},
		CellAt(7, 7): {Type: King, Color: Black},
	}, White, 10)

	result, err := g.MakeMove(a7, a8)
	if err != nil {
		t.Fatalf("promotion move failed: %v", err)
	}
	if !result.Move.Promotion {
		t.Error("move record not flagged as promotion")
	}
	if piece := g.PieceAt(a8); piece == nil || piece.Type != Queen {
		t.Errorf("piece on a8 = %+v; want white queen", piece)
	}
}

func TestResign(t *testing.T) {
	for _, tc := range []struct {
		resigner Color
		winner   Color
	}{
		{White, Black},
		{Black, White},
	} {
		g := testGame(map[int]Piece{
			CellAt(0, 4): {Type: King, Color: White},
			CellAt(7, 4): {Type: King, Color: Black},
		}, White, 10)

		status := g.Resign(tc.resigner)
		if !status.Over || status.Reason != EndResignation {
			t.Fatalf("resign(%s) status = %+v", tc.resigner, status)
		}
		if status.Winner == nil || *status.Winner != tc.winner {
			t.Errorf("resign(%s) winner = %v; want %s", tc.resigner, status.Winner, tc.winner)
		}
		if !g.GameOver() {
			t.Error("gameOver flag not set")
		}
		if _, err := g.MakeMove(CellAt(0, 4), CellAt(1, 4)); !errors.Is(err, ErrGameOver) {
			t.Errorf("post-game move err = %v; want ErrGameOver", err)
		}
	}
}

func TestGetValidMovesGuards(t *testing.T) {
	e2, e7 := CellAt(1, 4), CellAt(6, 4)
	g := testGame(map[int]Piece{
		e2:           {Type: Pawn, Color: White},
		e7:           {Type: Pawn, Color: Black},
		CellAt(0, 0): {Type: King, Color: White},
		CellAt(7, 7): {Type: King, Color: Black},
	}, White, 10)

	if got := g.GetValidMoves(CellAt(4, 4)); len(got) != 0 {
		t.Errorf("empty cell yielded %d moves", len(got))
	}
	if got := g.GetValidMoves(e7); len(got) != 0 {
		t.Errorf("opponent piece yielded %d moves", len(got))
	}
	if got := g.GetValidMoves(e2); len(got) == 0 {
		t.Error("own pawn yielded no moves")
	}

	g.Resign(White)
	if got := g.GetValidMoves(e2); len(got) != 0 {
		t.Error("finished game still yields moves")
	}
}

func TestStateRoundTrip(t *testing.T) {
	g := NewGameWithRand(10, rand.New(rand.NewSource(3)))
	g.GenerateStartingPosition()

	// Play a couple of deterministic half-moves.
	for i := 0; i < 2; i++ {
		moved := false
		for cell := 0; cell < BoardSize && !moved; cell++ {
			for _, cand := range g.GetValidMoves(cell) {
				if _, err := g.MakeMove(cell, cand.To); err != nil {
					t.Fatalf("move failed: %v", err)
				}
				moved = true
				break
			}
		}
		if !moved {
			t.Fatal("no legal move found")
		}
	}

	snapshot := g.GetState()
	restored := NewGame(0)
	restored.LoadState(snapshot)

	if diff := cmp.Diff(snapshot, restored.GetState()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if restored.CurrentTurn() != g.CurrentTurn() || restored.TurnCount() != g.TurnCount() {
		t.Error("restored counters differ")
	}
}
