package ai

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/kalaschess/kalas-backend/internal/model"
)

func buildGame(pieces map[int]model.Piece, turn model.Color, turnCount int) *model.Game {
	board := make([]*model.Piece, model.BoardSize)
	for cell, piece := range pieces {
		pc := piece
		board[cell] = &pc
	}
	g := model.NewGame(0)
	g.LoadState(model.GameState{
		Board:       board,
		CurrentTurn: turn,
		MoveNumber:  1,
		TurnCount:   turnCount,
		MoveHistory: []model.MoveRecord{},
	})
	return g
}

func TestDifficultyDepth(t *testing.T) {
	for _, tc := range []struct {
		difficulty Difficulty
		want       int
	}{
		{Easy, 1},
		{Medium, 3},
		{Hard, 4},
		{Difficulty("grandmaster"), 3},
		{Difficulty(""), 3},
	} {
		if got := tc.difficulty.Depth(); got != tc.want {
			t.Errorf("Depth(%q) = %d; want %d", tc.difficulty, got, tc.want)
		}
	}
}

func TestEvaluateMirroredPositionIsZero(t *testing.T) {
	g := buildGame(map[int]model.Piece{
		model.CellAt(1, 4): {Type: model.Pawn, Color: model.White},
		model.CellAt(6, 4): {Type: model.Pawn, Color: model.Black},
		model.CellAt(0, 4): {Type: model.King, Color: model.White},
		model.CellAt(7, 4): {Type: model.King, Color: model.Black},
	}, model.White, 10)

	engine := New(Hard)
	pos := g.Position()
	if got := engine.evaluate(&pos); got != 0 {
		t.Errorf("mirrored position evaluates to %d; want 0", got)
	}
}

func TestEvaluateMaterialAdvantage(t *testing.T) {
	g := buildGame(map[int]model.Piece{
		model.CellAt(3, 3): {Type: model.Queen, Color: model.White},
		model.CellAt(0, 4): {Type: model.King, Color: model.White},
		model.CellAt(7, 4): {Type: model.King, Color: model.Black},
	}, model.White, 10)

	engine := New(Hard)
	pos := g.Position()
	if got := engine.evaluate(&pos); got <= 0 {
		t.Errorf("queen-up position evaluates to %d; want > 0", got)
	}
}

func TestFindBestMoveTakesHangingQueen(t *testing.T) {
	a1, a7 := model.CellAt(0, 0), model.CellAt(6, 0)
	g := buildGame(map[int]model.Piece{
		a1:                 {Type: model.Rook, Color: model.White},
		model.CellAt(0, 7): {Type: model.King, Color: model.White},
		a7:                 {Type: model.Queen, Color: model.Black},
		model.CellAt(7, 7): {Type: model.King, Color: model.Black},
	}, model.White, 10)

	engine := New(Hard)
	move := engine.FindBestMove(context.Background(), g)
	if move == nil {
		t.Fatal("no move returned")
	}
	if move.From != a1 || move.To != a7 {
		t.Errorf("best move %s-%s; want %s-%s (winning the queen)",
			model.SquareName(move.From), model.SquareName(move.To),
			model.SquareName(a1), model.SquareName(a7))
	}
	if !move.IsCapture {
		t.Error("winning capture not flagged as capture")
	}
	if engine.Nodes() == 0 {
		t.Error("search reported zero evaluated nodes")
	}
}

// boxedBlack is a position where black, to move during the capture-free
// opening, has no moves at all.
func boxedBlack() *model.Game {
	return buildGame(map[int]model.Piece{
		model.CellAt(7, 0): {Type: model.King, Color: model.Black},
		model.CellAt(6, 0): {Type: model.Pawn, Color: model.Black},
		model.CellAt(6, 1): {Type: model.Pawn, Color: model.Black},
		model.CellAt(7, 1): {Type: model.Bishop, Color: model.Black},
		model.CellAt(6, 2): {Type: model.Pawn, Color: model.White},
		model.CellAt(5, 0): {Type: model.Pawn, Color: model.White},
		model.CellAt(5, 1): {Type: model.Pawn, Color: model.White},
		model.CellAt(0, 4): {Type: model.King, Color: model.White},
	}, model.Black, 2)
}

func TestFindBestMoveNilWithoutMoves(t *testing.T) {
	engine := New(Medium)
	if move := engine.FindBestMove(context.Background(), boxedBlack()); move != nil {
		t.Errorf("move = %+v; want nil for a position with no legal moves", move)
	}
}

func TestFindBestMoveReturnsLegalMove(t *testing.T) {
	for _, difficulty := range []Difficulty{Easy, Medium, Hard} {
		t.Run(string(difficulty), func(t *testing.T) {
			for seed := int64(0); seed < 10; seed++ {
				g := buildGame(map[int]model.Piece{
					model.CellAt(1, 4): {Type: model.Pawn, Color: model.White},
					model.CellAt(2, 1): {Type: model.Knight, Color: model.White},
					model.CellAt(0, 4): {Type: model.King, Color: model.White},
					model.CellAt(7, 4): {Type: model.King, Color: model.Black},
				}, model.White, 10)

				engine := NewWithRand(difficulty, rand.New(rand.NewSource(seed)))
				move := engine.FindBestMove(context.Background(), g)
				if move == nil {
					t.Fatalf("seed %d: no move returned", seed)
				}
				legal := false
				for _, cand := range g.GetValidMoves(move.From) {
					if cand.To == move.To {
						legal = true
						break
					}
				}
				if !legal {
					t.Errorf("seed %d: illegal move %s-%s", seed,
						model.SquareName(move.From), model.SquareName(move.To))
				}
			}
		})
	}
}

func TestFindBestMoveAsyncHonorsMinDelay(t *testing.T) {
	g := buildGame(map[int]model.Piece{
		model.CellAt(1, 4): {Type: model.Pawn, Color: model.White},
		model.CellAt(0, 4): {Type: model.King, Color: model.White},
		model.CellAt(7, 4): {Type: model.King, Color: model.Black},
	}, model.White, 10)

	engine := New(Easy)
	const minDelay = 100 * time.Millisecond

	start := time.Now()
	move, ok := <-engine.FindBestMoveAsync(context.Background(), g, minDelay)
	elapsed := time.Since(start)

	if !ok || move == nil {
		t.Fatal("no move delivered")
	}
	if elapsed < minDelay {
		t.Errorf("move delivered after %v; want at least %v", elapsed, minDelay)
	}
}

func TestFindBestMoveAsyncCancellation(t *testing.T) {
	g := buildGame(map[int]model.Piece{
		model.CellAt(1, 4): {Type: model.Pawn, Color: model.White},
		model.CellAt(0, 4): {Type: model.King, Color: model.White},
		model.CellAt(7, 4): {Type: model.King, Color: model.Black},
	}, model.White, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := New(Hard)
	_, ok := <-engine.FindBestMoveAsync(ctx, g, time.Hour)
	if ok {
		t.Error("cancelled search still delivered a move")
	}
}

func TestOrderCapturesFirst(t *testing.T) {
	moves := []model.Move{
		{From: 1, MoveCandidate: model.MoveCandidate{To: 10}},
		{From: 2, MoveCandidate: model.MoveCandidate{To: 20, IsCapture: true}},
		{From: 3, MoveCandidate: model.MoveCandidate{To: 30}},
		{From: 4, MoveCandidate: model.MoveCandidate{To: 40, IsCapture: true}},
	}

	orderCapturesFirst(moves)

	wantFrom := []int{2, 4, 1, 3}
	for i, want := range wantFrom {
		if moves[i].From != want {
			t.Fatalf("moves[%d].From = %d; want %d (captures first, stable)", i, moves[i].From, want)
		}
	}
}

func TestTableIndexFlips(t *testing.T) {
	e2 := model.CellAt(1, 4)
	e7 := model.CellAt(6, 4)
	if tableIndex(e2, model.White) != tableIndex(e7, model.Black) {
		t.Error("mirrored cells read different table entries")
	}
	a1 := model.CellAt(0, 0)
	if got := tableIndex(a1, model.White); got != 56 {
		t.Errorf("tableIndex(a1, white) = %d; want 56", got)
	}
	if got := tableIndex(a1, model.Black); got != 0 {
		t.Errorf("tableIndex(a1, black) = %d; want 0", got)
	}
}

func TestSearchDoesNotMutateGame(t *testing.T) {
	g := buildGame(map[int]model.Piece{
		model.CellAt(1, 4): {Type: model.Pawn, Color: model.White},
		model.CellAt(6, 4): {Type: model.Pawn, Color: model.Black},
		model.CellAt(0, 4): {Type: model.King, Color: model.White},
		model.CellAt(7, 4): {Type: model.King, Color: model.Black},
	}, model.White, 10)
	before := g.GetState()

	New(Hard).FindBestMove(context.Background(), g)

	after := g.GetState()
	if before.TurnCount != after.TurnCount || before.CurrentTurn != after.CurrentTurn {
		t.Error("search mutated the game counters")
	}
	for cell := range before.Board {
		a, b := before.Board[cell], after.Board[cell]
		if (a == nil) != (b == nil) {
			t.Fatalf("search mutated the board at %s", model.SquareName(cell))
		}
		if a != nil && *a != *b {
			t.Fatalf("search mutated the piece on %s", model.SquareName(cell))
		}
	}
}
