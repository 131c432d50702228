package ai

import "github.com/kalaschess/kalas-backend/internal/model"

// Material values in centipawns.
const (
	pawnValue   = 100
	knightValue = 320
	bishopValue = 330
	rookValue   = 500
	queenValue  = 900
	kingValue   = 20000

	mobilityWeight = 5
	checkBonus     = 50
	mateScore      = 100000
)

// Piece-square tables, written from White's point of view with rank 8 as the
// first row. tableIndex flips the lookup so both colors read the table from
// their own side.

var pawnTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightTable = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopTable = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookTable = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenTable = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingTable = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

func materialValue(pt model.PieceType) int {
	switch pt {
	case model.Pawn:
		return pawnValue
	case model.Knight:
		return knightValue
	case model.Bishop:
		return bishopValue
	case model.Rook:
		return rookValue
	case model.Queen:
		return queenValue
	case model.King:
		return kingValue
	}
	return 0
}

func squareTable(pt model.PieceType) *[64]int {
	switch pt {
	case model.Pawn:
		return &pawnTable
	case model.Knight:
		return &knightTable
	case model.Bishop:
		return &bishopTable
	case model.Rook:
		return &rookTable
	case model.Queen:
		return &queenTable
	case model.King:
		return &kingTable
	}
	return nil
}

// tableIndex maps a board cell (a1=0, row-major from rank 1) into the
// rank-8-first table layout, mirrored vertically for black.
func tableIndex(cell int, color model.Color) int {
	row, col := model.RowOf(cell), model.ColOf(cell)
	if color == model.White {
		return (7-row)*8 + col
	}
	return row*8 + col
}

// evaluate scores a position from White's point of view: material plus
// piece-square placement plus mobility plus a bonus for having the enemy
// king in check. Easy difficulty adds a small random wobble so the engine
// plays imperfect moves.
func (ai *ChessAI) evaluate(pos *model.Position) int {
	score := 0
	for cell, piece := range pos.Board {
		if piece == nil {
			continue
		}
		value := materialValue(piece.Type) + squareTable(piece.Type)[tableIndex(cell, piece.Color)]
		if piece.Color == model.White {
			score += value
		} else {
			score -= value
		}
	}

	score += mobilityWeight * (len(pos.AllMoves(model.White)) - len(pos.AllMoves(model.Black)))

	if pos.InCheck(model.Black) {
		score += checkBonus
	}
	if pos.InCheck(model.White) {
		score -= checkBonus
	}

	if ai.difficulty == Easy {
		score += ai.rng.Intn(51) - 25
	}
	return score
}
