package model

import "fmt"

// BoardSize is the number of cells on the board. Cell 0 is a1, cell 63 is h8,
// row-major: row = cell/8 (rank-1), col = cell%8 (file, a=0).
const BoardSize = 64

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

// Board holds one optional piece per cell. A nil entry is an empty cell.
// Piece values are never mutated in place, so boards may share pointers.
type Board [BoardSize]*Piece

func RowOf(cell int) int { return cell / 8 }
func ColOf(cell int) int { return cell % 8 }

func CellAt(row, col int) int { return row*8 + col }

func OnBoard(row, col int) bool {
	return row >= 0 && row < 8 && col >= 0 && col < 8
}

// SquareName renders a cell index in algebraic notation ("a1" .. "h8").
func SquareName(cell int) string {
	return fmt.Sprintf("%c%d", 'a'+ColOf(cell), RowOf(cell)+1)
}

// PieceCells returns the cells occupied by the given color, a1 upward.
func (b *Board) PieceCells(color Color) []int {
	cells := make([]int, 0, 16)
	for cell, piece := range b {
		if piece != nil && piece.Color == color {
			cells = append(cells, cell)
		}
	}
	return cells
}
