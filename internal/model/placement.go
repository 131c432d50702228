package model

import "math/rand"

// Kalas placement zones. Each side gets its king on its back rank, eight
// pawns in a band near its side, and the remaining pieces close behind.
// Cells are drawn uniformly without replacement from the zone, skipping
// cells already taken by an earlier stage.
var (
	whiteKingZone  = cellRange(0, 7)
	whitePawnZone  = cellRange(8, 31)
	whitePieceZone = cellRange(0, 23)
	blackKingZone  = cellRange(56, 63)
	blackPawnZone  = cellRange(24, 55)
	blackPieceZone = cellRange(40, 63)
)

// backRankPieces is the fixed non-pawn, non-king multiset each side receives.
var backRankPieces = []PieceType{Queen, Rook, Rook, Bishop, Bishop, Knight, Knight}

func cellRange(lo, hi int) []int {
	cells := make([]int, 0, hi-lo+1)
	for c := lo; c <= hi; c++ {
		cells = append(cells, c)
	}
	return cells
}

// GenerateStartingPosition fills the board with a random legal Kalas layout:
// 16 pieces per side, kings on their back ranks, pawns inside their bands.
// Each call produces a fresh draw from the injected source.
func (p *Position) GenerateStartingPosition(rng *rand.Rand) {
	p.Board = Board{}
	p.placeSide(rng, White, whiteKingZone, whitePawnZone, whitePieceZone)
	p.placeSide(rng, Black, blackKingZone, blackPawnZone, blackPieceZone)
}

func (p *Position) placeSide(rng *rand.Rand, color Color, kingZone, pawnZone, pieceZone []int) {
	pool := newZonePool(kingZone)
	p.Board[pool.draw(rng)] = &Piece{Type: King, Color: color}

	pool = newZonePool(p.emptyCells(pawnZone))
	for i := 0; i < 8; i++ {
		p.Board[pool.draw(rng)] = &Piece{Type: Pawn, Color: color}
	}

	pool = newZonePool(p.emptyCells(pieceZone))
	for _, pt := range backRankPieces {
		p.Board[pool.draw(rng)] = &Piece{Type: pt, Color: color}
	}
}

func (p *Position) emptyCells(zone []int) []int {
	empty := make([]int, 0, len(zone))
	for _, cell := range zone {
		if p.Board[cell] == nil {
			empty = append(empty, cell)
		}
	}
	return empty
}

// zonePool is a pick-and-remove bag of cells.
type zonePool struct {
	cells []int
}

func newZonePool(zone []int) *zonePool {
	cells := make([]int, len(zone))
	copy(cells, zone)
	return &zonePool{cells: cells}
}

func (zp *zonePool) draw(rng *rand.Rand) int {
	i := rng.Intn(len(zp.cells))
	cell := zp.cells[i]
	zp.cells[i] = zp.cells[len(zp.cells)-1]
	zp.cells = zp.cells[:len(zp.cells)-1]
	return cell
}
