package model

// Position is the pure board state the move generator and the search operate
// on: cells, side to move, half/full move counters and the en passant target.
// It is a value type; copying it yields an independent scratch position.
type Position struct {
	Board           Board
	Turn            Color
	TurnCount       int // half-moves, first move is 1
	MoveNumber      int // full moves, increments after black moves
	EnPassantTarget *int
}

// Move pairs an origin cell with a candidate destination. This is the unit
// the search applies and reverts.
type Move struct {
	From int
	MoveCandidate
}

type delta struct{ dr, dc int }

var (
	rookDirs    = []delta{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs  = []delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	royalDirs   = []delta{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightSteps = []delta{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

func NewPosition() Position {
	return Position{
		Turn:       White,
		TurnCount:  1,
		MoveNumber: 1,
	}
}

func (p *Position) PieceAt(cell int) *Piece {
	if cell < 0 || cell >= BoardSize {
		return nil
	}
	return p.Board[cell]
}

// capturesAllowed reports whether capturing is legal on the current
// half-move. The first three half-moves of a game are capture-free.
func (p *Position) capturesAllowed() bool {
	return p.TurnCount >= 4
}

// CandidateMoves generates the legal destinations for the piece on the given
// cell. Legal here means consistent with the piece's movement pattern and the
// capture-turn restriction; moving into check is not filtered out (a player
// who leaves their king in check loses, see Game.MakeMove).
func (p *Position) CandidateMoves(cell int) []MoveCandidate {
	piece := p.PieceAt(cell)
	if piece == nil {
		return nil
	}
	switch piece.Type {
	case Pawn:
		return p.pawnMoves(cell, piece.Color, p.capturesAllowed())
	case Knight:
		return p.stepMoves(cell, piece.Color, knightSteps, p.capturesAllowed())
	case King:
		return p.stepMoves(cell, piece.Color, royalDirs, p.capturesAllowed())
	case Bishop:
		return p.rayMoves(cell, piece.Color, bishopDirs, p.capturesAllowed())
	case Rook:
		return p.rayMoves(cell, piece.Color, rookDirs, p.capturesAllowed())
	case Queen:
		return p.rayMoves(cell, piece.Color, royalDirs, p.capturesAllowed())
	default:
		return nil
	}
}

// AllMoves generates every legal move for the given color, scanning a1 upward.
func (p *Position) AllMoves(color Color) []Move {
	moves := []Move{}
	for _, cell := range p.Board.PieceCells(color) {
		for _, cand := range p.CandidateMoves(cell) {
			moves = append(moves, Move{From: cell, MoveCandidate: cand})
		}
	}
	return moves
}

func (p *Position) HasValidMoves(color Color) bool {
	for _, cell := range p.Board.PieceCells(color) {
		if len(p.CandidateMoves(cell)) > 0 {
			return true
		}
	}
	return false
}

func (p *Position) pawnMoves(cell int, color Color, captures bool) []MoveCandidate {
	moves := []MoveCandidate{}
	row, col := RowOf(cell), ColOf(cell)
	dir, homeRow := 1, 1
	if color == Black {
		dir, homeRow = -1, 6
	}

	if OnBoard(row+dir, col) && p.Board[CellAt(row+dir, col)] == nil {
		moves = append(moves, MoveCandidate{To: CellAt(row+dir, col)})
		if row == homeRow && p.Board[CellAt(row+2*dir, col)] == nil {
			moves = append(moves, MoveCandidate{To: CellAt(row+2*dir, col), IsDoublePush: true})
		}
	}
	if !captures {
		return moves
	}
	for _, dc := range []int{-1, 1} {
		if !OnBoard(row+dir, col+dc) {
			continue
		}
		to := CellAt(row+dir, col+dc)
		if target := p.Board[to]; target != nil && target.Color != color {
			moves = append(moves, MoveCandidate{To: to, IsCapture: true})
		} else if p.EnPassantTarget != nil && *p.EnPassantTarget == to {
			moves = append(moves, MoveCandidate{To: to, IsCapture: true, IsEnPassant: true})
		}
	}
	return moves
}

func (p *Position) stepMoves(cell int, color Color, steps []delta, captures bool) []MoveCandidate {
	moves := []MoveCandidate{}
	row, col := RowOf(cell), ColOf(cell)
	for _, d := range steps {
		if !OnBoard(row+d.dr, col+d.dc) {
			continue
		}
		to := CellAt(row+d.dr, col+d.dc)
		switch target := p.Board[to]; {
		case target == nil:
			moves = append(moves, MoveCandidate{To: to})
		case target.Color != color && captures:
			moves = append(moves, MoveCandidate{To: to, IsCapture: true})
		}
	}
	return moves
}

func (p *Position) rayMoves(cell int, color Color, dirs []delta, captures bool) []MoveCandidate {
	moves := []MoveCandidate{}
	row, col := RowOf(cell), ColOf(cell)
	for _, d := range dirs {
		for r, c := row+d.dr, col+d.dc; OnBoard(r, c); r, c = r+d.dr, c+d.dc {
			to := CellAt(r, c)
			target := p.Board[to]
			if target == nil {
				moves = append(moves, MoveCandidate{To: to})
				continue
			}
			if target.Color != color && captures {
				moves = append(moves, MoveCandidate{To: to, IsCapture: true})
			}
			break
		}
	}
	return moves
}

// IsAttacked reports whether any piece of the attacking color threatens the
// cell. Pawn threats are the diagonal squares regardless of occupancy, and
// the capture-turn restriction does not apply to threat detection.
func (p *Position) IsAttacked(cell int, by Color) bool {
	row, col := RowOf(cell), ColOf(cell)

	pawnRow := row - 1
	if by == Black {
		pawnRow = row + 1
	}
	for _, dc := range []int{-1, 1} {
		if OnBoard(pawnRow, col+dc) {
			if piece := p.Board[CellAt(pawnRow, col+dc)]; piece != nil && piece.Color == by && piece.Type == Pawn {
				return true
			}
		}
	}

	for _, d := range knightSteps {
		if OnBoard(row+d.dr, col+d.dc) {
			if piece := p.Board[CellAt(row+d.dr, col+d.dc)]; piece != nil && piece.Color == by && piece.Type == Knight {
				return true
			}
		}
	}
	for _, d := range royalDirs {
		if OnBoard(row+d.dr, col+d.dc) {
			if piece := p.Board[CellAt(row+d.dr, col+d.dc)]; piece != nil && piece.Color == by && piece.Type == King {
				return true
			}
		}
	}

	for _, d := range rookDirs {
		for r, c := row+d.dr, col+d.dc; OnBoard(r, c); r, c = r+d.dr, c+d.dc {
			piece := p.Board[CellAt(r, c)]
			if piece == nil {
				continue
			}
			if piece.Color == by && (piece.Type == Rook || piece.Type == Queen) {
				return true
			}
			break
		}
	}
	for _, d := range bishopDirs {
		for r, c := row+d.dr, col+d.dc; OnBoard(r, c); r, c = r+d.dr, c+d.dc {
			piece := p.Board[CellAt(r, c)]
			if piece == nil {
				continue
			}
			if piece.Color == by && (piece.Type == Bishop || piece.Type == Queen) {
				return true
			}
			break
		}
	}
	return false
}

// FindKing returns the cell of the given color's king, or -1 if absent.
func (p *Position) FindKing(color Color) int {
	for cell, piece := range p.Board {
		if piece != nil && piece.Color == color && piece.Type == King {
			return cell
		}
	}
	return -1
}

func (p *Position) InCheck(color Color) bool {
	king := p.FindKing(color)
	if king < 0 {
		return false
	}
	return p.IsAttacked(king, color.Opponent())
}

// Undo captures everything Apply changed so Revert can restore the exact
// prior position.
type Undo struct {
	from, to       int
	moved          *Piece
	captured       *Piece
	capturedCell   int
	prevEnPassant  *int
	prevTurn       Color
	prevTurnCount  int
	prevMoveNumber int
}

// Apply plays a move on the position: piece movement, en passant removal,
// auto-promotion to queen, en passant target bookkeeping, counter advance
// and turn flip. The returned Undo reverts all of it via Revert.
func (p *Position) Apply(m Move) Undo {
	piece := p.Board[m.From]
	u := Undo{
		from:           m.From,
		to:             m.To,
		moved:          piece,
		capturedCell:   m.To,
		prevEnPassant:  p.EnPassantTarget,
		prevTurn:       p.Turn,
		prevTurnCount:  p.TurnCount,
		prevMoveNumber: p.MoveNumber,
	}
	if m.IsEnPassant {
		// The passed-over pawn sits behind the target cell.
		if piece.Color == White {
			u.capturedCell = m.To - 8
		} else {
			u.capturedCell = m.To + 8
		}
	}
	u.captured = p.Board[u.capturedCell]
	p.Board[u.capturedCell] = nil
	p.Board[m.From] = nil

	placed := piece
	if piece.Type == Pawn {
		lastRow := 7
		if piece.Color == Black {
			lastRow = 0
		}
		if RowOf(m.To) == lastRow {
			placed = &Piece{Type: Queen, Color: piece.Color}
		}
	}
	p.Board[m.To] = placed

	if m.IsDoublePush {
		skipped := (m.From + m.To) / 2
		p.EnPassantTarget = &skipped
	} else {
		p.EnPassantTarget = nil
	}

	p.TurnCount++
	if piece.Color == Black {
		p.MoveNumber++
	}
	p.Turn = piece.Color.Opponent()
	return u
}

// Revert undoes the matching Apply. Apply/Revert pairs must nest strictly.
func (p *Position) Revert(u Undo) {
	p.Board[u.to] = nil
	p.Board[u.capturedCell] = u.captured
	p.Board[u.from] = u.moved
	p.EnPassantTarget = u.prevEnPassant
	p.Turn = u.prevTurn
	p.TurnCount = u.prevTurnCount
	p.MoveNumber = u.prevMoveNumber
}
