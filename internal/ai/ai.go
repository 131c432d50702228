// Package ai implements the Kalas engine's opponent: fixed-depth minimax
// with alpha-beta pruning over the model package's move generator, using the
// position's reversible Apply/Revert primitive instead of rebuilding state.
package ai

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/kalaschess/kalas-backend/internal/model"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Depth is the search depth in half-moves for the difficulty. Unrecognized
// values fall back to medium.
func (d Difficulty) Depth() int {
	switch d {
	case Easy:
		return 1
	case Medium:
		return 3
	case Hard:
		return 4
	default:
		return 3
	}
}

// Chance of an easy opponent skipping the search for a random move, and of a
// medium opponent picking among its top three instead of the best.
const (
	easyRandomMoveChance = 0.3
	mediumShuffleChance  = 0.15
	mediumShufflePool    = 3
)

// SearchMove is the chosen move reported back to the caller.
type SearchMove struct {
	From      int  `json:"from"`
	To        int  `json:"to"`
	IsCapture bool `json:"isCapture"`
}

// ChessAI is a single opponent instance. It is not safe for concurrent use;
// give each match its own.
type ChessAI struct {
	difficulty Difficulty
	rng        *rand.Rand
	nodes      int
}

func New(difficulty Difficulty) *ChessAI {
	return NewWithRand(difficulty, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand injects the random source behind the easy/medium move
// randomization, for deterministic tests.
func NewWithRand(difficulty Difficulty, rng *rand.Rand) *ChessAI {
	return &ChessAI{difficulty: difficulty, rng: rng}
}

func (ai *ChessAI) SetDifficulty(d Difficulty) { ai.difficulty = d }
func (ai *ChessAI) Difficulty() Difficulty     { return ai.difficulty }

// Nodes reports how many leaf evaluations the last FindBestMove performed.
func (ai *ChessAI) Nodes() int { return ai.nodes }

type scoredMove struct {
	move  model.Move
	score int
}

// FindBestMove picks a move for the side to move in the given game, or nil
// when there are no legal moves (the game is already decided). The search
// runs on a scratch copy of the position and never mutates the game. The
// context is checked between top-level candidates, so callers can impose a
// wall-clock budget; on cancellation the best move found so far is returned.
func (ai *ChessAI) FindBestMove(ctx context.Context, game *model.Game) *SearchMove {
	pos := game.Position()
	moves := pos.AllMoves(pos.Turn)
	if len(moves) == 0 {
		return nil
	}
	ai.nodes = 0

	if ai.difficulty == Easy && ai.rng.Float64() < easyRandomMoveChance {
		return toSearchMove(moves[ai.rng.Intn(len(moves))])
	}

	orderCapturesFirst(moves)
	maximizing := pos.Turn == model.White
	depth := ai.difficulty.Depth()

	// Full-window search per root move: medium difficulty needs exact
	// per-move scores to pick among its top three.
	scored := make([]scoredMove, 0, len(moves))
	best := moves[0]
	bestScore := math.MinInt32
	if !maximizing {
		bestScore = math.MaxInt32
	}
	for _, m := range moves {
		if ctx.Err() != nil {
			break
		}
		undo := pos.Apply(m)
		score := ai.minimax(&pos, depth-1, math.MinInt32, math.MaxInt32)
		pos.Revert(undo)
		scored = append(scored, scoredMove{move: m, score: score})
		if (maximizing && score > bestScore) || (!maximizing && score < bestScore) {
			bestScore = score
			best = m
		}
	}

	if ai.difficulty == Medium && len(scored) > 1 && ai.rng.Float64() < mediumShuffleChance {
		sort.SliceStable(scored, func(i, j int) bool {
			if maximizing {
				return scored[i].score > scored[j].score
			}
			return scored[i].score < scored[j].score
		})
		pool := mediumShufflePool
		if len(scored) < pool {
			pool = len(scored)
		}
		best = scored[ai.rng.Intn(pool)].move
	}
	return toSearchMove(best)
}

// FindBestMoveAsync runs FindBestMove in the background and guarantees at
// least minDelay of wall-clock time before delivering the move, so instant
// replies do not feel robotic. The channel yields exactly one value and is
// then closed; it yields nothing if the context is cancelled first.
func (ai *ChessAI) FindBestMoveAsync(ctx context.Context, game *model.Game, minDelay time.Duration) <-chan *SearchMove {
	out := make(chan *SearchMove, 1)
	go func() {
		defer close(out)
		started := time.Now()
		move := ai.FindBestMove(ctx, game)
		if remaining := minDelay - time.Since(started); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
				return
			}
		}
		out <- move
	}()
	return out
}

// minimax searches to the given remaining depth, White maximizing and Black
// minimizing, with standard alpha-beta cutoffs. No-legal-move positions are
// terminal: checkmate scores carry a depth bias so shallower mates win out,
// stalemate is a dead draw.
func (ai *ChessAI) minimax(pos *model.Position, depth, alpha, beta int) int {
	if depth == 0 {
		ai.nodes++
		return ai.evaluate(pos)
	}
	moves := pos.AllMoves(pos.Turn)
	if len(moves) == 0 {
		ai.nodes++
		if pos.InCheck(pos.Turn) {
			if pos.Turn == model.White {
				return -(mateScore + depth)
			}
			return mateScore + depth
		}
		return 0
	}
	orderCapturesFirst(moves)

	if pos.Turn == model.White {
		best := math.MinInt32
		for _, m := range moves {
			undo := pos.Apply(m)
			score := ai.minimax(pos, depth-1, alpha, beta)
			pos.Revert(undo)
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := math.MaxInt32
	for _, m := range moves {
		undo := pos.Apply(m)
		score := ai.minimax(pos, depth-1, alpha, beta)
		pos.Revert(undo)
		if score < best {
			best = score
		}
		if best < beta {
			beta = best
		}
		if beta <= alpha {
			break
		}
	}
	return best
}

// orderCapturesFirst moves captures to the front, otherwise keeping the
// generator's order, which improves alpha-beta cutoffs.
func orderCapturesFirst(moves []model.Move) {
	sort.SliceStable(moves, func(i, j int) bool {
		return moves[i].IsCapture && !moves[j].IsCapture
	})
}

func toSearchMove(m model.Move) *SearchMove {
	return &SearchMove{From: m.From, To: m.To, IsCapture: m.IsCapture}
}
