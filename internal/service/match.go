package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/kalaschess/kalas-backend/internal/ai"
	"github.com/kalaschess/kalas-backend/internal/model"
	"github.com/kalaschess/kalas-backend/internal/ws"
)

// aiMoveDelay paces computer replies so they land at human speed.
const aiMoveDelay = 800 * time.Millisecond

// aiSearchBudget bounds a single search; FindBestMove returns its best move
// so far when the budget runs out.
const aiSearchBudget = 10 * time.Second

// Match couples one engine Game with its seats, an optional computer
// opponent and the live connections watching it. Every touch of the engine
// goes through mu; the engine itself is lock-free.
type Match struct {
	ID string

	mu      sync.Mutex
	game    *model.Game
	white   string
	black   string
	started bool

	opponent *ai.ChessAI
	aiColor  model.Color

	connMu      sync.RWMutex
	connections map[string]*ws.Conn
}

func NewMatch(id string, timeControlMinutes int) *Match {
	game := model.NewGame(timeControlMinutes)
	game.GenerateStartingPosition()
	return &Match{
		ID:          id,
		game:        game,
		connections: make(map[string]*ws.Conn),
	}
}

// NewMatchVsComputer seats the engine opponent as black.
func NewMatchVsComputer(id string, timeControlMinutes int, difficulty ai.Difficulty) *Match {
	m := NewMatch(id, timeControlMinutes)
	m.opponent = ai.New(difficulty)
	m.aiColor = model.Black
	m.black = "computer"
	return m
}

// AddPlayer seats the player on the first free side and returns the color.
// The clock starts once both seats are filled.
func (m *Match) AddPlayer(playerID string) (model.Color, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.white == playerID {
		return model.White, nil
	}
	if m.black == playerID {
		return model.Black, nil
	}
	if m.white == "" {
		m.white = playerID
	} else if m.black == "" {
		m.black = playerID
	} else {
		return "", errors.New("game is full")
	}
	if m.white != "" && m.black != "" && !m.started {
		m.started = true
		m.game.StartTimer()
	}
	return m.colorOf(playerID), nil
}

func (m *Match) colorOf(playerID string) model.Color {
	if m.white == playerID {
		return model.White
	}
	return model.Black
}

func (m *Match) IsPlayerInGame(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.white == playerID || m.black == playerID
}

func (m *Match) CanSpectate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return true
}

func (m *Match) GameOver() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game.GameOver()
}

func (m *Match) GetState() model.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.game.UpdateTime()
	return m.game.GetState()
}

// GetValidMoves reports the legal destinations from a cell. Empty unless the
// asking player commands the piece on it this turn.
func (m *Match) GetValidMoves(playerID string, cell int) []model.MoveCandidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.colorOf(playerID) != m.game.CurrentTurn() {
		return []model.MoveCandidate{}
	}
	return m.game.GetValidMoves(cell)
}

// MakeMove plays a human move and, in a computer match, schedules the reply.
func (m *Match) MakeMove(playerID string, from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.white != playerID && m.black != playerID {
		return errors.New("player not in game")
	}
	if m.colorOf(playerID) != m.game.CurrentTurn() {
		return model.ErrNotYourTurn
	}
	result, err := m.game.MakeMove(from, to)
	if err != nil {
		return err
	}
	go m.broadcastState()

	if m.opponent != nil && !result.Status.Over && m.game.CurrentTurn() == m.aiColor {
		go m.playAIMove()
	}
	return nil
}

// playAIMove asks the search for a reply and applies it. The move is
// re-validated under the match lock because a timeout or resignation may
// have ended the game while the engine was thinking.
func (m *Match) playAIMove() {
	ctx, cancel := context.WithTimeout(context.Background(), aiSearchBudget)
	defer cancel()

	move, ok := <-m.opponent.FindBestMoveAsync(ctx, m.game, aiMoveDelay)
	if !ok || move == nil {
		return
	}
	log.Printf("match %s: engine picked %s-%s after %d nodes",
		m.ID, model.SquareName(move.From), model.SquareName(move.To), m.opponent.Nodes())

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.game.GameOver() || m.game.CurrentTurn() != m.aiColor {
		return
	}
	if _, err := m.game.MakeMove(move.From, move.To); err != nil {
		log.Printf("match %s: engine move rejected: %v", m.ID, err)
		return
	}
	go m.broadcastState()
}

// Resign ends the game in the opponent's favor.
func (m *Match) Resign(playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.white != playerID && m.black != playerID {
		return errors.New("player not in game")
	}
	if m.game.GameOver() {
		return model.ErrGameOver
	}
	m.game.Resign(m.colorOf(playerID))
	go m.broadcastState()
	return nil
}

// CheckClocks is the manager watchdog hook: it settles the clocks, broadcasts
// the final state if a flag fell, and pushes a clock update to live timed
// games otherwise.
func (m *Match) CheckClocks() {
	m.mu.Lock()
	status := m.game.CheckTimeout()
	ticking := m.started && !m.game.GameOver() && !m.game.IsUntimed()
	white := m.game.GetTimeRemaining(model.White)
	black := m.game.GetTimeRemaining(model.Black)
	m.mu.Unlock()

	if status != nil {
		go m.broadcastState()
		return
	}
	if ticking {
		m.broadcastClock(white, black)
	}
}

func (m *Match) RegisterConnection(playerID string, conn *ws.Conn) error {
	if !m.IsPlayerInGame(playerID) && !m.CanSpectate() {
		return errors.New("not authorized to join this game")
	}

	m.connMu.Lock()
	if _, exists := m.connections[playerID]; exists {
		// Keep the healthy connection, reject the newcomer.
		m.connMu.Unlock()
		conn.SendClose("Connection already exists")
		conn.Close()
		return nil
	}
	m.connections[playerID] = conn
	m.connMu.Unlock()

	go m.broadcastState()
	return nil
}

func (m *Match) UnregisterConnection(playerID string) {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	delete(m.connections, playerID)
}

// broadcastState pushes the current snapshot to every connection.
func (m *Match) broadcastState() {
	state := m.GetState()
	payload, err := json.Marshal(state)
	if err != nil {
		log.Printf("match %s: marshal state: %v", m.ID, err)
		return
	}

	m.send(ws.Message{Type: ws.MessageTypeGameState, Payload: payload})
}

// broadcastClock pushes a lightweight time update so spectator clocks stay in
// step between moves.
func (m *Match) broadcastClock(whiteMs, blackMs int64) {
	payload, err := json.Marshal(ws.ClockPayload{WhiteTimeMs: whiteMs, BlackTimeMs: blackMs})
	if err != nil {
		return
	}
	m.send(ws.Message{Type: ws.MessageTypeClock, Payload: payload})
}

// send fans a message out to every connection, dropping the ones that fail to
// take it.
func (m *Match) send(msg ws.Message) {
	m.connMu.Lock()
	defer m.connMu.Unlock()
	for playerID, conn := range m.connections {
		if err := conn.Send(msg); err != nil {
			log.Printf("match %s: dropping connection for %s: %v", m.ID, playerID, err)
			conn.Close()
			delete(m.connections, playerID)
		}
	}
}
