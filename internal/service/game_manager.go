package service

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kalaschess/kalas-backend/internal/ai"
	"github.com/kalaschess/kalas-backend/internal/model"
	"github.com/kalaschess/kalas-backend/internal/ws"
)

// matchmakingTimeControl is the time control for auto-paired games, minutes
// per side.
const matchmakingTimeControl = 10

// finishedMatchRetention is how long a finished match stays registered so
// clients can still fetch the final state.
const finishedMatchRetention = time.Minute

// GameManager owns every live match, the matchmaking queue and the clock
// watchdog that settles flags on timed games.
type GameManager struct {
	games            map[string]*Match
	finished         map[string]time.Time
	queue            *model.Queue
	matchingChannels map[string]chan string
	mu               sync.RWMutex
}

func NewGameManager() *GameManager {
	gm := &GameManager{
		games:            make(map[string]*Match),
		finished:         make(map[string]time.Time),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
	}

	go gm.processMatchmaking()
	go gm.watchClocks()

	return gm
}

// CreateGameOptions selects time control and an optional computer opponent.
type CreateGameOptions struct {
	TimeControlMinutes int           `json:"timeControl"`
	VsComputer         bool          `json:"vsComputer"`
	Difficulty         ai.Difficulty `json:"difficulty"`
}

func (gm *GameManager) CreateGame(opts CreateGameOptions) (string, error) {
	if opts.TimeControlMinutes < 0 {
		return "", errors.New("invalid time control")
	}
	gameID := uuid.New().String()

	var match *Match
	if opts.VsComputer {
		match = NewMatchVsComputer(gameID, opts.TimeControlMinutes, opts.Difficulty)
	} else {
		match = NewMatch(gameID, opts.TimeControlMinutes)
	}

	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.games[gameID] = match
	return gameID, nil
}

func (gm *GameManager) GetGame(gameID string) (*Match, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, errors.New("game not found")
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) GetValidMoves(gameID, playerID string, cell int) ([]model.MoveCandidate, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.GetValidMoves(playerID, cell), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, from, to int) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, from, to)
}

func (gm *GameManager) Resign(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Resign(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) {
	gm.queue.RemovePlayer(playerID)
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

func (gm *GameManager) UnregisterMatchmakingChannel(playerID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	delete(gm.matchingChannels, playerID)
}

// processMatchmaking pairs the two longest-waiting players once a second.
func (gm *GameManager) processMatchmaking() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		for gm.queue.Size() >= 2 {
			player1, player2 := gm.queue.GetNextPair()

			gameID := uuid.New().String()
			match := NewMatch(gameID, matchmakingTimeControl)
			p1Color, err := match.AddPlayer(player1.ID)
			if err != nil {
				log.Printf("matchmaking: seat %s: %v", player1.ID, err)
				continue
			}
			p2Color, err := match.AddPlayer(player2.ID)
			if err != nil {
				log.Printf("matchmaking: seat %s: %v", player2.ID, err)
				continue
			}

			gm.mu.Lock()
			gm.games[gameID] = match
			gm.notifyMatched(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
			gm.notifyMatched(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
			gm.mu.Unlock()
		}
	}
}

// notifyMatched delivers a match-found event to the player's waiting channel
// and retires the channel. Callers hold gm.mu.
func (gm *GameManager) notifyMatched(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("matchmaking: marshal event: %v", err)
		return
	}
	select {
	case ch <- string(payload):
		delete(gm.matchingChannels, playerID)
		close(ch)
	default:
		log.Printf("matchmaking: player %s not listening", playerID)
	}
}

// watchClocks sweeps the live timed matches so flags fall even while both
// players sit still. The periodic broadcast lives here, not in the engine.
func (gm *GameManager) watchClocks() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		gm.mu.RLock()
		matches := make([]*Match, 0, len(gm.games))
		for _, m := range gm.games {
			matches = append(matches, m)
		}
		gm.mu.RUnlock()

		for _, m := range matches {
			m.CheckClocks()
		}
		gm.reapFinished(time.Now())
	}
}

// reapFinished evicts matches that have been over for the retention period.
// The first sweep that sees a finished match stamps it, a later sweep drops
// it, so clients get a grace window for final state fetches.
func (gm *GameManager) reapFinished(now time.Time) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	for id, m := range gm.games {
		if !m.GameOver() {
			continue
		}
		over, seen := gm.finished[id]
		if !seen {
			gm.finished[id] = now
			continue
		}
		if now.Sub(over) >= finishedMatchRetention {
			delete(gm.games, id)
			delete(gm.finished, id)
		}
	}
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn *ws.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID)
}
