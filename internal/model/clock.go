package model

import "fmt"

// Clock bookkeeping for the game. Time is tracked lazily: nothing ticks in
// the background, elapsed wall-clock time is deducted from the side to move
// whenever UpdateTime runs (on reads, moves and timeout checks).

func (g *Game) IsUntimed() bool { return g.timeControl == 0 }

func (g *Game) StartTimer() {
	if g.IsUntimed() || g.timerRunning {
		return
	}
	g.timerRunning = true
	g.lastTimestamp = g.now()
}

func (g *Game) StopTimer() {
	if !g.timerRunning {
		return
	}
	g.UpdateTime()
	g.timerRunning = false
}

// UpdateTime deducts the elapsed time since the last timestamp from the side
// to move, flooring at zero, and resets the timestamp. A no-op when untimed
// or the timer is stopped.
func (g *Game) UpdateTime() {
	if g.IsUntimed() || !g.timerRunning {
		return
	}
	elapsed := g.now().Sub(g.lastTimestamp).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	if g.pos.Turn == White {
		g.whiteTimeMs = max(0, g.whiteTimeMs-elapsed)
	} else {
		g.blackTimeMs = max(0, g.blackTimeMs-elapsed)
	}
	g.lastTimestamp = g.now()
}

// CheckTimeout brings the clocks up to date and ends the game if either has
// run out. Returns nil while both sides still have time, and always for
// untimed games.
func (g *Game) CheckTimeout() *GameStatus {
	if g.IsUntimed() || g.gameOver {
		return nil
	}
	g.UpdateTime()
	if g.whiteTimeMs <= 0 {
		winner := Black
		status := g.finish(&winner, EndTimeout)
		return &status
	}
	if g.blackTimeMs <= 0 {
		winner := White
		status := g.finish(&winner, EndTimeout)
		return &status
	}
	return nil
}

func (g *Game) GetTimeRemaining(color Color) int64 {
	if color == White {
		return g.whiteTimeMs
	}
	return g.blackTimeMs
}

func (g *Game) SetTime(color Color, ms int64) {
	if color == White {
		g.whiteTimeMs = ms
	} else {
		g.blackTimeMs = ms
	}
}

// FormatTime renders milliseconds as minutes:seconds, seconds zero-padded.
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
