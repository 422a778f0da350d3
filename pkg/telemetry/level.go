package telemetry

import (
	"strings"
	"sync"
)

// Level is a debug verbosity name. Higher ranks are more verbose.
type Level string

// Recognized levels, least verbose first.
const (
	LevelSystem Level = "system"
	LevelError  Level = "error"
	LevelInfo   Level = "info"
	LevelDebug  Level = "debug"
)

var levelRanks = map[Level]int{
	LevelSystem: 0,
	LevelError:  1,
	LevelInfo:   2,
	LevelDebug:  3,
}

// Levels returns the recognized levels ordered by rank.
func Levels() []Level {
	return []Level{LevelSystem, LevelError, LevelInfo, LevelDebug}
}

// Rank returns the rank of a level name, ignoring case.
// The boolean is false for names outside the recognized set.
func Rank(level string) (int, bool) {
	r, ok := levelRanks[Level(strings.ToLower(level))]
	return r, ok
}

// Known reports whether level is one of the recognized levels.
func Known(level string) bool {
	_, ok := Rank(level)
	return ok
}

// Gate holds the current verbosity threshold.
//
// Any string is accepted as the current level. An unrecognized current level
// rejects every request, and an unrecognized requested level is always
// rejected; neither case is an error.
type Gate struct {
	mu      sync.RWMutex
	current string
}

// NewGate creates a gate with the given starting level.
func NewGate(initial string) *Gate {
	return &Gate{current: strings.ToLower(initial)}
}

// Set lowercases and stores level as the current threshold.
func (g *Gate) Set(level string) {
	g.mu.Lock()
	g.current = strings.ToLower(level)
	g.mu.Unlock()
}

// Level returns the current threshold as stored.
func (g *Gate) Level() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// ShouldLog reports whether a line at requested passes the current threshold.
func (g *Gate) ShouldLog(requested string) bool {
	want, ok := Rank(requested)
	if !ok {
		return false
	}
	have, ok := Rank(g.Level())
	if !ok {
		return false
	}
	return have >= want
}
