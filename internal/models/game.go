// internal/models/game.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus tracks the lifecycle of one game. Status only moves forward:
// PreLobby -> InProgress -> Over.
type GameStatus string

const (
	StatusPreLobby   GameStatus = "isInPreLobby"
	StatusInProgress GameStatus = "isInProgress"
	StatusOver       GameStatus = "isOver"
)

// PlayerRef identifies one player by uid and display name. It stands in for
// both the game host and the current turn holder.
type PlayerRef struct {
	UID         uuid.UUID `json:"uid"`
	DisplayName string    `json:"displayName"`
}

// Game is the persisted record of a single match, stored as one document.
//
// PlayerIDs and Players grow in lockstep; PlayerIDs keeps join order while
// the order of Players becomes the turn order once the game starts.
// TurnSequence is a monotonic counter bumped on every mutation; saves are
// conditional on the value the writer read, so a lost race surfaces as a
// conflict instead of silently clobbering turn state.
type Game struct {
	GameID       uuid.UUID   `json:"gameId"`
	JoinCode     string      `json:"joinCode"`
	DisplayName  string      `json:"displayName"`
	Host         PlayerRef   `json:"host"`
	Status       GameStatus  `json:"gameStatus"`
	CardPack     string      `json:"cardPack"`
	CardAmount   int         `json:"cardAmount"`
	PlayerIDs    []uuid.UUID `json:"playerIds"`
	Players      []Player    `json:"players"`
	CurrentTurn  *PlayerRef  `json:"currentTurn,omitempty"`
	TurnSequence int64       `json:"turnSequence"`
	CreatedTime  time.Time   `json:"createdTime"`
}

// HasPlayer reports whether uid is already part of the roster.
func (g *Game) HasPlayer(uid uuid.UUID) bool {
	for _, id := range g.PlayerIDs {
		if id == uid {
			return true
		}
	}
	return false
}

// PlayerIndex returns the position of uid in Players, or -1 if absent.
func (g *Game) PlayerIndex(uid uuid.UUID) int {
	for i := range g.Players {
		if g.Players[i].UID == uid {
			return i
		}
	}
	return -1
}
