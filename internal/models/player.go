// internal/models/player.go
package models

import "github.com/google/uuid"

// Player is one participant in a game. Cards is the player's hand; it is
// mutated only by dealing (game start) and playing (one removal per play).
type Player struct {
	UID         uuid.UUID  `json:"uid"`
	DisplayName string     `json:"displayName"`
	Cards       []GameCard `json:"cards"`
}

// NewPlayer builds a player with an empty hand.
func NewPlayer(uid uuid.UUID, displayName string) Player {
	return Player{
		UID:         uid,
		DisplayName: displayName,
		Cards:       []GameCard{},
	}
}
