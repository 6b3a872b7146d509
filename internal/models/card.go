// internal/models/card.go
package models

// GameCard is a single prompt card. IDs are unique within a pack; 0 is a
// legitimate id.
type GameCard struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// CardPack is an immutable named collection of cards. Games reference a pack
// by PackID and deal from it without ever mutating it.
type CardPack struct {
	PackID      string     `json:"packId"`
	DisplayName string     `json:"displayName"`
	Description string     `json:"description"`
	Cards       []GameCard `json:"cards"`
}
