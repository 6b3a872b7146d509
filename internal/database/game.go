// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whatcard/server/internal/game"
	"github.com/whatcard/server/internal/models"
)

// GameStore keeps one JSONB document per game. The turn_sequence column
// mirrors the document field so the conditional save can be expressed in
// SQL without parsing JSON.
type GameStore struct {
	pool *pgxpool.Pool
}

func NewGameStore(pool *pgxpool.Pool) *GameStore {
	return &GameStore{pool: pool}
}

func (s *GameStore) CreateGame(ctx context.Context, g models.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return game.Errorf(game.KindInternal, "marshal game %s: %v", g.GameID, err)
	}

	const q = `INSERT INTO games (id, join_code, turn_sequence, data) VALUES ($1, $2, $3, $4)`
	if _, err := s.pool.Exec(ctx, q, g.GameID, g.JoinCode, g.TurnSequence, data); err != nil {
		return fmt.Errorf("insert game %s: %w", g.GameID, err)
	}
	return nil
}

func (s *GameStore) FetchGame(ctx context.Context, gameID uuid.UUID) (models.Game, error) {
	const q = `SELECT data FROM games WHERE id = $1`

	var data []byte
	err := s.pool.QueryRow(ctx, q, gameID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Game{}, game.Errorf(game.KindNotFound, "game with ID %s does not exist", gameID)
	}
	if err != nil {
		return models.Game{}, fmt.Errorf("fetch game %s: %w", gameID, err)
	}

	var g models.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return models.Game{}, game.Errorf(game.KindInternal, "unmarshal game %s: %v", gameID, err)
	}
	return g, nil
}

// SaveGame writes the full document, but only if the stored turn_sequence
// still matches what the writer read. Zero affected rows means another
// writer got there first.
func (s *GameStore) SaveGame(ctx context.Context, g models.Game, expectedSeq int64) error {
	data, err := json.Marshal(g)
	if err != nil {
		return game.Errorf(game.KindInternal, "marshal game %s: %v", g.GameID, err)
	}

	const q = `UPDATE games SET data = $1, turn_sequence = $2 WHERE id = $3 AND turn_sequence = $4`
	tag, err := s.pool.Exec(ctx, q, data, g.TurnSequence, g.GameID, expectedSeq)
	if err != nil {
		return fmt.Errorf("save game %s: %w", g.GameID, err)
	}
	if tag.RowsAffected() == 0 {
		return game.Errorf(game.KindConflict, "game %s was modified concurrently", g.GameID)
	}
	return nil
}
