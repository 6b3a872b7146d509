// internal/database/cardpack.go
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whatcard/server/internal/game"
	"github.com/whatcard/server/internal/models"
)

// CardPackStore reads and seeds the immutable card packs.
type CardPackStore struct {
	pool *pgxpool.Pool
}

func NewCardPackStore(pool *pgxpool.Pool) *CardPackStore {
	return &CardPackStore{pool: pool}
}

func (s *CardPackStore) FetchCardPack(ctx context.Context, packID string) (models.CardPack, error) {
	const q = `SELECT data FROM card_packs WHERE pack_id = $1`

	var data []byte
	err := s.pool.QueryRow(ctx, q, packID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.CardPack{}, game.Errorf(game.KindNotFound, "card pack with ID %s does not exist", packID)
	}
	if err != nil {
		return models.CardPack{}, fmt.Errorf("fetch card pack %s: %w", packID, err)
	}

	var pack models.CardPack
	if err := json.Unmarshal(data, &pack); err != nil {
		return models.CardPack{}, game.Errorf(game.KindInternal, "unmarshal card pack %s: %v", packID, err)
	}
	return pack, nil
}

// UpsertCardPack loads or replaces a pack. Packs are immutable from the
// game's point of view; this exists for the seeding tool only.
func (s *CardPackStore) UpsertCardPack(ctx context.Context, pack models.CardPack) error {
	data, err := json.Marshal(pack)
	if err != nil {
		return game.Errorf(game.KindInternal, "marshal card pack %s: %v", pack.PackID, err)
	}

	const q = `
		INSERT INTO card_packs (pack_id, data)
		VALUES ($1, $2)
		ON CONFLICT (pack_id) DO UPDATE SET data = $2
	`
	if _, err := s.pool.Exec(ctx, q, pack.PackID, data); err != nil {
		return fmt.Errorf("upsert card pack %s: %w", pack.PackID, err)
	}
	return nil
}
