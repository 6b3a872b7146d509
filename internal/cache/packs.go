// internal/cache/packs.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/whatcard/server/internal/game"
	"github.com/whatcard/server/internal/models"
)

// DefaultPackTTL is how long a cached pack lives before it is re-read from
// the database.
const DefaultPackTTL = 12 * time.Hour

// PackCache decorates a CardPackRepository with a redis read-through. Cache
// trouble is never fatal: every redis failure falls through to the backing
// repository and gets logged.
type PackCache struct {
	rdb  *redis.Client
	next game.CardPackRepository
	ttl  time.Duration
	log  *logrus.Logger
}

func NewPackCache(rdb *redis.Client, next game.CardPackRepository, log *logrus.Logger) *PackCache {
	return &PackCache{rdb: rdb, next: next, ttl: DefaultPackTTL, log: log}
}

func packKey(packID string) string {
	return "whatcard:pack:" + packID
}

func (c *PackCache) FetchCardPack(ctx context.Context, packID string) (models.CardPack, error) {
	key := packKey(packID)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var pack models.CardPack
		if jerr := json.Unmarshal(data, &pack); jerr == nil {
			return pack, nil
		}
		// Corrupt entry; fall through and rewrite it.
		c.log.WithField("pack", packID).Warn("discarding corrupt pack cache entry")
	case !errors.Is(err, redis.Nil):
		c.log.WithError(err).WithField("pack", packID).Warn("pack cache read failed")
	}

	pack, err := c.next.FetchCardPack(ctx, packID)
	if err != nil {
		return models.CardPack{}, err
	}

	if data, jerr := json.Marshal(pack); jerr == nil {
		if serr := c.rdb.Set(ctx, key, data, c.ttl).Err(); serr != nil {
			c.log.WithError(serr).WithField("pack", packID).Warn("pack cache write failed")
		}
	}
	return pack, nil
}
