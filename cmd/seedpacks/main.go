// cmd/seedpacks/main.go

// seedpacks loads card pack JSON files into the card_packs table. Each file
// holds one pack in the persisted CardPack shape. Packs are immutable to the
// game; this tool is how they get there in the first place.
//
// Usage: seedpacks pack1.json [pack2.json ...]
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/whatcard/server/internal/database"
	"github.com/whatcard/server/internal/models"
)

func main() {
	logger := logrus.New()

	if len(os.Args) < 2 {
		log.Fatal("usage: seedpacks <pack.json> [pack.json ...]")
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer pool.Close()

	store := database.NewCardPackStore(pool)

	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}

		var pack models.CardPack
		if err := json.Unmarshal(data, &pack); err != nil {
			log.Fatalf("parse %s: %v", path, err)
		}
		if pack.PackID == "" {
			log.Fatalf("%s: pack has no packId", path)
		}

		if err := store.UpsertCardPack(ctx, pack); err != nil {
			log.Fatalf("seed %s: %v", pack.PackID, err)
		}
		logger.WithFields(logrus.Fields{
			"pack":  pack.PackID,
			"cards": len(pack.Cards),
		}).Info("pack seeded")
	}
}
