// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/whatcard/server/internal/auth"
	"github.com/whatcard/server/internal/cache"
	"github.com/whatcard/server/internal/database"
	"github.com/whatcard/server/internal/game"
	"github.com/whatcard/server/internal/handlers"
	"github.com/whatcard/server/internal/middleware"
	"github.com/whatcard/server/internal/notifications"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	if err := auth.Init(); err != nil {
		log.Fatalf("auth init failed: %v", err)
	}

	ctx := context.Background()

	pool, err := database.Connect(ctx)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer pool.Close()

	rdb, err := cache.Connect(ctx)
	if err != nil {
		log.Fatalf("redis connect failed: %v", err)
	}
	defer rdb.Close()

	games := database.NewGameStore(pool)
	packs := cache.NewPackCache(rdb, database.NewCardPackStore(pool), logger)
	users := database.NewUserStore(pool)

	feed := handlers.NewEventFeed(logger)
	notifier := notifications.Fanout{
		notifications.NewPushNotifier(users, logger),
		feed,
	}

	svc := game.NewService(games, packs, notifier, game.WithLogger(logger))
	srv := handlers.NewServer(svc, users, logger)

	mux := http.NewServeMux()
	withLog := middleware.LogMiddleware(logger)

	mux.Handle("/game/create", withLog(handlers.CreateGameHandler(srv)))
	mux.Handle("/game/join", withLog(handlers.JoinGameHandler(srv)))
	mux.Handle("/game/start", withLog(handlers.StartGameHandler(srv)))
	mux.Handle("/game/play", withLog(handlers.PlayCardHandler(srv)))
	mux.Handle("/game/", withLog(handlers.GetGameHandler(srv)))

	mux.Handle("/user/device", withLog(handlers.RegisterDeviceHandler(srv)))

	mux.Handle("/events/ws", withLog(handlers.EventsWSHandler(logger, feed)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
