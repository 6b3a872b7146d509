// internal/handlers/events_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/whatcard/server/internal/auth"
	"github.com/whatcard/server/internal/middleware"
)

// feedEvent is the wire shape pushed to subscribed clients. It mirrors the
// push gateway payload so clients can render either channel the same way.
type feedEvent struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// EventFeed pushes game notifications to connected clients over websocket.
// It satisfies the same Notifier contract as the push gateway, so the
// service fans out to both; a user with the app open sees the event without
// waiting on the push network.
type EventFeed struct {
	mu    sync.Mutex
	conns map[uuid.UUID]map[*websocket.Conn]struct{}
	log   *logrus.Logger

	writeTimeout time.Duration
}

func NewEventFeed(log *logrus.Logger) *EventFeed {
	return &EventFeed{
		conns:        make(map[uuid.UUID]map[*websocket.Conn]struct{}),
		log:          log,
		writeTimeout: 5 * time.Second,
	}
}

// Send implements the notifier contract: fan the event out to every open
// connection of every recipient. Slow or dead connections are dropped, never
// waited on by game logic.
func (f *EventFeed) Send(recipients []uuid.UUID, title, body string) {
	data, err := json.Marshal(feedEvent{Type: "notification", Title: title, Body: body})
	if err != nil {
		f.log.WithError(err).Warn("event feed: marshal failed")
		return
	}

	f.mu.Lock()
	var targets []*websocket.Conn
	for _, uid := range recipients {
		for c := range f.conns[uid] {
			targets = append(targets, c)
		}
	}
	f.mu.Unlock()

	for _, c := range targets {
		go func(c *websocket.Conn) {
			ctx, cancel := context.WithTimeout(context.Background(), f.writeTimeout)
			defer cancel()
			if err := c.Write(ctx, websocket.MessageText, data); err != nil {
				c.Close(websocket.StatusGoingAway, "write failed")
			}
		}(c)
	}
}

func (f *EventFeed) register(uid uuid.UUID, c *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conns[uid] == nil {
		f.conns[uid] = make(map[*websocket.Conn]struct{})
	}
	f.conns[uid][c] = struct{}{}
}

func (f *EventFeed) unregister(uid uuid.UUID, c *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.conns[uid], c)
	if len(f.conns[uid]) == 0 {
		delete(f.conns, uid)
	}
}

// EventsWSHandler handles GET /events/ws: authenticates the caller, upgrades
// to websocket, and keeps the connection subscribed until the client goes
// away. Clients only listen on this socket; incoming frames are discarded.
func EventsWSHandler(logger *logrus.Logger, feed *EventFeed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := auth.UIDFromRequest(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for user %s: %v", uid, err)
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		feed.register(uid, c)
		defer feed.unregister(uid, c)

		ctx := r.Context()
		for {
			if _, _, err := c.Read(ctx); err != nil {
				middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
				c.Close(websocket.StatusNormalClosure, "bye")
				return
			}
		}
	}
}
