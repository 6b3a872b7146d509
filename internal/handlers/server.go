// internal/handlers/server.go

// Package handlers is the thin HTTP surface over the game service: each
// handler authenticates the caller, decodes one request, invokes one
// operation, and encodes the result. No game rules live here.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/whatcard/server/internal/game"
	"github.com/whatcard/server/internal/models"
)

// DeviceStore is the slice of persistence the handlers touch directly:
// device-token registration for push notifications.
type DeviceStore interface {
	UpsertUser(ctx context.Context, u models.User) error
}

// Server bundles the game service with the collaborators the HTTP layer
// needs.
type Server struct {
	Service *game.Service
	Devices DeviceStore
	Log     *logrus.Logger
}

// NewServer wires the HTTP layer to the game service.
func NewServer(svc *game.Service, devices DeviceStore, log *logrus.Logger) *Server {
	return &Server{Service: svc, Devices: devices, Log: log}
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// writeError maps an operation error to a status code and a structured
// body, so clients can branch on kind without parsing messages.
func writeError(w http.ResponseWriter, err error) {
	kind := game.KindOf(err)

	var status int
	switch kind {
	case game.KindInvalidArgument:
		status = http.StatusBadRequest
	case game.KindNotFound:
		status = http.StatusNotFound
	case game.KindFailedPrecondition:
		status = http.StatusPreconditionFailed
	case game.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, map[string]errorBody{
		"error": {Kind: kind.String(), Message: err.Error()},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
