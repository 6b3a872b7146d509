// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/whatcard/server/internal/auth"
	"github.com/whatcard/server/internal/game"
)

// CreateGameHandler handles POST /game/create. The authenticated caller
// becomes the host and the game's first player.
func CreateGameHandler(srv *Server) http.HandlerFunc {
	type request struct {
		DisplayName     string `json:"displayName"`
		HostDisplayName string `json:"hostDisplayName"`
		CardPack        string `json:"cardPack"`
		CardAmount      int    `json:"cardAmount"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := auth.UIDFromRequest(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		g, err := srv.Service.Create(r.Context(), game.CreateGameRequest{
			HostUID:         uid,
			HostDisplayName: req.HostDisplayName,
			GameDisplayName: req.DisplayName,
			CardPack:        req.CardPack,
			CardAmount:      req.CardAmount,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// JoinGameHandler handles POST /game/join: the authenticated caller joins
// the lobby under the display name they supply.
func JoinGameHandler(srv *Server) http.HandlerFunc {
	type request struct {
		GameID      uuid.UUID `json:"gameId"`
		DisplayName string    `json:"displayName"`
	}
	type response struct {
		Success bool `json:"success"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := auth.UIDFromRequest(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if _, err := srv.Service.Join(r.Context(), game.JoinRequest{
			GameID:      req.GameID,
			JoiningUID:  uid,
			DisplayName: req.DisplayName,
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true})
	}
}

// StartGameHandler handles POST /game/start. Only the host may start; that
// check is authorization, so it lives here rather than in the state machine.
func StartGameHandler(srv *Server) http.HandlerFunc {
	type request struct {
		GameID uuid.UUID `json:"gameId"`
	}
	type response struct {
		Success bool `json:"success"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := auth.UIDFromRequest(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		g, err := srv.Service.Get(r.Context(), req.GameID)
		if err != nil {
			writeError(w, err)
			return
		}
		if g.Host.UID != uid {
			http.Error(w, "only the host can start the game", http.StatusForbidden)
			return
		}

		if _, err := srv.Service.Start(r.Context(), game.StartRequest{GameID: req.GameID}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true})
	}
}

// PlayCardHandler handles POST /game/play. The acting player is always the
// authenticated caller; cardId is decoded into a pointer so that id 0 is
// not mistaken for an omitted field.
func PlayCardHandler(srv *Server) http.HandlerFunc {
	type request struct {
		GameID    uuid.UUID `json:"gameId"`
		CardID    *int      `json:"cardId"`
		TargetUID uuid.UUID `json:"targetUid"`
	}
	type response struct {
		Success  bool `json:"success"`
		GameOver bool `json:"gameOver"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := auth.UIDFromRequest(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		res, err := srv.Service.PlayCard(r.Context(), game.PlayCardRequest{
			GameID:    req.GameID,
			ActorUID:  uid,
			CardID:    req.CardID,
			TargetUID: req.TargetUID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true, GameOver: res.GameOver})
	}
}

// GetGameHandler handles GET /game/{id}: a plain re-read of the persisted
// record, which is all the resume support the service offers.
func GetGameHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := auth.UIDFromRequest(r); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		idStr := strings.TrimPrefix(r.URL.Path, "/game/")
		gameID, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		g, err := srv.Service.Get(r.Context(), gameID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}
