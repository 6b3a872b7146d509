// internal/handlers/user.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/whatcard/server/internal/auth"
	"github.com/whatcard/server/internal/models"
)

// RegisterDeviceHandler handles POST /user/device: stores the caller's push
// token so notification dispatch can reach them.
func RegisterDeviceHandler(srv *Server) http.HandlerFunc {
	type request struct {
		FCMToken    string `json:"fcmToken"`
		PhoneNumber string `json:"phoneNumber"`
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
		if req.FCMToken == "" {
			http.Error(w, "missing fcmToken", http.StatusBadRequest)
			return
		}

		if err := srv.Devices.UpsertUser(r.Context(), models.User{
			UID:         uid,
			PhoneNumber: req.PhoneNumber,
			FCMToken:    req.FCMToken,
		}); err != nil {
			srv.Log.WithError(err).Error("device registration failed")
			http.Error(w, "could not register device", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, response{Success: true})
	}
}
