// internal/models/user.go
package models

import "github.com/google/uuid"

// User holds the per-user data the notification pipeline needs. The uid is
// the same identity the auth layer hands to the game operations.
type User struct {
	UID         uuid.UUID `json:"uid"`
	PhoneNumber string    `json:"phoneNumber"`
	FCMToken    string    `json:"fcmToken"`
}
