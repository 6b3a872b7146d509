// internal/notifications/fanout.go
package notifications

import (
	"github.com/google/uuid"

	"github.com/whatcard/server/internal/game"
)

// Fanout duplicates every notification across multiple notifiers, e.g. the
// push gateway plus the in-app websocket feed.
type Fanout []game.Notifier

func (f Fanout) Send(recipients []uuid.UUID, title, body string) {
	for _, n := range f {
		n.Send(recipients, title, body)
	}
}
