// internal/notifications/push.go

// Package notifications delivers the game's push messages. Dispatch is fire
// and forget end to end: the state machine hands over recipients and text,
// and everything past that point logs its own failures instead of surfacing
// them.
package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TokenStore resolves user ids to their registered device tokens.
type TokenStore interface {
	FetchFCMTokens(ctx context.Context, uids []uuid.UUID) ([]string, error)
}

// PushNotifier posts one multicast message per notification to an FCM-style
// HTTP gateway.
type PushNotifier struct {
	tokens   TokenStore
	client   *http.Client
	endpoint string
	apiKey   string
	timeout  time.Duration
	log      *logrus.Logger
}

// multicastMessage is the gateway's wire format: one notification fanned out
// to every listed device token.
type multicastMessage struct {
	Notification notificationBody `json:"notification"`
	Tokens       []string         `json:"tokens"`
}

type notificationBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// NewPushNotifier reads the gateway endpoint and server key from
// FCM_ENDPOINT / FCM_SERVER_KEY.
func NewPushNotifier(tokens TokenStore, log *logrus.Logger) *PushNotifier {
	return &PushNotifier{
		tokens:   tokens,
		client:   &http.Client{},
		endpoint: os.Getenv("FCM_ENDPOINT"),
		apiKey:   os.Getenv("FCM_SERVER_KEY"),
		timeout:  10 * time.Second,
		log:      log,
	}
}

// Send dispatches asynchronously and returns immediately. Failures are
// logged, never reported to the caller.
func (n *PushNotifier) Send(recipients []uuid.UUID, title, body string) {
	go n.deliver(recipients, title, body)
}

func (n *PushNotifier) deliver(recipients []uuid.UUID, title, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	tokens, err := n.tokens.FetchFCMTokens(ctx, recipients)
	if err != nil {
		n.log.WithError(err).Warn("push: token lookup failed")
		return
	}
	if len(tokens) == 0 {
		return
	}

	payload, err := json.Marshal(multicastMessage{
		Notification: notificationBody{Title: title, Body: body},
		Tokens:       tokens,
	})
	if err != nil {
		n.log.WithError(err).Warn("push: marshal failed")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		n.log.WithError(err).Warn("push: build request failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.WithError(err).Warn("push: gateway request failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"tokens": len(tokens),
		}).Warn("push: gateway rejected message")
		return
	}

	n.log.WithFields(logrus.Fields{
		"tokens": len(tokens),
		"title":  title,
	}).Debug("push delivered")
}
