// internal/handlers/game_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whatcard/server/internal/auth"
	"github.com/whatcard/server/internal/game"
	"github.com/whatcard/server/internal/models"
)

// memGameRepo is a JSON-backed in-memory repository so handler tests run
// against the real service without a database.
type memGameRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID][]byte
}

func newMemGameRepo() *memGameRepo {
	return &memGameRepo{docs: map[uuid.UUID][]byte{}}
}

func (r *memGameRepo) CreateGame(ctx context.Context, g models.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[g.GameID] = data
	return nil
}

func (r *memGameRepo) FetchGame(ctx context.Context, gameID uuid.UUID) (models.Game, error) {
	r.mu.Lock()
	data, ok := r.docs[gameID]
	r.mu.Unlock()
	if !ok {
		return models.Game{}, game.Errorf(game.KindNotFound, "game with ID %s does not exist", gameID)
	}
	var g models.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return models.Game{}, err
	}
	return g, nil
}

func (r *memGameRepo) SaveGame(ctx context.Context, g models.Game, expectedSeq int64) error {
	stored, err := r.FetchGame(ctx, g.GameID)
	if err != nil {
		return err
	}
	if stored.TurnSequence != expectedSeq {
		return game.Errorf(game.KindConflict, "game %s was modified concurrently", g.GameID)
	}
	return r.CreateGame(ctx, g)
}

type memPackRepo struct {
	packs map[string]models.CardPack
}

func (r *memPackRepo) FetchCardPack(ctx context.Context, packID string) (models.CardPack, error) {
	pack, ok := r.packs[packID]
	if !ok {
		return models.CardPack{}, game.Errorf(game.KindNotFound, "card pack with ID %s does not exist", packID)
	}
	return pack, nil
}

type noopNotifier struct{}

func (noopNotifier) Send(recipients []uuid.UUID, title, body string) {}

type memDeviceStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

func (s *memDeviceStore) UpsertUser(ctx context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = map[uuid.UUID]models.User{}
	}
	s.users[u.UID] = u
	return nil
}

func newTestServer(t *testing.T) (*Server, *memGameRepo) {
	t.Helper()
	require.NoError(t, auth.Init()) // ephemeral keys, no DB needed

	games := newMemGameRepo()
	packs := &memPackRepo{packs: map[string]models.CardPack{
		"icebreakers": {
			PackID: "icebreakers",
			Cards: []models.GameCard{
				{ID: 0, Title: "a"}, {ID: 1, Title: "b"}, {ID: 2, Title: "c"},
			},
		},
	}}

	log := logrus.New()
	log.SetOutput(io.Discard)
	svc := game.NewService(games, packs, noopNotifier{}, game.WithLogger(log))
	return NewServer(svc, &memDeviceStore{}, log), games
}

func authedRequest(t *testing.T, uid uuid.UUID, method, target, body string) *http.Request {
	t.Helper()
	token, err := auth.CreateJWT(uid)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Cookie", auth.CookieName+"="+token)
	return req
}

func storedGame(t *testing.T, repo *memGameRepo, id uuid.UUID) models.Game {
	t.Helper()
	g, err := repo.FetchGame(context.Background(), id)
	require.NoError(t, err)
	return g
}

func TestJoinGameUnauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/game/join", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	JoinGameHandler(srv).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndJoinGame(t *testing.T) {
	srv, repo := newTestServer(t)
	host := uuid.New()

	body := `{"displayName":"Friday Night","hostDisplayName":"Sam","cardPack":"icebreakers","cardAmount":2}`
	w := httptest.NewRecorder()
	CreateGameHandler(srv).ServeHTTP(w, authedRequest(t, host, "POST", "/game/create", body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created models.Game
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.GameID)
	assert.Equal(t, models.StatusPreLobby, created.Status)

	joiner := uuid.New()
	joinBody := fmt.Sprintf(`{"gameId":%q,"displayName":"Riley"}`, created.GameID.String())
	w = httptest.NewRecorder()
	JoinGameHandler(srv).ServeHTTP(w, authedRequest(t, joiner, "POST", "/game/join", joinBody))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	g := storedGame(t, repo, created.GameID)
	assert.Len(t, g.Players, 2)

	// Same uid joining again trips the precondition and maps to 412.
	w = httptest.NewRecorder()
	JoinGameHandler(srv).ServeHTTP(w, authedRequest(t, joiner, "POST", "/game/join", joinBody))
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Contains(t, w.Body.String(), "failed_precondition")
}

func TestStartGameOnlyHost(t *testing.T) {
	srv, repo := newTestServer(t)
	host := uuid.New()

	body := `{"displayName":"Friday Night","hostDisplayName":"Sam","cardPack":"icebreakers","cardAmount":2}`
	w := httptest.NewRecorder()
	CreateGameHandler(srv).ServeHTTP(w, authedRequest(t, host, "POST", "/game/create", body))
	require.Equal(t, http.StatusOK, w.Code)
	var created models.Game
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	startBody := fmt.Sprintf(`{"gameId":%q}`, created.GameID.String())

	w = httptest.NewRecorder()
	StartGameHandler(srv).ServeHTTP(w, authedRequest(t, uuid.New(), "POST", "/game/start", startBody))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	StartGameHandler(srv).ServeHTTP(w, authedRequest(t, host, "POST", "/game/start", startBody))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	g := storedGame(t, repo, created.GameID)
	assert.Equal(t, models.StatusInProgress, g.Status)
}

func TestPlayCardToGameOver(t *testing.T) {
	srv, repo := newTestServer(t)
	a, b := uuid.New(), uuid.New()

	g := models.Game{
		GameID:      uuid.New(),
		DisplayName: "Friday Night",
		Host:        models.PlayerRef{UID: a, DisplayName: "A"},
		Status:      models.StatusInProgress,
		CardPack:    "icebreakers",
		CardAmount:  1,
		PlayerIDs:   []uuid.UUID{a, b},
		Players: []models.Player{
			{UID: a, DisplayName: "A", Cards: []models.GameCard{{ID: 0, Title: "a"}}},
			{UID: b, DisplayName: "B", Cards: []models.GameCard{{ID: 1, Title: "b"}}},
		},
		CurrentTurn: &models.PlayerRef{UID: a, DisplayName: "A"},
	}
	require.NoError(t, repo.CreateGame(context.Background(), g))

	// B plays first; the turn wraps back to A.
	playB := fmt.Sprintf(`{"gameId":%q,"cardId":1,"targetUid":%q}`, g.GameID.String(), a.String())
	w := httptest.NewRecorder()
	PlayCardHandler(srv).ServeHTTP(w, authedRequest(t, b, "POST", "/game/play", playB))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"gameOver":false}`, w.Body.String())

	// A plays their last card (id 0 — a valid id, not a missing field);
	// B is out of cards, so the game ends.
	playA := fmt.Sprintf(`{"gameId":%q,"cardId":0,"targetUid":%q}`, g.GameID.String(), b.String())
	w = httptest.NewRecorder()
	PlayCardHandler(srv).ServeHTTP(w, authedRequest(t, a, "POST", "/game/play", playA))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"gameOver":true}`, w.Body.String())

	stored := storedGame(t, repo, g.GameID)
	assert.Equal(t, models.StatusOver, stored.Status)
}

func TestPlayCardMissingCardID(t *testing.T) {
	srv, repo := newTestServer(t)
	a, b := uuid.New(), uuid.New()

	g := models.Game{
		GameID:     uuid.New(),
		Host:       models.PlayerRef{UID: a, DisplayName: "A"},
		Status:     models.StatusInProgress,
		CardPack:   "icebreakers",
		CardAmount: 1,
		PlayerIDs:  []uuid.UUID{a, b},
		Players: []models.Player{
			{UID: a, DisplayName: "A", Cards: []models.GameCard{{ID: 0}}},
			{UID: b, DisplayName: "B", Cards: []models.GameCard{{ID: 1}}},
		},
		CurrentTurn: &models.PlayerRef{UID: a, DisplayName: "A"},
	}
	require.NoError(t, repo.CreateGame(context.Background(), g))

	body := fmt.Sprintf(`{"gameId":%q,"targetUid":%q}`, g.GameID.String(), b.String())
	w := httptest.NewRecorder()
	PlayCardHandler(srv).ServeHTTP(w, authedRequest(t, a, "POST", "/game/play", body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_argument")
}

func TestGetGame(t *testing.T) {
	srv, repo := newTestServer(t)
	uid := uuid.New()

	g := models.Game{
		GameID:    uuid.New(),
		Host:      models.PlayerRef{UID: uid, DisplayName: "A"},
		Status:    models.StatusPreLobby,
		CardPack:  "icebreakers",
		PlayerIDs: []uuid.UUID{uid},
		Players:   []models.Player{models.NewPlayer(uid, "A")},
	}
	require.NoError(t, repo.CreateGame(context.Background(), g))

	w := httptest.NewRecorder()
	GetGameHandler(srv).ServeHTTP(w, authedRequest(t, uid, "GET", "/game/"+g.GameID.String(), ""))
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Game
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, g.GameID, got.GameID)

	w = httptest.NewRecorder()
	GetGameHandler(srv).ServeHTTP(w, authedRequest(t, uid, "GET", "/game/"+uuid.NewString(), ""))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegisterDevice(t *testing.T) {
	srv, _ := newTestServer(t)
	uid := uuid.New()

	w := httptest.NewRecorder()
	RegisterDeviceHandler(srv).ServeHTTP(w, authedRequest(t, uid, "POST", "/user/device", `{"fcmToken":"tok-123"}`))
	require.Equal(t, http.StatusOK, w.Code)

	store := srv.Devices.(*memDeviceStore)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, "tok-123", store.users[uid].FCMToken)
}
