// internal/game/service.go

// Package game implements the turn-based state machine at the heart of the
// service: lobby joins, the host-driven start (shuffled turn order, dealt
// hands), and card plays that advance the turn until a player runs out.
//
// The service is the only writer of Game records. Every operation is a
// single read-modify-write cycle: the full next state is computed in memory
// and persisted with one conditional save, so a failed operation never
// leaves a partial write behind.
package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/whatcard/server/internal/models"
	"github.com/whatcard/server/internal/shuffle"
)

// GameRepository persists Game records. SaveGame must reject the write when
// the stored turnSequence no longer matches expectedSeq and report it as a
// KindConflict error; FetchGame reports a missing game as KindNotFound.
type GameRepository interface {
	CreateGame(ctx context.Context, g models.Game) error
	FetchGame(ctx context.Context, gameID uuid.UUID) (models.Game, error)
	SaveGame(ctx context.Context, g models.Game, expectedSeq int64) error
}

// CardPackRepository fetches immutable card packs by id. A missing pack is a
// KindNotFound error.
type CardPackRepository interface {
	FetchCardPack(ctx context.Context, packID string) (models.CardPack, error)
}

// Notifier delivers a push notification to a set of players. Delivery is
// best effort: implementations must not block the caller and must swallow
// their own failures. The state machine never depends on delivery for
// correctness.
type Notifier interface {
	Send(recipients []uuid.UUID, title, body string)
}

// Service applies the game state machine against injected collaborators.
type Service struct {
	games    GameRepository
	packs    CardPackRepository
	notifier Notifier
	log      *logrus.Logger
	rng      *rand.Rand

	announceJoins bool
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger replaces the default logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithRand injects a deterministic random source, used by tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// WithJoinAnnouncements toggles the "player joined" notification. Default is
// on.
func WithJoinAnnouncements(enabled bool) Option {
	return func(s *Service) { s.announceJoins = enabled }
}

// NewService wires the state machine to its collaborators.
func NewService(games GameRepository, packs CardPackRepository, notifier Notifier, opts ...Option) *Service {
	s := &Service{
		games:         games,
		packs:         packs,
		notifier:      notifier,
		log:           logrus.New(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		announceJoins: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGameRequest creates a new game in the pre-lobby with the host as the
// sole player.
type CreateGameRequest struct {
	HostUID         uuid.UUID
	HostDisplayName string
	GameDisplayName string
	CardPack        string
	CardAmount      int
}

// JoinRequest adds a player to a game that has not started yet.
type JoinRequest struct {
	GameID      uuid.UUID
	JoiningUID  uuid.UUID
	DisplayName string
}

// StartRequest starts a game. Host authorization is the caller's concern;
// the state machine only uses the host identity to address notifications.
type StartRequest struct {
	GameID uuid.UUID
}

// PlayCardRequest plays one card out of the acting player's hand. ActorUID
// comes from the authenticated caller, never from the request body. CardID
// is a pointer so that id 0 stays distinguishable from an absent field.
type PlayCardRequest struct {
	GameID    uuid.UUID
	ActorUID  uuid.UUID
	CardID    *int
	TargetUID uuid.UUID
}

// PlayCardResult reports the outcome of a play. NextPlayer is nil when the
// play ended the game.
type PlayCardResult struct {
	GameOver   bool
	NextPlayer *models.PlayerRef
}

const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Create builds and persists a fresh game in the pre-lobby. The referenced
// card pack is fetched up front so a bad pack id fails here rather than at
// start time.
func (s *Service) Create(ctx context.Context, req CreateGameRequest) (models.Game, error) {
	if req.HostUID == uuid.Nil || req.HostDisplayName == "" || req.GameDisplayName == "" || req.CardPack == "" {
		return models.Game{}, Errorf(KindInvalidArgument, "missing argument for createGame")
	}
	if req.CardAmount <= 0 {
		return models.Game{}, Errorf(KindInvalidArgument, "cardAmount must be positive")
	}
	if _, err := s.packs.FetchCardPack(ctx, req.CardPack); err != nil {
		return models.Game{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.Game{}, Errorf(KindInternal, "generate game id: %v", err)
	}

	g := models.Game{
		GameID:      id,
		JoinCode:    s.newJoinCode(),
		DisplayName: req.GameDisplayName,
		Host:        models.PlayerRef{UID: req.HostUID, DisplayName: req.HostDisplayName},
		Status:      models.StatusPreLobby,
		CardPack:    req.CardPack,
		CardAmount:  req.CardAmount,
		PlayerIDs:   []uuid.UUID{req.HostUID},
		Players:     []models.Player{models.NewPlayer(req.HostUID, req.HostDisplayName)},
		CreatedTime: time.Now().UTC(),
	}
	if err := s.games.CreateGame(ctx, g); err != nil {
		return models.Game{}, err
	}

	s.log.WithFields(logrus.Fields{
		"gameId":   g.GameID,
		"joinCode": g.JoinCode,
		"host":     g.Host.UID,
	}).Info("game created")
	return g, nil
}

// Join appends a player to the roster of a pre-lobby game and announces the
// join to everyone already in it.
func (s *Service) Join(ctx context.Context, req JoinRequest) (models.Game, error) {
	if req.GameID == uuid.Nil || req.JoiningUID == uuid.Nil || req.DisplayName == "" {
		return models.Game{}, Errorf(KindInvalidArgument, "missing argument for joinGame")
	}

	g, err := s.games.FetchGame(ctx, req.GameID)
	if err != nil {
		return models.Game{}, err
	}
	if g.Status != models.StatusPreLobby {
		return models.Game{}, Errorf(KindFailedPrecondition, "game %s is no longer accepting players", g.GameID)
	}
	if g.HasPlayer(req.JoiningUID) {
		return models.Game{}, Errorf(KindFailedPrecondition, "user is already a player in this game")
	}

	expected := g.TurnSequence
	g.Players = append(g.Players, models.NewPlayer(req.JoiningUID, req.DisplayName))
	g.PlayerIDs = append(g.PlayerIDs, req.JoiningUID)
	g.TurnSequence++

	if err := s.games.SaveGame(ctx, g, expected); err != nil {
		return models.Game{}, err
	}

	if s.announceJoins {
		s.notifyExcept(g, req.JoiningUID,
			fmt.Sprintf("Someone joined %s", g.DisplayName),
			fmt.Sprintf("%s is in the lobby.", req.DisplayName))
	}
	return g, nil
}

// Start moves a pre-lobby game into progress: players are shuffled into
// their turn order, each player is dealt an independent draw from the card
// pack, and the first player in the shuffled order is up.
func (s *Service) Start(ctx context.Context, req StartRequest) (models.Game, error) {
	if req.GameID == uuid.Nil {
		return models.Game{}, Errorf(KindInvalidArgument, "missing argument for startGame")
	}

	g, err := s.games.FetchGame(ctx, req.GameID)
	if err != nil {
		return models.Game{}, err
	}
	if g.Status != models.StatusPreLobby {
		return models.Game{}, Errorf(KindFailedPrecondition, "game %s has already started", g.GameID)
	}
	if len(g.Players) == 0 {
		return models.Game{}, Errorf(KindInternal, "game %s has no players", g.GameID)
	}

	pack, err := s.packs.FetchCardPack(ctx, g.CardPack)
	if err != nil {
		return models.Game{}, err
	}

	expected := g.TurnSequence
	shuffle.Slice(s.rng, g.Players)
	s.dealHands(&g, pack)

	first := g.Players[0]
	g.CurrentTurn = &models.PlayerRef{UID: first.UID, DisplayName: first.DisplayName}
	g.Status = models.StatusInProgress
	g.TurnSequence++

	if err := s.games.SaveGame(ctx, g, expected); err != nil {
		return models.Game{}, err
	}

	s.log.WithFields(logrus.Fields{
		"gameId":  g.GameID,
		"players": len(g.Players),
		"first":   first.UID,
	}).Info("game started")

	s.notifyExcept(g, g.Host.UID,
		fmt.Sprintf("%s has started!", g.DisplayName),
		"Go get playing!")
	return g, nil
}

// dealHands gives every player an independent draw: a copy of the pack's
// cards is shuffled per player and the first cardAmount kept. Hands may
// overlap across players since the pack itself is never consumed. A
// cardAmount larger than the pack clamps to the pack size.
func (s *Service) dealHands(g *models.Game, pack models.CardPack) {
	n := g.CardAmount
	if n > len(pack.Cards) {
		n = len(pack.Cards)
	}
	for i := range g.Players {
		deck := make([]models.GameCard, len(pack.Cards))
		copy(deck, pack.Cards)
		shuffle.Slice(s.rng, deck)
		g.Players[i].Cards = deck[:n:n]
	}
}

// PlayCard removes one card from the acting player's hand and advances the
// turn, wrapping from the last player back to the first. If the next player
// in order already has an empty hand the game ends instead: status flips to
// Over, currentTurn is left alone, and no turn notification goes out.
func (s *Service) PlayCard(ctx context.Context, req PlayCardRequest) (PlayCardResult, error) {
	if req.GameID == uuid.Nil || req.CardID == nil || req.TargetUID == uuid.Nil {
		return PlayCardResult{}, Errorf(KindInvalidArgument, "missing argument for playCard")
	}
	if req.ActorUID == uuid.Nil {
		return PlayCardResult{}, Errorf(KindInvalidArgument, "playCard requires an authenticated caller")
	}

	g, err := s.games.FetchGame(ctx, req.GameID)
	if err != nil {
		return PlayCardResult{}, err
	}
	if g.Status != models.StatusInProgress {
		return PlayCardResult{}, Errorf(KindFailedPrecondition, "game %s is not in progress", g.GameID)
	}

	actorIdx := g.PlayerIndex(req.ActorUID)
	targetIdx := g.PlayerIndex(req.TargetUID)
	if actorIdx < 0 || targetIdx < 0 {
		return PlayCardResult{}, Errorf(KindInternal, "cannot find player with id in game")
	}
	actor := &g.Players[actorIdx]

	cardIdx := -1
	for i := range actor.Cards {
		if actor.Cards[i].ID == *req.CardID {
			cardIdx = i
			break
		}
	}
	if cardIdx < 0 {
		return PlayCardResult{}, Errorf(KindInternal, "cannot find card %d belonging to player", *req.CardID)
	}

	// Remove exactly one copy, preserving the rest of the hand's order.
	actor.Cards = append(actor.Cards[:cardIdx:cardIdx], actor.Cards[cardIdx+1:]...)

	nextIdx := (actorIdx + 1) % len(g.Players)
	next := g.Players[nextIdx]
	expected := g.TurnSequence
	g.TurnSequence++

	if len(next.Cards) == 0 {
		// Turn order would hand play to an exhausted player: everyone has
		// now played out the round, so the game is over.
		g.Status = models.StatusOver
		if err := s.games.SaveGame(ctx, g, expected); err != nil {
			return PlayCardResult{}, err
		}
		s.log.WithField("gameId", g.GameID).Info("game over")
		return PlayCardResult{GameOver: true}, nil
	}

	g.CurrentTurn = &models.PlayerRef{UID: next.UID, DisplayName: next.DisplayName}
	if err := s.games.SaveGame(ctx, g, expected); err != nil {
		return PlayCardResult{}, err
	}

	s.notifyExcept(g, actor.UID,
		fmt.Sprintf("Something happened in %s", g.DisplayName),
		fmt.Sprintf("%s just went! It's %s's turn.", actor.DisplayName, next.DisplayName))

	return PlayCardResult{NextPlayer: g.CurrentTurn}, nil
}

// Get re-reads the persisted game record. This is the only resume mechanism
// the service offers.
func (s *Service) Get(ctx context.Context, gameID uuid.UUID) (models.Game, error) {
	if gameID == uuid.Nil {
		return models.Game{}, Errorf(KindInvalidArgument, "missing argument for getGame")
	}
	return s.games.FetchGame(ctx, gameID)
}

// notifyExcept addresses every player in the game except one. Dispatch is
// fire and forget; the notifier owns its own errors.
func (s *Service) notifyExcept(g models.Game, exclude uuid.UUID, title, body string) {
	recipients := make([]uuid.UUID, 0, len(g.PlayerIDs))
	for _, id := range g.PlayerIDs {
		if id != exclude {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}
	s.notifier.Send(recipients, title, body)
}

func (s *Service) newJoinCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = joinCodeAlphabet[s.rng.Intn(len(joinCodeAlphabet))]
	}
	return string(b)
}
