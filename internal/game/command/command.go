// Package command is the write surface consumed by the API layer: one
// method per player command, each building a single commit and
// submitting it to the log.
package command

import (
	"context"
	"fmt"
	"math/rand"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/continental/internal/game/board"
	"github.com/louisbranch/continental/internal/game/commit"
	"github.com/louisbranch/continental/internal/game/commitlog"
	"github.com/louisbranch/continental/internal/game/event"
	"github.com/louisbranch/continental/internal/platform/random"
)

// API submits player commands to one channel's commit log.
type API struct {
	log     commitlog.Log
	channel string
	tracer  trace.Tracer
}

// New builds a command API bound to the given channel.
func New(journal commitlog.Log, channel string) *API {
	return &API{
		log:     journal,
		channel: channel,
		tracer:  otel.Tracer("continental.command"),
	}
}

// RegisterPlayer submits a registration for the given display name. No
// player token exists yet, so no session is rotated.
func (a *API) RegisterPlayer(ctx context.Context, playerName string) (commit.Commit, error) {
	return a.submit(ctx, "RegisterPlayer", "", event.PlayerRegistered{PlayerName: playerName})
}

// PlayerLeave removes the player from the roster.
func (a *API) PlayerLeave(ctx context.Context, playerToken string) (commit.Commit, error) {
	return a.submit(ctx, "PlayerLeave", playerToken, event.PlayerLeft{PlayerToken: playerToken})
}

// OpenGame opens a new game hosted by the player.
func (a *API) OpenGame(ctx context.Context, playerToken, gameName string) (commit.Commit, error) {
	return a.submit(ctx, "OpenGame", playerToken, event.GameOpened{
		PlayerToken: playerToken,
		GameName:    gameName,
	})
}

// JoinGame seats the player in an open game.
func (a *API) JoinGame(ctx context.Context, playerToken, gameToken string) (commit.Commit, error) {
	return a.submit(ctx, "JoinGame", playerToken, event.GameJoined{
		PlayerToken: playerToken,
		GameToken:   gameToken,
	})
}

// QuitGame unseats the player from an unstarted game.
func (a *API) QuitGame(ctx context.Context, playerToken, gameToken string) (commit.Commit, error) {
	return a.submit(ctx, "QuitGame", playerToken, event.GameQuit{
		PlayerToken: playerToken,
		GameToken:   gameToken,
	})
}

// StartGame starts the game and seeds its deck: the commit carries one
// CardReturned per card in freshly shuffled order.
func (a *API) StartGame(ctx context.Context, playerToken, gameToken string) (commit.Commit, error) {
	deck := board.Deck()
	shuffled := make([]board.Card, len(deck))
	copy(shuffled, deck)
	seed, err := random.NewSeed()
	if err != nil {
		return commit.Commit{}, fmt.Errorf("shuffle deck: %w", err)
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	payloads := make([]event.Payload, 0, len(shuffled)+1)
	payloads = append(payloads, event.GameStarted{
		PlayerToken: playerToken,
		GameToken:   gameToken,
	})
	for _, card := range shuffled {
		payloads = append(payloads, event.CardReturned{
			GameToken: gameToken,
			CardName:  card.Name,
		})
	}
	return a.submit(ctx, "StartGame", playerToken, payloads...)
}

// MakeMove submits a raw territory click. The reducer resolves it into a
// claim, placement, selection, or attack by game stage. A set flag asks
// to place all remaining reinforcement at once.
func (a *API) MakeMove(ctx context.Context, playerToken, gameToken, territoryName string, flag bool) (commit.Commit, error) {
	return a.submit(ctx, "MakeMove", playerToken, event.MoveMade{
		PlayerToken:   playerToken,
		GameToken:     gameToken,
		TerritoryName: territoryName,
		Flag:          flag,
	})
}

// EndTurn closes the player's turn.
func (a *API) EndTurn(ctx context.Context, playerToken, gameToken string) (commit.Commit, error) {
	return a.submit(ctx, "EndTurn", playerToken, event.TurnEnded{
		PlayerToken: playerToken,
		GameToken:   gameToken,
	})
}

// FortifyPosition moves troops between two owned adjacent territories.
func (a *API) FortifyPosition(ctx context.Context, playerToken, gameToken, fromTerritory, toTerritory string, troops int) (commit.Commit, error) {
	return a.submit(ctx, "FortifyPosition", playerToken, event.PositionFortified{
		PlayerToken:   playerToken,
		GameToken:     gameToken,
		FromTerritory: fromTerritory,
		ToTerritory:   toTerritory,
		Troops:        troops,
	})
}

// RedeemCards trades a set of three cards for reinforcement.
func (a *API) RedeemCards(ctx context.Context, playerToken, gameToken string, cardNames []string) (commit.Commit, error) {
	return a.submit(ctx, "RedeemCards", playerToken, event.CardsRedeemed{
		PlayerToken: playerToken,
		GameToken:   gameToken,
		CardNames:   append([]string(nil), cardNames...),
	})
}

func (a *API) submit(ctx context.Context, name, playerToken string, payloads ...event.Payload) (commit.Commit, error) {
	ctx, span := a.tracer.Start(ctx, "command."+name,
		trace.WithAttributes(attribute.String("channel", a.channel)))
	defer span.End()

	events := make([]event.Event, 0, len(payloads))
	for _, p := range payloads {
		events = append(events, event.New(p))
	}
	c, err := commit.New(events...)
	if err != nil {
		return commit.Commit{}, err
	}
	stored, err := a.log.Put(ctx, a.channel, c, playerToken)
	if err != nil {
		return commit.Commit{}, fmt.Errorf("submit %s: %w", name, err)
	}
	return stored, nil
}
