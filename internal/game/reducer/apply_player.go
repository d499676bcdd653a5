package reducer

import (
	"strings"

	"github.com/louisbranch/continental/internal/game/board"
	"github.com/louisbranch/continental/internal/game/commit"
	"github.com/louisbranch/continental/internal/game/event"
	"github.com/louisbranch/continental/internal/game/state"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

func (f *folder) applyPlayerRegistered(c commit.Commit, index int, p event.PlayerRegistered) {
	name := strings.TrimSpace(p.PlayerName)
	if name == "" {
		f.errorf(c, p.EventType(), apperrors.CodePlayerNameEmpty, "player name is required")
		return
	}
	if _, ok := f.state.PlayerByName(name); ok {
		f.errorf(c, p.EventType(), apperrors.CodePlayerNameTaken, "%s is already registered", name)
		return
	}

	token := entityToken(c, index)
	f.state.Players[token] = &state.Player{
		Token:     token,
		Name:      name,
		Status:    state.PlayerNew,
		Holdings:  make(map[string]int),
		Cards:     make(map[string]board.Card),
		SessionID: c.Session,
	}
	f.message(c, p.EventType(), "%s joined", name)
}

func (f *folder) applyPlayerLeft(c commit.Commit, p event.PlayerLeft) {
	player, ok := f.state.Players[p.PlayerToken]
	if !ok || player.Status == state.PlayerDeleted {
		f.errorf(c, p.EventType(), apperrors.CodePlayerNotFound, "player %s not found", p.PlayerToken)
		return
	}

	if player.Joined != "" {
		if game, ok := f.state.Games[player.Joined]; ok && !game.Started() {
			removeGamePlayer(game, player.Token)
		}
	}
	player.Joined = ""
	player.Status = state.PlayerDeleted
	f.message(c, p.EventType(), "%s left", player.Name)
}

func removeGamePlayer(game *state.Game, token string) {
	players := game.Players[:0]
	for _, t := range game.Players {
		if t != token {
			players = append(players, t)
		}
	}
	game.Players = players
}
