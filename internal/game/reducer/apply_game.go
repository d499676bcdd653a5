package reducer

import (
	"strings"

	"github.com/louisbranch/continental/internal/game/commit"
	"github.com/louisbranch/continental/internal/game/event"
	"github.com/louisbranch/continental/internal/game/rules"
	"github.com/louisbranch/continental/internal/game/state"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

func (f *folder) applyGameOpened(c commit.Commit, index int, p event.GameOpened) {
	name := strings.TrimSpace(p.GameName)
	player, ok := f.activePlayer(c, p.EventType(), p.PlayerToken)
	if !ok {
		return
	}
	if player.Joined != "" {
		f.errorf(c, p.EventType(), apperrors.CodePlayerAlreadyInGame, "%s is already in a game", player.Name)
		return
	}
	if _, ok := f.state.GameByName(name); ok {
		f.errorf(c, p.EventType(), apperrors.CodeGameNameTaken, "game %s already exists", name)
		return
	}

	token := entityToken(c, index)
	f.state.Games[token] = &state.Game{
		Token:   token,
		Name:    name,
		Host:    player.Token,
		Round:   state.RoundOpened,
		Status:  state.GameOpen,
		Players: []string{player.Token},
	}
	player.Joined = token
	player.Status = state.PlayerReady
	f.message(c, p.EventType(), "%s opened game %s", player.Name, name)
}

func (f *folder) applyGameJoined(c commit.Commit, p event.GameJoined) {
	player, ok := f.activePlayer(c, p.EventType(), p.PlayerToken)
	if !ok {
		return
	}
	game, ok := f.activeGame(c, p.EventType(), p.GameToken)
	if !ok {
		return
	}
	if game.Host == player.Token {
		f.errorf(c, p.EventType(), apperrors.CodeGameOwnGame, "%s cannot join your own game", player.Name)
		return
	}
	if game.Started() {
		f.errorf(c, p.EventType(), apperrors.CodeGameAlreadyStarted, "game %s has already started", game.Name)
		return
	}
	if player.Joined != "" {
		f.errorf(c, p.EventType(), apperrors.CodePlayerAlreadyInGame, "%s is already in a game", player.Name)
		return
	}
	if len(game.Players) >= rules.MaxPlayersPerGame {
		f.errorf(c, p.EventType(), apperrors.CodeGameFull, "game %s is full", game.Name)
		return
	}

	game.Players = append(game.Players, player.Token)
	player.Joined = game.Token
	player.Status = state.PlayerReady
	f.message(c, p.EventType(), "%s joined game %s", player.Name, game.Name)
}

func (f *folder) applyGameQuit(c commit.Commit, p event.GameQuit) {
	player, ok := f.activePlayer(c, p.EventType(), p.PlayerToken)
	if !ok {
		return
	}
	game, ok := f.activeGame(c, p.EventType(), p.GameToken)
	if !ok {
		return
	}
	if player.Joined != game.Token {
		f.errorf(c, p.EventType(), apperrors.CodePlayerNotFound, "%s is not in game %s", player.Name, game.Name)
		return
	}
	if game.Started() {
		f.errorf(c, p.EventType(), apperrors.CodeStageDisallowed, "game %s has already started", game.Name)
		return
	}

	removeGamePlayer(game, player.Token)
	player.Joined = ""
	player.Status = state.PlayerNew

	// A host quitting an unstarted game dissolves it and unseats everyone.
	if game.Host == player.Token {
		for _, token := range game.Players {
			if member, ok := f.state.Players[token]; ok {
				member.Joined = ""
				member.Status = state.PlayerNew
			}
		}
		game.Players = nil
		game.Status = state.GameDeleted
	}
	f.message(c, p.EventType(), "%s quit game %s", player.Name, game.Name)
}

func (f *folder) applyGameStarted(c commit.Commit, depth int, p event.GameStarted) {
	player, ok := f.activePlayer(c, p.EventType(), p.PlayerToken)
	if !ok {
		return
	}
	game, ok := f.activeGame(c, p.EventType(), p.GameToken)
	if !ok {
		return
	}
	if game.Host != player.Token {
		f.errorf(c, p.EventType(), apperrors.CodeGameNotHost, "only the host can start game %s", game.Name)
		return
	}
	if game.Started() {
		f.errorf(c, p.EventType(), apperrors.CodeGameAlreadyStarted, "game %s has already started", game.Name)
		return
	}
	if len(game.Players) < rules.MinPlayersPerGame {
		f.errorf(c, p.EventType(), apperrors.CodeGameNotEnoughPlayers,
			"game %s needs at least %d players", game.Name, rules.MinPlayersPerGame)
		return
	}

	// Turn order is shuffled with the commit-seeded generator so replays
	// reproduce the same order.
	f.rng.Shuffle(len(game.Players), func(i, j int) {
		game.Players[i], game.Players[j] = game.Players[j], game.Players[i]
	})

	opening := rules.InitialTroops(len(game.Players))
	for _, token := range game.Players {
		member, ok := f.state.Players[token]
		if !ok {
			continue
		}
		member.Reinforcement = opening - len(member.Holdings)
		member.Status = state.PlayerReady
	}

	game.Round = state.RoundSetup
	game.Turns = 0
	game.Status = state.GameStarted
	f.message(c, p.EventType(), "game %s started with %d players", game.Name, len(game.Players))
}

func (f *folder) applySetupFinished(c commit.Commit, p event.SetupFinished) {
	game, ok := f.activeGame(c, p.EventType(), p.GameToken)
	if !ok {
		return
	}
	if game.Round != state.RoundSetup {
		f.errorf(c, p.EventType(), apperrors.CodeStageDisallowed, "game %s is not in setup", game.Name)
		return
	}

	game.Round = 1
	game.Turns = 0
	game.Selected = ""
	f.grantTurnReinforcement(game)
	f.message(c, p.EventType(), "game %s setup finished", game.Name)
}

// grantTurnReinforcement credits the current player with the per-turn
// reinforcement: the holdings formula plus fully-held continent bonuses.
func (f *folder) grantTurnReinforcement(game *state.Game) {
	player, ok := f.state.Players[game.CurrentPlayer()]
	if !ok {
		return
	}
	player.Reinforcement += rules.BasicReinforcement(len(player.Holdings)) +
		rules.ContinentReinforcement(player.HoldingsSet())
}

func (f *folder) activePlayer(c commit.Commit, name event.Type, token string) (*state.Player, bool) {
	player, ok := f.state.Players[token]
	if !ok || player.Status == state.PlayerDeleted {
		f.errorf(c, name, apperrors.CodePlayerNotFound, "player %s not found", token)
		return nil, false
	}
	return player, true
}

func (f *folder) activeGame(c commit.Commit, name event.Type, token string) (*state.Game, bool) {
	game, ok := f.state.Games[token]
	if !ok || game.Status == state.GameDeleted {
		f.errorf(c, name, apperrors.CodeGameNotFound, "game %s not found", token)
		return nil, false
	}
	return game, true
}
