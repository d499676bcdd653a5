package reducer

import (
	"github.com/louisbranch/continental/internal/game/board"
	"github.com/louisbranch/continental/internal/game/commit"
	"github.com/louisbranch/continental/internal/game/event"
	"github.com/louisbranch/continental/internal/game/rules"
	"github.com/louisbranch/continental/internal/game/state"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

// applyMoveMade resolves a raw territory click into a placement, a
// selection, or an attack depending on the game stage.
func (f *folder) applyMoveMade(c commit.Commit, depth int, p event.MoveMade) {
	player, game, ok := f.turnContext(c, p.EventType(), p.PlayerToken, p.GameToken)
	if !ok {
		return
	}
	if _, ok := board.TerritoryByName(p.TerritoryName); !ok {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryUnknown, "unknown territory %s", p.TerritoryName)
		return
	}

	if game.Round == state.RoundSetup {
		f.moveMadeSetup(c, depth, p, player, game)
		return
	}
	f.moveMadeGameplay(c, depth, p, player, game)
}

// moveMadeSetup handles the claim-and-place phase: unowned territories are
// claimed, owned ones reinforced once every territory is claimed.
func (f *folder) moveMadeSetup(c commit.Commit, depth int, p event.MoveMade, player *state.Player, game *state.Game) {
	if player.Reinforcement <= 0 {
		f.errorf(c, p.EventType(), apperrors.CodeReinforcementExhausted, "%s has no reinforcement left", player.Name)
		return
	}

	owner, claimed := f.state.TerritoryOwner(game, p.TerritoryName)
	switch {
	case !claimed:
		f.expand(c, depth, event.TroopPlaced{
			PlayerToken:   player.Token,
			GameToken:     game.Token,
			TerritoryName: p.TerritoryName,
			Troops:        1,
		})
	case owner.Token != player.Token:
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotOwned, "%s is held by %s", p.TerritoryName, owner.Name)
	case f.unclaimedRemain(game):
		f.errorf(c, p.EventType(), apperrors.CodeStageDisallowed, "unclaimed territories remain")
	default:
		f.expand(c, depth, event.TroopPlaced{
			PlayerToken:   player.Token,
			GameToken:     game.Token,
			TerritoryName: p.TerritoryName,
			Troops:        1,
		})
	}
}

// moveMadeGameplay handles placement while reinforcement remains, then
// select-own / attack-adjacent-enemy semantics.
func (f *folder) moveMadeGameplay(c commit.Commit, depth int, p event.MoveMade, player *state.Player, game *state.Game) {
	if player.Reinforcement > 0 {
		if !player.Holds(p.TerritoryName) {
			f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotOwned, "%s does not hold %s", player.Name, p.TerritoryName)
			return
		}
		troops := 1
		if p.Flag {
			troops = player.Reinforcement
		}
		f.expand(c, depth, event.TroopPlaced{
			PlayerToken:   player.Token,
			GameToken:     game.Token,
			TerritoryName: p.TerritoryName,
			Troops:        troops,
		})
		return
	}

	if player.Holds(p.TerritoryName) {
		game.Selected = p.TerritoryName
		player.Selected = p.TerritoryName
		f.message(c, p.EventType(), "%s selected %s", player.Name, p.TerritoryName)
		return
	}

	if game.Selected == "" {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotOwned, "%s must select an owned territory first", player.Name)
		return
	}
	if !board.AreAdjacent(game.Selected, p.TerritoryName) {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotAdjacent, "%s is not adjacent to %s", p.TerritoryName, game.Selected)
		return
	}

	attackerTroops := player.Holdings[game.Selected] - 1
	if attackerTroops < 1 {
		f.errorf(c, p.EventType(), apperrors.CodeBattleInvalidLoss, "%s cannot attack from %s with a single troop", player.Name, game.Selected)
		return
	}
	owner, ok := f.state.TerritoryOwner(game, p.TerritoryName)
	if !ok {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotOwned, "%s is not held by anyone", p.TerritoryName)
		return
	}

	battle := rules.DoBattle(f.rng, attackerTroops, owner.Holdings[p.TerritoryName])
	f.expand(c, depth, event.TerritoryAttacked{
		PlayerToken:       player.Token,
		GameToken:         game.Token,
		AttackerTerritory: game.Selected,
		DefenderTerritory: p.TerritoryName,
		AttackerLoss:      battle.AttackerLoss,
		DefenderLoss:      battle.DefenderLoss,
		RedDice:           battle.RedDice,
		WhiteDice:         battle.WhiteDice,
	})
}

func (f *folder) applyTroopPlaced(c commit.Commit, depth int, p event.TroopPlaced) {
	player, game, ok := f.turnContext(c, p.EventType(), p.PlayerToken, p.GameToken)
	if !ok {
		return
	}
	if _, ok := board.TerritoryByName(p.TerritoryName); !ok {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryUnknown, "unknown territory %s", p.TerritoryName)
		return
	}
	if p.Troops <= 0 {
		f.errorf(c, p.EventType(), apperrors.CodeReinforcementExhausted, "placement requires at least one troop")
		return
	}
	if player.Reinforcement < p.Troops {
		f.errorf(c, p.EventType(), apperrors.CodeReinforcementExhausted,
			"%s has %d reinforcement, needs %d", player.Name, player.Reinforcement, p.Troops)
		return
	}
	if owner, claimed := f.state.TerritoryOwner(game, p.TerritoryName); claimed && owner.Token != player.Token {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotOwned, "%s is held by %s", p.TerritoryName, owner.Name)
		return
	}

	player.Holdings[p.TerritoryName] += p.Troops
	player.Reinforcement -= p.Troops
	f.message(c, p.EventType(), "%s placed %d on %s", player.Name, p.Troops, p.TerritoryName)

	if game.Round != state.RoundSetup {
		return
	}

	// Setup placements rotate the turn; once every allotment is spent the
	// setup phase ends.
	game.Turns = (game.Turns + 1) % len(game.Players)
	for _, token := range game.Players {
		if member, ok := f.state.Players[token]; ok && member.Reinforcement > 0 {
			return
		}
	}
	f.expand(c, depth, event.SetupFinished{GameToken: game.Token})
}

func (f *folder) applyTerritoryAttacked(c commit.Commit, depth int, p event.TerritoryAttacked) {
	player, game, ok := f.turnContext(c, p.EventType(), p.PlayerToken, p.GameToken)
	if !ok {
		return
	}
	if p.AttackerLoss < 0 || p.DefenderLoss < 0 || p.AttackerLoss+p.DefenderLoss == 0 {
		f.errorf(c, p.EventType(), apperrors.CodeBattleInvalidLoss,
			"battle losses %d/%d are invalid", p.AttackerLoss, p.DefenderLoss)
		return
	}
	if !player.Holds(p.AttackerTerritory) {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotOwned, "%s does not hold %s", player.Name, p.AttackerTerritory)
		return
	}
	defender, ok := f.state.TerritoryOwner(game, p.DefenderTerritory)
	if !ok || defender.Token == player.Token {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotOwned, "%s is not an enemy territory", p.DefenderTerritory)
		return
	}
	if p.AttackerLoss >= player.Holdings[p.AttackerTerritory] {
		f.errorf(c, p.EventType(), apperrors.CodeBattleInvalidLoss,
			"attacker loss %d exceeds troops on %s", p.AttackerLoss, p.AttackerTerritory)
		return
	}
	if p.DefenderLoss > defender.Holdings[p.DefenderTerritory] {
		f.errorf(c, p.EventType(), apperrors.CodeBattleInvalidLoss,
			"defender loss %d exceeds troops on %s", p.DefenderLoss, p.DefenderTerritory)
		return
	}

	player.Holdings[p.AttackerTerritory] -= p.AttackerLoss
	defender.Holdings[p.DefenderTerritory] -= p.DefenderLoss
	game.LastBattle = &state.Battle{
		RedDice:   append([]int(nil), p.RedDice...),
		WhiteDice: append([]int(nil), p.WhiteDice...),
	}
	f.message(c, p.EventType(), "%s attacked %s from %s, losses %d/%d",
		player.Name, p.DefenderTerritory, p.AttackerTerritory, p.AttackerLoss, p.DefenderLoss)

	if defender.Holdings[p.DefenderTerritory] <= 0 {
		f.expand(c, depth, event.TerritoryConquered{
			PlayerToken:       player.Token,
			GameToken:         game.Token,
			AttackerTerritory: p.AttackerTerritory,
			DefenderTerritory: p.DefenderTerritory,
		})
	}
}

func (f *folder) applyTerritoryConquered(c commit.Commit, p event.TerritoryConquered) {
	player, game, ok := f.turnContext(c, p.EventType(), p.PlayerToken, p.GameToken)
	if !ok {
		return
	}
	if player.Holdings[p.AttackerTerritory] < 2 {
		f.errorf(c, p.EventType(), apperrors.CodeBattleInvalidLoss,
			"conquest from %s requires at least two troops", p.AttackerTerritory)
		return
	}
	defender, ok := f.state.TerritoryOwner(game, p.DefenderTerritory)
	if !ok || defender.Token == player.Token {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotOwned, "%s is not an enemy territory", p.DefenderTerritory)
		return
	}

	// The conquering force moves in, leaving one troop behind.
	delete(defender.Holdings, p.DefenderTerritory)
	player.Holdings[p.DefenderTerritory] = player.Holdings[p.AttackerTerritory] - 1
	player.Holdings[p.AttackerTerritory] = 1
	game.Selected = p.DefenderTerritory
	player.Selected = p.DefenderTerritory
	game.ConqueredTurn = true
	f.message(c, p.EventType(), "%s conquered %s", player.Name, p.DefenderTerritory)

	if len(defender.Holdings) == 0 {
		defender.Status = state.PlayerDefeated
		f.message(c, p.EventType(), "%s was defeated", defender.Name)
	}
	if len(player.Holdings) == len(board.Territories()) {
		player.Status = state.PlayerFinished
		game.Status = state.GameFinished
		f.message(c, p.EventType(), "%s won game %s", player.Name, game.Name)
	}
}

func (f *folder) applyTurnEnded(c commit.Commit, p event.TurnEnded) {
	player, game, ok := f.turnContext(c, p.EventType(), p.PlayerToken, p.GameToken)
	if !ok {
		return
	}
	if game.Round < 1 {
		f.errorf(c, p.EventType(), apperrors.CodeStageDisallowed, "game %s is still in setup", game.Name)
		return
	}

	// A conquest during the turn earns the top card of the deck.
	if game.ConqueredTurn && len(game.Cards) > 0 {
		card := game.Cards[0]
		game.Cards = game.Cards[1:]
		player.Cards[card.Name] = card
		f.message(c, p.EventType(), "%s drew a card", player.Name)
	}
	game.ConqueredTurn = false
	game.Selected = ""
	game.LastBattle = nil
	player.Selected = ""

	f.advanceTurn(game)
	f.grantTurnReinforcement(game)
	f.message(c, p.EventType(), "%s ended their turn", player.Name)
}

// advanceTurn moves to the next undefeated player, bumping the round when
// the order wraps.
func (f *folder) advanceTurn(game *state.Game) {
	for i := 0; i < len(game.Players); i++ {
		game.Turns++
		if game.Turns >= len(game.Players) {
			game.Turns = 0
			game.Round++
		}
		next, ok := f.state.Players[game.CurrentPlayer()]
		if ok && next.Status != state.PlayerDefeated && next.Status != state.PlayerDeleted {
			return
		}
	}
}

func (f *folder) applyPositionFortified(c commit.Commit, p event.PositionFortified) {
	player, _, ok := f.turnContext(c, p.EventType(), p.PlayerToken, p.GameToken)
	if !ok {
		return
	}
	if !player.Holds(p.FromTerritory) || !player.Holds(p.ToTerritory) {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotOwned,
			"%s must hold both %s and %s", player.Name, p.FromTerritory, p.ToTerritory)
		return
	}
	if !board.AreAdjacent(p.FromTerritory, p.ToTerritory) {
		f.errorf(c, p.EventType(), apperrors.CodeTerritoryNotAdjacent,
			"%s is not adjacent to %s", p.FromTerritory, p.ToTerritory)
		return
	}
	if p.Troops < 1 || player.Holdings[p.FromTerritory]-p.Troops < 1 {
		f.errorf(c, p.EventType(), apperrors.CodeBattleInvalidLoss,
			"cannot move %d troops from %s", p.Troops, p.FromTerritory)
		return
	}

	player.Holdings[p.FromTerritory] -= p.Troops
	player.Holdings[p.ToTerritory] += p.Troops
	f.message(c, p.EventType(), "%s fortified %s with %d troops", player.Name, p.ToTerritory, p.Troops)
}

// turnContext resolves the player and game and enforces turn order for
// events inside a started game.
func (f *folder) turnContext(c commit.Commit, name event.Type, playerToken, gameToken string) (*state.Player, *state.Game, bool) {
	player, ok := f.activePlayer(c, name, playerToken)
	if !ok {
		return nil, nil, false
	}
	game, ok := f.activeGame(c, name, gameToken)
	if !ok {
		return nil, nil, false
	}
	if !game.Started() {
		f.errorf(c, name, apperrors.CodeStageDisallowed, "game %s has not started", game.Name)
		return nil, nil, false
	}
	if game.CurrentPlayer() != player.Token {
		f.errorf(c, name, apperrors.CodeTurnOutOfOrder, "it is not %s's turn", player.Name)
		return nil, nil, false
	}
	return player, game, true
}

func (f *folder) unclaimedRemain(game *state.Game) bool {
	claimed := 0
	for _, token := range game.Players {
		if member, ok := f.state.Players[token]; ok {
			claimed += len(member.Holdings)
		}
	}
	return claimed < len(board.Territories())
}
