package reducer

import (
	"strings"

	"github.com/louisbranch/continental/internal/game/board"
	"github.com/louisbranch/continental/internal/game/commit"
	"github.com/louisbranch/continental/internal/game/event"
	"github.com/louisbranch/continental/internal/game/rules"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

func (f *folder) applyCardsRedeemed(c commit.Commit, depth int, p event.CardsRedeemed) {
	player, game, ok := f.turnContext(c, p.EventType(), p.PlayerToken, p.GameToken)
	if !ok {
		return
	}
	if len(p.CardNames) != 3 {
		f.errorf(c, p.EventType(), apperrors.CodeCardsWrongCount, "redemption requires exactly 3 cards, got %d", len(p.CardNames))
		return
	}

	cards := make([]board.Card, 0, 3)
	for _, name := range p.CardNames {
		card, owned := player.Cards[name]
		if !owned {
			f.errorf(c, p.EventType(), apperrors.CodeCardsNotOwned, "%s does not hold card %s", player.Name, name)
			return
		}
		cards = append(cards, card)
	}
	if !rules.IsRedeemable(cards) {
		f.errorf(c, p.EventType(), apperrors.CodeCardsNotRedeemable, "cards %s are not redeemable", strings.Join(p.CardNames, ", "))
		return
	}

	troops := rules.RedeemReinforcement(game.Redeemed)
	game.Redeemed++
	player.Reinforcement += troops
	f.message(c, p.EventType(), "%s redeemed cards for %d troops", player.Name, troops)

	// Redeemed cards go back to the bottom of the deck.
	returns := make([]event.Payload, 0, 3)
	for _, card := range cards {
		delete(player.Cards, card.Name)
		returns = append(returns, event.CardReturned{GameToken: game.Token, CardName: card.Name})
	}
	f.expand(c, depth, returns...)
}

func (f *folder) applyCardReturned(c commit.Commit, p event.CardReturned) {
	game, ok := f.activeGame(c, p.EventType(), p.GameToken)
	if !ok {
		return
	}
	card, ok := board.CardByName(p.CardName)
	if !ok {
		f.errorf(c, p.EventType(), apperrors.CodeCardsNotOwned, "unknown card %s", p.CardName)
		return
	}
	game.Cards = append(game.Cards, card)
}
