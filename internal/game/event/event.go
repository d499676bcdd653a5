// Package event defines the closed set of facts the reducer folds over.
// An event is never mutated after creation; new facts are new events.
package event

// Type identifies the type of a game event.
type Type string

// Player lifecycle events.
const (
	// TypePlayerRegistered records a player joining the lobby.
	TypePlayerRegistered Type = "player.registered"
	// TypePlayerLeft records a player leaving the lobby.
	TypePlayerLeft Type = "player.left"
)

// Game lifecycle events.
const (
	// TypeGameOpened records a player opening a new game room.
	TypeGameOpened Type = "game.opened"
	// TypeGameJoined records a player joining an open game.
	TypeGameJoined Type = "game.joined"
	// TypeGameQuit records a player quitting a game before it starts.
	TypeGameQuit Type = "game.quit"
	// TypeGameStarted records the host starting the game.
	TypeGameStarted Type = "game.started"
	// TypeSetupFinished records the end of the claim-and-place setup phase.
	TypeSetupFinished Type = "game.setup_finished"
)

// Move events (gameplay actions inside a started game).
// Events represent facts that have occurred, not commands/requests.
const (
	// TypeMoveMade records a raw click on a territory; the reducer resolves
	// it into a placement, a selection, or an attack by game stage.
	TypeMoveMade Type = "move.made"
	// TypeTroopPlaced records one or more troops placed on a territory.
	TypeTroopPlaced Type = "move.troop_placed"
	// TypeTerritoryAttacked records a battle resolution between territories.
	TypeTerritoryAttacked Type = "move.territory_attacked"
	// TypeTerritoryConquered records ownership transfer after a battle.
	TypeTerritoryConquered Type = "move.territory_conquered"
	// TypeTurnEnded records the end of a player's turn.
	TypeTurnEnded Type = "move.turn_ended"
	// TypePositionFortified records troops moved between owned territories.
	TypePositionFortified Type = "move.position_fortified"
)

// Card events.
const (
	// TypeCardsRedeemed records a player surrendering a redeemable set.
	TypeCardsRedeemed Type = "card.redeemed"
	// TypeCardReturned records a card returned to the game deck.
	TypeCardReturned Type = "card.returned"
)

var validTypes = map[Type]struct{}{
	TypePlayerRegistered:   {},
	TypePlayerLeft:         {},
	TypeGameOpened:         {},
	TypeGameJoined:         {},
	TypeGameQuit:           {},
	TypeGameStarted:        {},
	TypeSetupFinished:      {},
	TypeMoveMade:           {},
	TypeTroopPlaced:        {},
	TypeTerritoryAttacked:  {},
	TypeTerritoryConquered: {},
	TypeTurnEnded:          {},
	TypePositionFortified:  {},
	TypeCardsRedeemed:      {},
	TypeCardReturned:       {},
}

// IsValid reports whether the type belongs to the closed event set.
func (t Type) IsValid() bool {
	_, ok := validTypes[t]
	return ok
}

// Domain returns the domain prefix of the event type (e.g. "player", "move").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}

// Event is one typed fact inside a commit.
type Event struct {
	Type    Type
	Payload Payload
}

// New builds an event, pairing a type with its payload.
func New(payload Payload) Event {
	return Event{Type: payload.EventType(), Payload: payload}
}
