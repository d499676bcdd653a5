package event

import (
	"encoding/json"
	"fmt"
)

// DecodePayload deserializes a payload for the given type. Unknown types
// fail decode so malformed log entries surface instead of folding silently.
func DecodePayload(t Type, data []byte) (Payload, error) {
	unmarshal := func(target any) error {
		if len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("decode %s payload: %w", t, err)
		}
		return nil
	}

	switch t {
	case TypePlayerRegistered:
		var p PlayerRegistered
		return p, unmarshal(&p)
	case TypePlayerLeft:
		var p PlayerLeft
		return p, unmarshal(&p)
	case TypeGameOpened:
		var p GameOpened
		return p, unmarshal(&p)
	case TypeGameJoined:
		var p GameJoined
		return p, unmarshal(&p)
	case TypeGameQuit:
		var p GameQuit
		return p, unmarshal(&p)
	case TypeGameStarted:
		var p GameStarted
		return p, unmarshal(&p)
	case TypeSetupFinished:
		var p SetupFinished
		return p, unmarshal(&p)
	case TypeMoveMade:
		var p MoveMade
		return p, unmarshal(&p)
	case TypeTroopPlaced:
		var p TroopPlaced
		return p, unmarshal(&p)
	case TypeTerritoryAttacked:
		var p TerritoryAttacked
		return p, unmarshal(&p)
	case TypeTerritoryConquered:
		var p TerritoryConquered
		return p, unmarshal(&p)
	case TypeTurnEnded:
		var p TurnEnded
		return p, unmarshal(&p)
	case TypePositionFortified:
		var p PositionFortified
		return p, unmarshal(&p)
	case TypeCardsRedeemed:
		var p CardsRedeemed
		return p, unmarshal(&p)
	case TypeCardReturned:
		var p CardReturned
		return p, unmarshal(&p)
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
}
