// Package state defines the Player and Game projections materialized by
// folding the commit log.
package state

import "github.com/louisbranch/continental/internal/game/board"

// PlayerStatus is the lifecycle status of a player.
type PlayerStatus string

const (
	// PlayerDeleted marks a soft-deleted player. Deleted players stay in
	// the projection because other entities may still hold their token.
	PlayerDeleted PlayerStatus = "deleted"
	// PlayerNew marks a freshly registered player.
	PlayerNew PlayerStatus = "new"
	// PlayerReady marks a player seated in a game.
	PlayerReady PlayerStatus = "ready"
	// PlayerDefeated marks a player eliminated from a game.
	PlayerDefeated PlayerStatus = "defeated"
	// PlayerFinished marks a player whose game has concluded.
	PlayerFinished PlayerStatus = "finished"
)

// GameStatus is the lifecycle status of a game.
type GameStatus string

const (
	// GameDeleted marks a soft-deleted game.
	GameDeleted GameStatus = "deleted"
	// GameOpen marks a game accepting players.
	GameOpen GameStatus = "open"
	// GameStarted marks a game in setup or play.
	GameStarted GameStatus = "started"
	// GameFinished marks a concluded game.
	GameFinished GameStatus = "finished"
)

// Game rounds encode the stage: opened, setup in progress, gameplay.
const (
	// RoundOpened is the round value of a game that has not started.
	RoundOpened = -1
	// RoundSetup is the round value during the claim-and-place setup phase.
	RoundSetup = 0
)

// Player is the folded view of one player.
type Player struct {
	Token         string
	Name          string
	Reinforcement int
	Status        PlayerStatus
	Joined        string
	Selected      string
	Holdings      map[string]int
	Cards         map[string]board.Card
	SessionID     string
}

// Holds reports whether the player currently owns the territory.
func (p *Player) Holds(territory string) bool {
	_, ok := p.Holdings[territory]
	return ok
}

// HoldingsSet returns the holdings as a name set for rules evaluation.
func (p *Player) HoldingsSet() map[string]bool {
	set := make(map[string]bool, len(p.Holdings))
	for name := range p.Holdings {
		set[name] = true
	}
	return set
}

// Battle records the dice of the most recent battle for audit display.
type Battle struct {
	RedDice   []int
	WhiteDice []int
}

// Game is the folded view of one game.
type Game struct {
	Token    string
	Name     string
	Host     string
	Round    int
	Turns    int
	Redeemed int
	Status   GameStatus
	Players  []string
	Cards    []board.Card
	Selected string
	// ConqueredTurn marks that the current turn produced a conquest, which
	// earns a card draw when the turn ends.
	ConqueredTurn bool
	LastBattle    *Battle
}

// Started reports whether setup or gameplay has begun.
func (g *Game) Started() bool {
	return g.Round >= RoundSetup
}

// CurrentPlayer returns the token of the player whose move is legal, or
// empty before the game starts.
func (g *Game) CurrentPlayer() string {
	if !g.Started() || len(g.Players) == 0 {
		return ""
	}
	return g.Players[g.Turns%len(g.Players)]
}

// State is the full projection folded from a channel's commit history.
type State struct {
	Players map[string]*Player
	Games   map[string]*Game
}

// NewState returns an empty projection.
func NewState() *State {
	return &State{
		Players: make(map[string]*Player),
		Games:   make(map[string]*Game),
	}
}

// PlayerByName returns the non-deleted player with the given name.
func (s *State) PlayerByName(name string) (*Player, bool) {
	for _, p := range s.Players {
		if p.Status != PlayerDeleted && p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// GameByName returns the non-deleted game with the given name.
func (s *State) GameByName(name string) (*Game, bool) {
	for _, g := range s.Games {
		if g.Status != GameDeleted && g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// TerritoryOwner returns the player holding a territory within a game.
func (s *State) TerritoryOwner(game *Game, territory string) (*Player, bool) {
	for _, token := range game.Players {
		p, ok := s.Players[token]
		if !ok {
			continue
		}
		if p.Holds(territory) {
			return p, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the projection so readers never alias the
// fold's working state.
func (s *State) Clone() *State {
	clone := NewState()
	for token, p := range s.Players {
		cp := *p
		cp.Holdings = make(map[string]int, len(p.Holdings))
		for name, troops := range p.Holdings {
			cp.Holdings[name] = troops
		}
		cp.Cards = make(map[string]board.Card, len(p.Cards))
		for name, card := range p.Cards {
			cp.Cards[name] = card
		}
		clone.Players[token] = &cp
	}
	for token, g := range s.Games {
		cg := *g
		cg.Players = append([]string(nil), g.Players...)
		cg.Cards = append([]board.Card(nil), g.Cards...)
		if g.LastBattle != nil {
			battle := Battle{
				RedDice:   append([]int(nil), g.LastBattle.RedDice...),
				WhiteDice: append([]int(nil), g.LastBattle.WhiteDice...),
			}
			cg.LastBattle = &battle
		}
		clone.Games[token] = &cg
	}
	return clone
}
