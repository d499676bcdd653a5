package event

// Payload is the typed body of an event. The set of implementations is
// closed: the reducer dispatches on the concrete type and treats anything
// outside this file as a corrupt entry.
type Payload interface {
	// EventType returns the discriminant the payload serializes under.
	EventType() Type
}

// PlayerRegistered announces a new lobby player.
type PlayerRegistered struct {
	PlayerName string `json:"playerName"`
}

// PlayerLeft announces a lobby player leaving.
type PlayerLeft struct {
	PlayerToken string `json:"playerToken"`
}

// GameOpened announces a new game room hosted by a player.
type GameOpened struct {
	PlayerToken string `json:"playerToken"`
	GameName    string `json:"gameName"`
}

// GameJoined announces a player joining an open game.
type GameJoined struct {
	PlayerToken string `json:"playerToken"`
	GameToken   string `json:"gameToken"`
}

// GameQuit announces a player quitting an open game.
type GameQuit struct {
	PlayerToken string `json:"playerToken"`
	GameToken   string `json:"gameToken"`
}

// GameStarted announces the host starting the game.
type GameStarted struct {
	PlayerToken string `json:"playerToken"`
	GameToken   string `json:"gameToken"`
}

// SetupFinished announces the end of the setup phase.
type SetupFinished struct {
	GameToken string `json:"gameToken"`
}

// MoveMade records a territory click. Flag carries a client-side modifier
// (place remaining reinforcement in one move).
type MoveMade struct {
	PlayerToken   string `json:"playerToken"`
	GameToken     string `json:"gameToken"`
	TerritoryName string `json:"territoryName"`
	Flag          bool   `json:"flag"`
}

// TroopPlaced records troops placed on a territory.
type TroopPlaced struct {
	PlayerToken   string `json:"playerToken"`
	GameToken     string `json:"gameToken"`
	TerritoryName string `json:"territoryName"`
	Troops        int    `json:"troops"`
}

// TerritoryAttacked records a resolved battle round, dice included for
// audit and replay.
type TerritoryAttacked struct {
	PlayerToken       string `json:"playerToken"`
	GameToken         string `json:"gameToken"`
	AttackerTerritory string `json:"attackerTerritory"`
	DefenderTerritory string `json:"defenderTerritory"`
	AttackerLoss      int    `json:"attackerLoss"`
	DefenderLoss      int    `json:"defenderLoss"`
	RedDice           []int  `json:"redDice"`
	WhiteDice         []int  `json:"whiteDice"`
}

// TerritoryConquered records ownership transfer of a defeated territory.
type TerritoryConquered struct {
	PlayerToken       string `json:"playerToken"`
	GameToken         string `json:"gameToken"`
	AttackerTerritory string `json:"attackerTerritory"`
	DefenderTerritory string `json:"defenderTerritory"`
}

// TurnEnded records a player ending their turn.
type TurnEnded struct {
	PlayerToken string `json:"playerToken"`
	GameToken   string `json:"gameToken"`
}

// PositionFortified records troops moved between two owned territories.
type PositionFortified struct {
	PlayerToken   string `json:"playerToken"`
	GameToken     string `json:"gameToken"`
	FromTerritory string `json:"fromTerritory"`
	ToTerritory   string `json:"toTerritory"`
	Troops        int    `json:"troops"`
}

// CardsRedeemed records a player surrendering three cards.
type CardsRedeemed struct {
	PlayerToken string   `json:"playerToken"`
	GameToken   string   `json:"gameToken"`
	CardNames   []string `json:"cardNames"`
}

// CardReturned records a card returned to the game deck.
type CardReturned struct {
	GameToken string `json:"gameToken"`
	CardName  string `json:"cardName"`
}

// EventType implements Payload.
func (PlayerRegistered) EventType() Type   { return TypePlayerRegistered }
func (PlayerLeft) EventType() Type         { return TypePlayerLeft }
func (GameOpened) EventType() Type         { return TypeGameOpened }
func (GameJoined) EventType() Type         { return TypeGameJoined }
func (GameQuit) EventType() Type           { return TypeGameQuit }
func (GameStarted) EventType() Type        { return TypeGameStarted }
func (SetupFinished) EventType() Type      { return TypeSetupFinished }
func (MoveMade) EventType() Type           { return TypeMoveMade }
func (TroopPlaced) EventType() Type        { return TypeTroopPlaced }
func (TerritoryAttacked) EventType() Type  { return TypeTerritoryAttacked }
func (TerritoryConquered) EventType() Type { return TypeTerritoryConquered }
func (TurnEnded) EventType() Type          { return TypeTurnEnded }
func (PositionFortified) EventType() Type  { return TypePositionFortified }
func (CardsRedeemed) EventType() Type      { return TypeCardsRedeemed }
func (CardReturned) EventType() Type       { return TypeCardReturned }
