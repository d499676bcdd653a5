package reducer

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/louisbranch/continental/internal/game/board"
	"github.com/louisbranch/continental/internal/game/commit"
	"github.com/louisbranch/continental/internal/game/event"
	"github.com/louisbranch/continental/internal/game/message"
	"github.com/louisbranch/continental/internal/game/rules"
	"github.com/louisbranch/continental/internal/game/state"
	apperrors "github.com/louisbranch/continental/internal/platform/errors"
)

// testCommit builds a commit with a deterministic log id so entity
// tokens are predictable in assertions.
func testCommit(seq int, payloads ...event.Payload) commit.Commit {
	events := make([]event.Event, 0, len(payloads))
	for _, p := range payloads {
		events = append(events, event.New(p))
	}
	return commit.Commit{
		ID:        fmt.Sprintf("1700000000%03d-%d", seq, seq),
		Version:   commit.Version,
		Token:     fmt.Sprintf("1700000000%03d-tok%d", seq, seq),
		Events:    events,
		Timestamp: int64(1700000000000 + seq),
	}
}

func errorMessages(messages []message.Message) []message.Message {
	var errs []message.Message
	for _, m := range messages {
		if m.Kind == message.KindError {
			errs = append(errs, m)
		}
	}
	return errs
}

func TestFoldRegisterPlayers(t *testing.T) {
	names := []string{"pete", "josh", "saul", "jess", "bill", "matt", "nick", "dick", "dave", "john", "mike"}
	commits := make([]commit.Commit, 0, len(names)+1)
	for i, name := range names {
		commits = append(commits, testCommit(i+1, event.PlayerRegistered{PlayerName: name}))
	}
	commits = append(commits, testCommit(len(names)+1, event.PlayerRegistered{PlayerName: "josh"}))

	result := Fold(Config{}, commits, nil)

	if got := len(result.State.Players); got != len(names) {
		t.Errorf("players = %d, want %d", got, len(names))
	}
	errs := errorMessages(result.Messages)
	if len(errs) != 1 {
		t.Fatalf("error messages = %d, want 1", len(errs))
	}
	if !strings.Contains(errs[0].Text, "already registered") {
		t.Errorf("error text = %q, want it to mention already registered", errs[0].Text)
	}
	if errs[0].Code != apperrors.CodePlayerNameTaken {
		t.Errorf("error code = %s, want %s", errs[0].Code, apperrors.CodePlayerNameTaken)
	}
}

func TestFoldJoinOwnGame(t *testing.T) {
	joshToken := testCommit(1).ID
	mattToken := testCommit(2).ID
	gameToken := testCommit(3).ID
	commits := []commit.Commit{
		testCommit(1, event.PlayerRegistered{PlayerName: "josh"}),
		testCommit(2, event.PlayerRegistered{PlayerName: "matt"}),
		testCommit(3, event.GameOpened{PlayerToken: joshToken, GameName: "world"}),
		testCommit(4, event.GameJoined{PlayerToken: mattToken, GameToken: gameToken}),
		testCommit(5, event.GameJoined{PlayerToken: joshToken, GameToken: gameToken}),
	}

	result := Fold(Config{}, commits, nil)

	game := result.State.Games[gameToken]
	if game == nil {
		t.Fatal("game not found")
	}
	if len(game.Players) != 2 {
		t.Errorf("game players = %d, want 2", len(game.Players))
	}
	errs := errorMessages(result.Messages)
	if len(errs) != 1 {
		t.Fatalf("error messages = %d, want 1", len(errs))
	}
	if !strings.Contains(errs[0].Text, "cannot join your own game") {
		t.Errorf("error text = %q, want own-game rejection", errs[0].Text)
	}
}

// sixPlayerGame folds a full registration, open, join, and start for six
// players with the deck dealt the way StartGame submits it.
func sixPlayerGame(t *testing.T) (*Result, string) {
	t.Helper()
	names := []string{"pete", "josh", "saul", "jess", "bill", "matt"}
	var commits []commit.Commit
	for i, name := range names {
		commits = append(commits, testCommit(i+1, event.PlayerRegistered{PlayerName: name}))
	}
	host := testCommit(1).ID
	gameToken := testCommit(7).ID
	commits = append(commits, testCommit(7, event.GameOpened{PlayerToken: host, GameName: "world"}))
	for i := 1; i < len(names); i++ {
		commits = append(commits, testCommit(7+i, event.GameJoined{
			PlayerToken: testCommit(i + 1).ID,
			GameToken:   gameToken,
		}))
	}

	start := []event.Payload{event.GameStarted{PlayerToken: host, GameToken: gameToken}}
	for _, card := range board.Deck() {
		start = append(start, event.CardReturned{GameToken: gameToken, CardName: card.Name})
	}
	commits = append(commits, testCommit(20, start...))

	result := Fold(Config{}, commits, nil)
	return &result, gameToken
}

func TestFoldStartGameDealsDeck(t *testing.T) {
	result, gameToken := sixPlayerGame(t)

	if errs := errorMessages(result.Messages); len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	game := result.State.Games[gameToken]
	if game.Round != state.RoundSetup {
		t.Errorf("round = %d, want setup", game.Round)
	}
	if len(game.Cards) != 44 {
		t.Errorf("deck = %d, want 44", len(game.Cards))
	}
	if len(game.Players) != 6 {
		t.Fatalf("players = %d, want 6", len(game.Players))
	}
	opening := rules.InitialTroops(6)
	for _, token := range game.Players {
		player := result.State.Players[token]
		if want := opening - len(player.Holdings); player.Reinforcement != want {
			t.Errorf("%s reinforcement = %d, want %d", player.Name, player.Reinforcement, want)
		}
	}
}

func TestFoldDeterminism(t *testing.T) {
	first, _ := sixPlayerGame(t)
	second, _ := sixPlayerGame(t)

	if !reflect.DeepEqual(first.State, second.State) {
		t.Error("same commits folded to different states")
	}
	if !reflect.DeepEqual(first.Messages, second.Messages) {
		t.Error("same commits folded to different messages")
	}
}

func TestFoldSetupClaimAdvancesTurn(t *testing.T) {
	result, gameToken := sixPlayerGame(t)
	st := result.State
	game := st.Games[gameToken]
	mover := st.Players[game.CurrentPlayer()]
	before := mover.Reinforcement

	claim := Fold(Config{}, []commit.Commit{
		testCommit(21, event.MoveMade{
			PlayerToken:   mover.Token,
			GameToken:     gameToken,
			TerritoryName: "Brazil",
		}),
	}, st)

	if errs := errorMessages(claim.Messages); len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if got := mover.Holdings["Brazil"]; got != 1 {
		t.Errorf("Brazil troops = %d, want 1", got)
	}
	if mover.Reinforcement != before-1 {
		t.Errorf("reinforcement = %d, want %d", mover.Reinforcement, before-1)
	}
	if game.Turns != 1 {
		t.Errorf("turns = %d, want 1", game.Turns)
	}
	if len(claim.Secondary) != 1 {
		t.Fatalf("secondary commits = %d, want 1", len(claim.Secondary))
	}
	placed, ok := claim.Secondary[0].Events[0].Payload.(event.TroopPlaced)
	if !ok {
		t.Fatalf("secondary payload = %T, want TroopPlaced", claim.Secondary[0].Events[0].Payload)
	}
	if placed.TerritoryName != "Brazil" || placed.Troops != 1 {
		t.Errorf("secondary placement = %+v", placed)
	}
	if claim.Secondary[0].ID != testCommit(21).ID {
		t.Errorf("secondary inherits id %q, want %q", claim.Secondary[0].ID, testCommit(21).ID)
	}
}

func TestFoldOutOfTurnMoveRejected(t *testing.T) {
	result, gameToken := sixPlayerGame(t)
	st := result.State
	game := st.Games[gameToken]

	var intruder string
	for _, token := range game.Players {
		if token != game.CurrentPlayer() {
			intruder = token
			break
		}
	}

	moved := Fold(Config{}, []commit.Commit{
		testCommit(21, event.MoveMade{
			PlayerToken:   intruder,
			GameToken:     gameToken,
			TerritoryName: "Brazil",
		}),
	}, st)

	errs := errorMessages(moved.Messages)
	if len(errs) != 1 {
		t.Fatalf("error messages = %d, want 1", len(errs))
	}
	if errs[0].Code != apperrors.CodeTurnOutOfOrder {
		t.Errorf("error code = %s, want %s", errs[0].Code, apperrors.CodeTurnOutOfOrder)
	}
	if st.Players[intruder].Holds("Brazil") {
		t.Error("out-of-turn claim mutated holdings")
	}
}

// gameplayState hand-builds a started two-player-turn scenario inside a
// three-player game: alice holds Brazil and Peru, bob holds Argentina.
func gameplayState(reinforcement int) (*state.State, *state.Game, *state.Player, *state.Player) {
	st := state.NewState()
	alice := &state.Player{
		Token: "p-alice", Name: "alice", Status: state.PlayerReady, Joined: "g1",
		Reinforcement: reinforcement,
		Holdings:      map[string]int{"Brazil": 5, "Peru": 1},
		Cards:         map[string]board.Card{},
	}
	bob := &state.Player{
		Token: "p-bob", Name: "bob", Status: state.PlayerReady, Joined: "g1",
		Holdings: map[string]int{"Argentina": 2},
		Cards:    map[string]board.Card{},
	}
	carol := &state.Player{
		Token: "p-carol", Name: "carol", Status: state.PlayerReady, Joined: "g1",
		Holdings: map[string]int{"Alaska": 1},
		Cards:    map[string]board.Card{},
	}
	game := &state.Game{
		Token: "g1", Name: "world", Host: alice.Token,
		Round: 1, Turns: 0, Status: state.GameStarted,
		Players: []string{alice.Token, bob.Token, carol.Token},
	}
	st.Players[alice.Token] = alice
	st.Players[bob.Token] = bob
	st.Players[carol.Token] = carol
	st.Games[game.Token] = game
	return st, game, alice, bob
}

func TestFoldAttackResolvesBattle(t *testing.T) {
	st, game, alice, bob := gameplayState(0)

	result := Fold(Config{}, []commit.Commit{
		testCommit(1, event.MoveMade{PlayerToken: alice.Token, GameToken: game.Token, TerritoryName: "Brazil"}),
		testCommit(2, event.MoveMade{PlayerToken: alice.Token, GameToken: game.Token, TerritoryName: "Argentina"}),
	}, st)

	if errs := errorMessages(result.Messages); len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(result.Secondary) == 0 {
		t.Fatal("attack produced no secondary commit")
	}
	attacked, ok := result.Secondary[0].Events[0].Payload.(event.TerritoryAttacked)
	if !ok {
		t.Fatalf("secondary payload = %T, want TerritoryAttacked", result.Secondary[0].Events[0].Payload)
	}
	if attacked.AttackerTerritory != "Brazil" || attacked.DefenderTerritory != "Argentina" {
		t.Errorf("battle territories = %+v", attacked)
	}
	if total := attacked.AttackerLoss + attacked.DefenderLoss; total != 2 {
		t.Errorf("battle losses = %d, want 2 (three vs two dice)", total)
	}
	if game.LastBattle == nil {
		t.Fatal("last battle not recorded")
	}
	if len(game.LastBattle.RedDice) != 3 || len(game.LastBattle.WhiteDice) != 2 {
		t.Errorf("battle dice = %d/%d, want 3/2", len(game.LastBattle.RedDice), len(game.LastBattle.WhiteDice))
	}
	attackerTotal := alice.Holdings["Brazil"] + alice.Holdings["Peru"] + alice.Holdings["Argentina"]
	defenderTotal := bob.Holdings["Argentina"]
	if attackerTotal+defenderTotal != 8-2 {
		t.Errorf("troops after battle = %d, want %d", attackerTotal+defenderTotal, 6)
	}
}

func TestFoldConquestTransfersTerritory(t *testing.T) {
	st, game, alice, bob := gameplayState(0)
	bob.Holdings["Argentina"] = 1

	// Attack until Argentina falls or the attacker is spent.
	for i := 1; i <= 20 && bob.Holds("Argentina") && alice.Holdings["Brazil"] > 1; i++ {
		Fold(Config{}, []commit.Commit{
			testCommit(i*2-1, event.MoveMade{PlayerToken: alice.Token, GameToken: game.Token, TerritoryName: "Brazil"}),
			testCommit(i*2, event.MoveMade{PlayerToken: alice.Token, GameToken: game.Token, TerritoryName: "Argentina"}),
		}, st)
	}

	if bob.Holds("Argentina") {
		t.Skip("defender held against every roll with a single troop")
	}
	if !alice.Holds("Argentina") {
		t.Fatal("conquered territory not transferred")
	}
	if alice.Holdings["Brazil"] != 1 {
		t.Errorf("source territory troops = %d, want 1 left behind", alice.Holdings["Brazil"])
	}
	if alice.Holdings["Argentina"] < 1 {
		t.Errorf("conquered territory troops = %d, want at least 1", alice.Holdings["Argentina"])
	}
	if !game.ConqueredTurn {
		t.Error("conquest did not mark the turn")
	}
}

func TestFoldTurnEndDrawsCardAfterConquest(t *testing.T) {
	st, game, alice, _ := gameplayState(0)
	game.ConqueredTurn = true
	card, _ := board.CardByName("Brazil")
	game.Cards = []board.Card{card}

	result := Fold(Config{}, []commit.Commit{
		testCommit(1, event.TurnEnded{PlayerToken: alice.Token, GameToken: game.Token}),
	}, st)

	if errs := errorMessages(result.Messages); len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if len(alice.Cards) != 1 {
		t.Errorf("cards after conquest turn = %d, want 1", len(alice.Cards))
	}
	if len(game.Cards) != 0 {
		t.Errorf("deck after draw = %d, want 0", len(game.Cards))
	}
	if game.ConqueredTurn {
		t.Error("conquest flag not reset")
	}
	if game.Turns != 1 {
		t.Errorf("turns = %d, want 1", game.Turns)
	}
	next := st.Players[game.CurrentPlayer()]
	if next.Reinforcement < 3 {
		t.Errorf("next player reinforcement = %d, want at least 3", next.Reinforcement)
	}
}

func TestFoldRedeemCards(t *testing.T) {
	st, game, alice, _ := gameplayState(0)
	names := []string{"Brazil", "Peru", "Argentina"}
	for _, name := range names {
		card, ok := board.CardByName(name)
		if !ok {
			t.Fatalf("card %s not found", name)
		}
		alice.Cards[name] = card
	}

	result := Fold(Config{}, []commit.Commit{
		testCommit(1, event.CardsRedeemed{PlayerToken: alice.Token, GameToken: game.Token, CardNames: names}),
	}, st)

	// The three named territory cards cycle infantry/cavalry/artillery, so
	// the set is one-of-each redeemable.
	if errs := errorMessages(result.Messages); len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
	if alice.Reinforcement != rules.RedeemReinforcement(0) {
		t.Errorf("reinforcement = %d, want %d", alice.Reinforcement, rules.RedeemReinforcement(0))
	}
	if game.Redeemed != 1 {
		t.Errorf("redeemed counter = %d, want 1", game.Redeemed)
	}
	if len(alice.Cards) != 0 {
		t.Errorf("cards after redemption = %d, want 0", len(alice.Cards))
	}
	if len(game.Cards) != 3 {
		t.Errorf("deck after returns = %d, want 3", len(game.Cards))
	}
}

func TestFoldDepthCap(t *testing.T) {
	buildSetup := func() (*state.State, *state.Game, *state.Player) {
		st := state.NewState()
		players := []*state.Player{
			{Token: "p1", Name: "alice", Status: state.PlayerReady, Joined: "g1", Reinforcement: 1,
				Holdings: map[string]int{}, Cards: map[string]board.Card{}},
			{Token: "p2", Name: "bob", Status: state.PlayerReady, Joined: "g1",
				Holdings: map[string]int{}, Cards: map[string]board.Card{}},
			{Token: "p3", Name: "carol", Status: state.PlayerReady, Joined: "g1",
				Holdings: map[string]int{}, Cards: map[string]board.Card{}},
		}
		// Every territory claimed so the placement branch runs.
		for i, territory := range board.Territories() {
			players[i%3].Holdings[territory.Name] = 1
		}
		game := &state.Game{Token: "g1", Name: "world", Host: "p1",
			Round: state.RoundSetup, Turns: 0, Status: state.GameStarted,
			Players: []string{"p1", "p2", "p3"}}
		for _, p := range players {
			st.Players[p.Token] = p
		}
		st.Games[game.Token] = game
		return st, game, players[0]
	}

	move := func(st *state.State, game *state.Game, alice *state.Player, cfg Config) Result {
		territory := ""
		for name := range alice.Holdings {
			territory = name
			break
		}
		return Fold(cfg, []commit.Commit{
			testCommit(1, event.MoveMade{PlayerToken: alice.Token, GameToken: game.Token, TerritoryName: territory}),
		}, st)
	}

	t.Run("default depth finishes setup", func(t *testing.T) {
		st, game, alice := buildSetup()
		result := move(st, game, alice, Config{})
		if errs := errorMessages(result.Messages); len(errs) != 0 {
			t.Fatalf("unexpected errors: %+v", errs)
		}
		if game.Round != 1 {
			t.Errorf("round = %d, want 1 after setup finished", game.Round)
		}
	})

	t.Run("exceeding the cap reports a suspected cycle", func(t *testing.T) {
		st, game, alice := buildSetup()
		result := move(st, game, alice, Config{MaxDepth: 1})
		errs := errorMessages(result.Messages)
		if len(errs) != 1 {
			t.Fatalf("error messages = %d, want 1", len(errs))
		}
		if errs[0].Code != apperrors.CodeCycleSuspected {
			t.Errorf("error code = %s, want %s", errs[0].Code, apperrors.CodeCycleSuspected)
		}
		// The placement that succeeded before the cap stands.
		if alice.Reinforcement != 0 {
			t.Errorf("reinforcement = %d, want 0", alice.Reinforcement)
		}
		if game.Round != state.RoundSetup {
			t.Errorf("round = %d, want setup unchanged", game.Round)
		}
	})
}
