package rules

import (
	"math/rand"
	"testing"

	"github.com/louisbranch/continental/internal/game/board"
)

func TestBasicReinforcement(t *testing.T) {
	tests := []struct {
		holdings int
		want     int
	}{
		{0, 3},
		{1, 3},
		{9, 3},
		{11, 3},
		{12, 4},
		{30, 10},
		{42, 14},
	}
	for _, tt := range tests {
		if got := BasicReinforcement(tt.holdings); got != tt.want {
			t.Errorf("BasicReinforcement(%d) = %d, want %d", tt.holdings, got, tt.want)
		}
	}
}

func TestInitialTroops(t *testing.T) {
	tests := []struct {
		players int
		want    int
	}{
		{3, 35},
		{4, 30},
		{5, 25},
		{6, 20},
		{2, 0},
		{7, 0},
	}
	for _, tt := range tests {
		if got := InitialTroops(tt.players); got != tt.want {
			t.Errorf("InitialTroops(%d) = %d, want %d", tt.players, got, tt.want)
		}
	}
}

func TestContinentReinforcement(t *testing.T) {
	australia, ok := board.ContinentByName("Australia")
	if !ok {
		t.Fatal("Australia not found")
	}
	holdings := make(map[string]bool)
	for _, name := range australia.Territories {
		holdings[name] = true
	}
	if got := ContinentReinforcement(holdings); got != australia.Bonus {
		t.Errorf("full Australia bonus = %d, want %d", got, australia.Bonus)
	}

	delete(holdings, australia.Territories[0])
	if got := ContinentReinforcement(holdings); got != 0 {
		t.Errorf("partial Australia bonus = %d, want 0", got)
	}
}

func TestScoreDiceTieFavorsDefender(t *testing.T) {
	attackerLoss, defenderLoss := scoreDice([]int{5, 5, 5}, []int{5, 4})
	if attackerLoss != 1 {
		t.Errorf("attacker loss = %d, want 1 (tie favors defender)", attackerLoss)
	}
	if defenderLoss != 1 {
		t.Errorf("defender loss = %d, want 1", defenderLoss)
	}
}

func TestScoreDice(t *testing.T) {
	tests := []struct {
		name         string
		red, white   []int
		attackerLoss int
		defenderLoss int
	}{
		{"attacker sweeps", []int{6, 6, 6}, []int{5, 5}, 0, 2},
		{"defender sweeps", []int{3, 2, 1}, []int{6, 6}, 2, 0},
		{"all ties", []int{4, 4}, []int{4, 4}, 2, 0},
		{"single die each", []int{6}, []int{1}, 0, 1},
		{"more defenders than dice pairs", []int{5}, []int{6, 6}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attackerLoss, defenderLoss := scoreDice(tt.red, tt.white)
			if attackerLoss != tt.attackerLoss || defenderLoss != tt.defenderLoss {
				t.Errorf("scoreDice(%v, %v) = %d/%d, want %d/%d",
					tt.red, tt.white, attackerLoss, defenderLoss, tt.attackerLoss, tt.defenderLoss)
			}
		})
	}
}

func TestDoBattleDiceCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		attacker, defender int
		red, white         int
	}{
		{1, 1, 1, 1},
		{2, 1, 2, 1},
		{3, 2, 3, 2},
		{10, 10, 3, 2},
	}
	for _, tt := range tests {
		result := DoBattle(rng, tt.attacker, tt.defender)
		if len(result.RedDice) != tt.red || len(result.WhiteDice) != tt.white {
			t.Errorf("DoBattle(%d, %d) rolled %d/%d dice, want %d/%d",
				tt.attacker, tt.defender, len(result.RedDice), len(result.WhiteDice), tt.red, tt.white)
		}
		if total := result.AttackerLoss + result.DefenderLoss; total != min(tt.red, tt.white) {
			t.Errorf("DoBattle(%d, %d) total losses = %d, want %d",
				tt.attacker, tt.defender, total, min(tt.red, tt.white))
		}
		for i := 1; i < len(result.RedDice); i++ {
			if result.RedDice[i] > result.RedDice[i-1] {
				t.Errorf("red dice not sorted descending: %v", result.RedDice)
			}
		}
	}
}

func TestDoBattleIsDeterministicPerSeed(t *testing.T) {
	first := DoBattle(rand.New(rand.NewSource(42)), 3, 2)
	second := DoBattle(rand.New(rand.NewSource(42)), 3, 2)
	if first.AttackerLoss != second.AttackerLoss || first.DefenderLoss != second.DefenderLoss {
		t.Errorf("same seed produced different losses: %+v vs %+v", first, second)
	}
}

func TestRedeemReinforcement(t *testing.T) {
	want := []int{4, 6, 8, 10, 15, 20, 25}
	for redeemed, grant := range want {
		if got := RedeemReinforcement(redeemed); got != grant {
			t.Errorf("RedeemReinforcement(%d) = %d, want %d", redeemed, got, grant)
		}
	}
	if got := RedeemReinforcement(100); got != 65 {
		t.Errorf("RedeemReinforcement(100) = %d, want cap 65", got)
	}
}

func TestIsRedeemable(t *testing.T) {
	card := func(cardType board.CardType) board.Card {
		return board.Card{Name: string(cardType), Type: cardType}
	}
	tests := []struct {
		name  string
		cards []board.Card
		want  bool
	}{
		{
			"three of a kind",
			[]board.Card{card(board.CardInfantry), card(board.CardInfantry), card(board.CardInfantry)},
			true,
		},
		{
			"one of each",
			[]board.Card{card(board.CardInfantry), card(board.CardCavalry), card(board.CardArtillery)},
			true,
		},
		{
			"wildcard completes a triple",
			[]board.Card{card(board.CardInfantry), card(board.CardInfantry), card(board.CardWildcard)},
			true,
		},
		{
			"wildcard completes one of each",
			[]board.Card{card(board.CardInfantry), card(board.CardCavalry), card(board.CardWildcard)},
			true,
		},
		{
			"two pairs worth nothing",
			[]board.Card{card(board.CardInfantry), card(board.CardInfantry), card(board.CardCavalry)},
			false,
		},
		{
			"wrong count",
			[]board.Card{card(board.CardInfantry), card(board.CardInfantry)},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRedeemable(tt.cards); got != tt.want {
				t.Errorf("IsRedeemable = %v, want %v", got, tt.want)
			}
		})
	}
}
