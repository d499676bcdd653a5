// Package rules implements the pure game math: reinforcement formulas,
// battle dice resolution, and card redemption evaluation. Nothing here
// carries state; every function is safe for concurrent use.
package rules

import (
	"math/rand"
	"sort"

	"github.com/louisbranch/continental/internal/game/board"
)

// MinPlayersPerGame is the fewest players a game can start with.
const MinPlayersPerGame = 3

// MaxPlayersPerGame is the most players a game can hold.
const MaxPlayersPerGame = 6

// initial troop counts keyed by player count.
var initialTroops = map[int]int{
	3: 35,
	4: 30,
	5: 25,
	6: 20,
}

// BasicReinforcement returns the per-turn reinforcement for a holdings count,
// never fewer than three.
func BasicReinforcement(holdings int) int {
	if r := holdings / 3; r > 3 {
		return r
	}
	return 3
}

// ContinentReinforcement sums each continent's bonus where the player owns
// every territory in it. The holdings set is keyed by territory name.
func ContinentReinforcement(holdings map[string]bool) int {
	bonus := 0
	for _, continent := range board.Continents() {
		owned := true
		for _, name := range continent.Territories {
			if !holdings[name] {
				owned = false
				break
			}
		}
		if owned {
			bonus += continent.Bonus
		}
	}
	return bonus
}

// InitialTroops returns the opening troop allotment for a player count,
// or zero for counts outside the supported 3..6 range.
func InitialTroops(playerCount int) int {
	return initialTroops[playerCount]
}

// BattleResult reports the outcome of one battle round together with the
// raw dice for audit and replay.
type BattleResult struct {
	AttackerLoss int
	DefenderLoss int
	RedDice      []int
	WhiteDice    []int
}

// DoBattle rolls up to three attacker dice and two defender dice, each
// capped by available troops, sorts both sides descending, and compares
// pairwise high-to-high. Ties favor the defender.
func DoBattle(rng *rand.Rand, attackerTroops, defenderTroops int) BattleResult {
	red := rollDice(rng, min(3, attackerTroops))
	white := rollDice(rng, min(2, defenderTroops))

	attackerLoss, defenderLoss := scoreDice(red, white)
	return BattleResult{
		AttackerLoss: attackerLoss,
		DefenderLoss: defenderLoss,
		RedDice:      red,
		WhiteDice:    white,
	}
}

// scoreDice compares sorted dice pairwise high-to-high. Ties favor the
// defender.
func scoreDice(red, white []int) (attackerLoss, defenderLoss int) {
	for i := 0; i < len(red) && i < len(white); i++ {
		if red[i] > white[i] {
			defenderLoss++
		} else {
			attackerLoss++
		}
	}
	return attackerLoss, defenderLoss
}

func rollDice(rng *rand.Rand, count int) []int {
	if count <= 0 {
		return nil
	}
	dice := make([]int, count)
	for i := range dice {
		dice[i] = rng.Intn(6) + 1
	}
	sort.Sort(sort.Reverse(sort.IntSlice(dice)))
	return dice
}

// IsRedeemable reports whether exactly three cards form a redeemable set:
// three of a kind, or one of each non-wildcard type, with wildcards
// substituting for any type.
func IsRedeemable(cards []board.Card) bool {
	if len(cards) != 3 {
		return false
	}

	counts := map[board.CardType]int{}
	for _, card := range cards {
		counts[card.Type]++
	}
	wildcards := counts[board.CardWildcard]
	delete(counts, board.CardWildcard)

	// Three of a kind (wildcards fill any gap).
	for _, n := range counts {
		if n+wildcards == 3 {
			return true
		}
	}
	if wildcards == 3 {
		return true
	}

	// One of each type (wildcards fill missing types).
	distinct := len(counts)
	return distinct+wildcards >= 3
}

// RedeemReinforcement returns the troops granted for the nth redemption in
// a game (zero-based): 4, 6, 8, 10, then +5 per redemption capped at 65.
func RedeemReinforcement(redeemed int) int {
	switch {
	case redeemed < 0:
		return 0
	case redeemed < 4:
		return 4 + redeemed*2
	default:
		grant := 10 + (redeemed-3)*5
		if grant > 65 {
			return 65
		}
		return grant
	}
}
