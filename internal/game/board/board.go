// Package board holds the static world model: continents, territories with
// adjacency, and the card deck. The data is assembled once at package init
// and is read-only thereafter, so it may be shared freely across goroutines.
package board

// CardType classifies a card for redemption set evaluation.
type CardType string

const (
	// CardInfantry is the infantry card type.
	CardInfantry CardType = "infantry"
	// CardCavalry is the cavalry card type.
	CardCavalry CardType = "cavalry"
	// CardArtillery is the artillery card type.
	CardArtillery CardType = "artillery"
	// CardWildcard substitutes for any other card type.
	CardWildcard CardType = "wildcard"
)

// Territory is a named region on the map belonging to one continent.
type Territory struct {
	Name      string
	Continent string
	Adjacent  []string
}

// Continent groups territories and carries a full-ownership reinforcement bonus.
type Continent struct {
	Name        string
	Bonus       int
	Territories []string
}

// Card is one card of the 44-card deck.
type Card struct {
	Name string
	Type CardType
}

var (
	territories   []Territory
	territoryByName map[string]*Territory
	continents    []Continent
	continentByName map[string]*Continent
	deck          []Card
	cardByName    map[string]*Card
)

// Territories returns all territories in declaration order.
func Territories() []Territory {
	return territories
}

// Continents returns all continents in declaration order.
func Continents() []Continent {
	return continents
}

// Deck returns the full 44-card deck in declaration order.
func Deck() []Card {
	return deck
}

// TerritoryByName returns the territory with the given name.
func TerritoryByName(name string) (Territory, bool) {
	t, ok := territoryByName[name]
	if !ok {
		return Territory{}, false
	}
	return *t, true
}

// CardByName returns the card with the given name.
func CardByName(name string) (Card, bool) {
	c, ok := cardByName[name]
	if !ok {
		return Card{}, false
	}
	return *c, true
}

// ContinentByName returns the continent with the given name.
func ContinentByName(name string) (Continent, bool) {
	c, ok := continentByName[name]
	if !ok {
		return Continent{}, false
	}
	return *c, true
}

// AreAdjacent reports whether two territories share a border or sea lane.
func AreAdjacent(a, b string) bool {
	t, ok := territoryByName[a]
	if !ok {
		return false
	}
	for _, name := range t.Adjacent {
		if name == b {
			return true
		}
	}
	return false
}

func init() {
	type entry struct {
		name     string
		adjacent []string
	}
	type region struct {
		name    string
		bonus   int
		entries []entry
	}

	regions := []region{
		{"North America", 5, []entry{
			{"Alaska", []string{"Northwest Territory", "Alberta", "Kamchatka"}},
			{"Northwest Territory", []string{"Alaska", "Alberta", "Ontario", "Greenland"}},
			{"Greenland", []string{"Northwest Territory", "Ontario", "Quebec", "Iceland"}},
			{"Alberta", []string{"Alaska", "Northwest Territory", "Ontario", "Western United States"}},
			{"Ontario", []string{"Northwest Territory", "Alberta", "Greenland", "Quebec", "Western United States", "Eastern United States"}},
			{"Quebec", []string{"Greenland", "Ontario", "Eastern United States"}},
			{"Western United States", []string{"Alberta", "Ontario", "Eastern United States", "Central America"}},
			{"Eastern United States", []string{"Ontario", "Quebec", "Western United States", "Central America"}},
			{"Central America", []string{"Western United States", "Eastern United States", "Venezuela"}},
		}},
		{"South America", 2, []entry{
			{"Venezuela", []string{"Central America", "Brazil", "Peru"}},
			{"Brazil", []string{"Venezuela", "Peru", "Argentina", "North Africa"}},
			{"Peru", []string{"Venezuela", "Brazil", "Argentina"}},
			{"Argentina", []string{"Brazil", "Peru"}},
		}},
		{"Europe", 5, []entry{
			{"Iceland", []string{"Greenland", "Great Britain", "Scandinavia"}},
			{"Scandinavia", []string{"Iceland", "Great Britain", "Northern Europe", "Ukraine"}},
			{"Ukraine", []string{"Scandinavia", "Northern Europe", "Southern Europe", "Ural", "Afghanistan", "Middle East"}},
			{"Great Britain", []string{"Iceland", "Scandinavia", "Northern Europe", "Western Europe"}},
			{"Northern Europe", []string{"Great Britain", "Scandinavia", "Ukraine", "Southern Europe", "Western Europe"}},
			{"Western Europe", []string{"Great Britain", "Northern Europe", "Southern Europe", "North Africa"}},
			{"Southern Europe", []string{"Western Europe", "Northern Europe", "Ukraine", "Middle East", "Egypt", "North Africa"}},
		}},
		{"Africa", 3, []entry{
			{"North Africa", []string{"Brazil", "Western Europe", "Southern Europe", "Egypt", "East Africa", "Congo"}},
			{"Egypt", []string{"Southern Europe", "North Africa", "East Africa", "Middle East"}},
			{"East Africa", []string{"Egypt", "North Africa", "Congo", "South Africa", "Madagascar", "Middle East"}},
			{"Congo", []string{"North Africa", "East Africa", "South Africa"}},
			{"South Africa", []string{"Congo", "East Africa", "Madagascar"}},
			{"Madagascar", []string{"East Africa", "South Africa"}},
		}},
		{"Asia", 7, []entry{
			{"Ural", []string{"Ukraine", "Siberia", "China", "Afghanistan"}},
			{"Siberia", []string{"Ural", "Yakutsk", "Irkutsk", "Mongolia", "China"}},
			{"Yakutsk", []string{"Siberia", "Kamchatka", "Irkutsk"}},
			{"Kamchatka", []string{"Yakutsk", "Irkutsk", "Mongolia", "Japan", "Alaska"}},
			{"Irkutsk", []string{"Siberia", "Yakutsk", "Kamchatka", "Mongolia"}},
			{"Mongolia", []string{"Siberia", "Irkutsk", "Kamchatka", "Japan", "China"}},
			{"Japan", []string{"Kamchatka", "Mongolia"}},
			{"Afghanistan", []string{"Ukraine", "Ural", "China", "India", "Middle East"}},
			{"China", []string{"Ural", "Siberia", "Mongolia", "Afghanistan", "India", "Siam"}},
			{"Middle East", []string{"Ukraine", "Southern Europe", "Egypt", "East Africa", "Afghanistan", "India"}},
			{"India", []string{"Middle East", "Afghanistan", "China", "Siam"}},
			{"Siam", []string{"India", "China", "Indonesia"}},
		}},
		{"Australia", 2, []entry{
			{"Indonesia", []string{"Siam", "New Guinea", "Western Australia"}},
			{"New Guinea", []string{"Indonesia", "Western Australia", "Eastern Australia"}},
			{"Western Australia", []string{"Indonesia", "New Guinea", "Eastern Australia"}},
			{"Eastern Australia", []string{"New Guinea", "Western Australia"}},
		}},
	}

	territoryByName = make(map[string]*Territory)
	continentByName = make(map[string]*Continent)
	cardByName = make(map[string]*Card)

	cardTypes := []CardType{CardInfantry, CardCavalry, CardArtillery}
	for _, r := range regions {
		continent := Continent{Name: r.name, Bonus: r.bonus}
		for _, e := range r.entries {
			territories = append(territories, Territory{
				Name:      e.name,
				Continent: r.name,
				Adjacent:  e.adjacent,
			})
			continent.Territories = append(continent.Territories, e.name)

			// Territory cards cycle infantry, cavalry, artillery.
			deck = append(deck, Card{
				Name: e.name,
				Type: cardTypes[(len(deck))%len(cardTypes)],
			})
		}
		continents = append(continents, continent)
	}
	deck = append(deck,
		Card{Name: "Wildcard 1", Type: CardWildcard},
		Card{Name: "Wildcard 2", Type: CardWildcard},
	)

	for i := range territories {
		territoryByName[territories[i].Name] = &territories[i]
	}
	for i := range continents {
		continentByName[continents[i].Name] = &continents[i]
	}
	for i := range deck {
		cardByName[deck[i].Name] = &deck[i]
	}
}
