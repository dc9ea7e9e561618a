package game

import "strconv"

type Suit uint8

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

var suitSymbols = [...]string{"♠", "♥", "♦", "♣"}

// String returns the symbol clients render, e.g. "♥".
func (s Suit) String() string {
	if int(s) < len(suitSymbols) {
		return suitSymbols[s]
	}
	return "?"
}

type Rank uint8

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return strconv.Itoa(int(r))
	}
}

// Value is the nominal blackjack value. Aces count 11 here; Hand lowers them.
func (r Rank) Value() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten:
		return 10
	default:
		return int(r)
	}
}

type Card struct {
	Suit Suit
	Rank Rank
}

func (c Card) Value() int {
	return c.Rank.Value()
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// CardView is the wire form of a card. A hidden card carries only Hidden.
type CardView struct {
	Suit   string `json:"suit,omitempty"`
	Rank   string `json:"rank,omitempty"`
	Value  int    `json:"value,omitempty"`
	Hidden bool   `json:"hidden,omitempty"`
}

func (c Card) View() CardView {
	return CardView{
		Suit:  c.Suit.String(),
		Rank:  c.Rank.String(),
		Value: c.Value(),
	}
}

var hiddenCard = CardView{Hidden: true}
