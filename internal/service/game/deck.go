package game

import (
	"math/rand"

	appErr "blackjack-service/pkg/errors"
)

const deckSize = 52

// Deck holds undealt cards. The top of the deck is the end of the slice.
type Deck struct {
	cards []Card
}

// NewDeck returns a uniformly shuffled 52-card deck.
func NewDeck() *Deck {
	cards := make([]Card, 0, deckSize)
	for s := Spades; s <= Clubs; s++ {
		for r := Ace; r <= King; r++ {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// NewOrderedDeck builds a deck that deals the given cards first to last.
func NewOrderedDeck(cards ...Card) *Deck {
	stack := make([]Card, len(cards))
	for i, c := range cards {
		stack[len(cards)-1-i] = c
	}
	return &Deck{cards: stack}
}

func (d *Deck) Draw() (Card, error) {
	n := len(d.cards)
	if n == 0 {
		return Card{}, appErr.ErrDeckExhausted
	}
	card := d.cards[n-1]
	d.cards = d.cards[:n-1]
	return card, nil
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}
