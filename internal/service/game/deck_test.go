package game_test

import (
	"errors"
	"testing"

	"blackjack-service/internal/service/game"
	appErr "blackjack-service/pkg/errors"
)

func TestNewDeckHasEveryCardOnce(t *testing.T) {
	deck := game.NewDeck()
	if deck.Remaining() != 52 {
		t.Fatalf("expected 52 cards, got %d", deck.Remaining())
	}

	seen := make(map[game.Card]bool)
	for i := 52; i > 0; i-- {
		card, err := deck.Draw()
		if err != nil {
			t.Fatalf("draw %d failed: %v", 53-i, err)
		}
		if seen[card] {
			t.Fatalf("card %s dealt twice", card)
		}
		seen[card] = true
		if deck.Remaining() != i-1 {
			t.Fatalf("expected %d remaining, got %d", i-1, deck.Remaining())
		}
	}
	if len(seen) != 52 {
		t.Fatalf("expected 52 unique cards, got %d", len(seen))
	}
}

func TestDrawFromEmptyDeck(t *testing.T) {
	deck := game.NewOrderedDeck(game.Card{Suit: game.Spades, Rank: game.Ace})
	if _, err := deck.Draw(); err != nil {
		t.Fatalf("first draw failed: %v", err)
	}
	_, err := deck.Draw()
	if !errors.Is(err, appErr.ErrDeckExhausted) {
		t.Fatalf("expected ErrDeckExhausted, got %v", err)
	}
	if deck.Remaining() != 0 {
		t.Fatalf("expected empty deck, got %d", deck.Remaining())
	}
}

func TestOrderedDeckDealsInOrder(t *testing.T) {
	want := []game.Card{
		{Suit: game.Hearts, Rank: game.Two},
		{Suit: game.Clubs, Rank: game.King},
		{Suit: game.Diamonds, Rank: game.Seven},
	}
	deck := game.NewOrderedDeck(want...)
	for i, w := range want {
		got, err := deck.Draw()
		if err != nil {
			t.Fatalf("draw %d failed: %v", i, err)
		}
		if got != w {
			t.Fatalf("draw %d: expected %s, got %s", i, w, got)
		}
	}
}

func TestShuffleVariesOrder(t *testing.T) {
	first := drawAll(t, game.NewDeck())
	for attempt := 0; attempt < 5; attempt++ {
		next := drawAll(t, game.NewDeck())
		for i := range first {
			if first[i] != next[i] {
				return
			}
		}
	}
	t.Fatalf("six shuffled decks came out identical")
}

func drawAll(t *testing.T, d *game.Deck) []game.Card {
	t.Helper()
	cards := make([]game.Card, 0, 52)
	for d.Remaining() > 0 {
		c, err := d.Draw()
		if err != nil {
			t.Fatalf("draw failed: %v", err)
		}
		cards = append(cards, c)
	}
	return cards
}

func TestCardValuesAndNames(t *testing.T) {
	cases := []struct {
		card  game.Card
		value int
		name  string
	}{
		{game.Card{Suit: game.Spades, Rank: game.Ace}, 11, "A♠"},
		{game.Card{Suit: game.Hearts, Rank: game.Seven}, 7, "7♥"},
		{game.Card{Suit: game.Diamonds, Rank: game.Ten}, 10, "10♦"},
		{game.Card{Suit: game.Clubs, Rank: game.Jack}, 10, "J♣"},
		{game.Card{Suit: game.Clubs, Rank: game.Queen}, 10, "Q♣"},
		{game.Card{Suit: game.Hearts, Rank: game.King}, 10, "K♥"},
	}
	for _, tc := range cases {
		if tc.card.Value() != tc.value {
			t.Fatalf("%s: expected value %d, got %d", tc.name, tc.value, tc.card.Value())
		}
		if tc.card.String() != tc.name {
			t.Fatalf("expected name %s, got %s", tc.name, tc.card.String())
		}
	}
}
