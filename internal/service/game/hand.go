package game

const blackjackTotal = 21

type Hand struct {
	cards []Card
}

func (h *Hand) Add(c Card) {
	h.cards = append(h.cards, c)
}

func (h *Hand) Len() int {
	return len(h.cards)
}

// Value counts aces as 11 and drops them to 1 one at a time while the total busts.
func (h *Hand) Value() int {
	total, aces := 0, 0
	for _, c := range h.cards {
		if c.Rank == Ace {
			aces++
		}
		total += c.Value()
	}
	for total > blackjackTotal && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

func (h *Hand) IsBlackjack() bool {
	return len(h.cards) == 2 && h.Value() == blackjackTotal
}

func (h *Hand) IsBusted() bool {
	return h.Value() > blackjackTotal
}

// Views reports nominal card values; an ace shows 11 even when the hand counts it as 1.
func (h *Hand) Views() []CardView {
	views := make([]CardView, len(h.cards))
	for i, c := range h.cards {
		views[i] = c.View()
	}
	return views
}
