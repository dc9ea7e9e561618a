package game

import (
	"encoding/json"
	"fmt"
	"sync"

	appErr "blackjack-service/pkg/errors"
)

type State string

const (
	StateWaiting  State = "waiting"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

type Result string

const (
	ResultNone            Result = ""
	ResultPlayerWins      Result = "player_wins"
	ResultDealerWins      Result = "dealer_wins"
	ResultPush            Result = "push"
	ResultPlayerBust      Result = "player_bust"
	ResultDealerBust      Result = "dealer_bust"
	ResultPlayerBlackjack Result = "player_blackjack"
	ResultDealerBlackjack Result = "dealer_blackjack"
)

// Results lists every outcome a finished game can report.
var Results = []Result{
	ResultPlayerWins,
	ResultDealerWins,
	ResultPush,
	ResultPlayerBust,
	ResultDealerBust,
	ResultPlayerBlackjack,
	ResultDealerBlackjack,
}

func (r Result) MarshalJSON() ([]byte, error) {
	if r == ResultNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *Result) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ResultNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Result(s)
	return nil
}

const dealerStandsOn = 17

type HandView struct {
	Cards       []CardView `json:"cards"`
	Value       int        `json:"value"`
	IsBlackjack bool       `json:"isBlackjack"`
	IsBusted    bool       `json:"isBusted"`
}

// Snapshot is the client-facing view of a game. While play is active the
// dealer's hole card is hidden and only the up card's value is reported.
type Snapshot struct {
	GameID        string   `json:"gameId"`
	GameState     State    `json:"gameState"`
	Result        Result   `json:"result"`
	PlayerHand    HandView `json:"playerHand"`
	DealerHand    HandView `json:"dealerHand"`
	DeckRemaining int      `json:"deckRemaining"`
}

func (s Snapshot) Finished() bool {
	return s.GameState == StateFinished
}

// Game is one round of blackjack. All methods are safe for concurrent use;
// calls on the same game are serialized.
type Game struct {
	id     string
	state  State
	result Result
	deck   *Deck
	player Hand
	dealer Hand

	mu sync.Mutex
}

// New builds a game and deals the opening hands. A nil deck means a fresh shuffled one.
func New(id string, deck *Deck) (*Game, error) {
	if deck == nil {
		deck = NewDeck()
	}
	g := &Game{
		id:    id,
		state: StateWaiting,
		deck:  deck,
	}
	if err := g.deal(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) ID() string {
	return g.id
}

func (g *Game) deal() error {
	for i := 0; i < 2; i++ {
		for _, h := range []*Hand{&g.player, &g.dealer} {
			card, err := g.deck.Draw()
			if err != nil {
				return fmt.Errorf("initial deal: %w", err)
			}
			h.Add(card)
		}
	}

	g.state = StatePlaying
	switch {
	case g.player.IsBlackjack() && g.dealer.IsBlackjack():
		g.finish(ResultPush)
	case g.player.IsBlackjack():
		g.finish(ResultPlayerBlackjack)
	case g.dealer.IsBlackjack():
		g.finish(ResultDealerBlackjack)
	}
	return nil
}

func (g *Game) finish(r Result) {
	g.state = StateFinished
	g.result = r
}

func (g *Game) Hit() (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePlaying {
		return Snapshot{}, fmt.Errorf("cannot hit: %w", appErr.ErrIllegalAction)
	}
	card, err := g.deck.Draw()
	if err != nil {
		return Snapshot{}, err
	}
	g.player.Add(card)
	if g.player.IsBusted() {
		g.finish(ResultPlayerBust)
	}
	return g.snapshotLocked(), nil
}

func (g *Game) Stand() (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StatePlaying {
		return Snapshot{}, fmt.Errorf("cannot stand: %w", appErr.ErrIllegalAction)
	}

	dealt, undrawn := len(g.dealer.cards), len(g.deck.cards)
	for g.dealer.Value() < dealerStandsOn {
		card, err := g.deck.Draw()
		if err != nil {
			// Roll back so a failed stand leaves the game untouched.
			g.dealer.cards = g.dealer.cards[:dealt]
			g.deck.cards = g.deck.cards[:undrawn]
			return Snapshot{}, err
		}
		g.dealer.Add(card)
	}
	g.finish(g.resolve())
	return g.snapshotLocked(), nil
}

func (g *Game) resolve() Result {
	player, dealer := g.player.Value(), g.dealer.Value()
	switch {
	case g.dealer.IsBusted():
		return ResultPlayerWins
	case player > dealer:
		return ResultPlayerWins
	case dealer > player:
		return ResultDealerWins
	default:
		return ResultPush
	}
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	snap := Snapshot{
		GameID:    g.id,
		GameState: g.state,
		Result:    g.result,
		PlayerHand: HandView{
			Cards:       g.player.Views(),
			Value:       g.player.Value(),
			IsBlackjack: g.player.IsBlackjack(),
			IsBusted:    g.player.IsBusted(),
		},
		DeckRemaining: g.deck.Remaining(),
	}

	if g.state == StateFinished {
		snap.DealerHand = HandView{
			Cards:       g.dealer.Views(),
			Value:       g.dealer.Value(),
			IsBlackjack: g.dealer.IsBlackjack(),
			IsBusted:    g.dealer.IsBusted(),
		}
		return snap
	}

	cards := make([]CardView, len(g.dealer.cards))
	value := 0
	for i, c := range g.dealer.cards {
		if i == 0 {
			cards[i] = c.View()
			value = c.Value()
			continue
		}
		cards[i] = hiddenCard
	}
	snap.DealerHand = HandView{Cards: cards, Value: value}
	return snap
}
