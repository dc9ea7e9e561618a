package main

import (
	"strings"

	"blackjack-service/internal/service/game"

	"github.com/pterm/pterm"
)

var resultText = map[game.Result]string{
	game.ResultPlayerWins:      "You win!",
	game.ResultDealerWins:      "Dealer wins",
	game.ResultPush:            "Push",
	game.ResultPlayerBust:      "Bust! Dealer wins",
	game.ResultDealerBust:      "Dealer busts, you win!",
	game.ResultPlayerBlackjack: "Blackjack! You win!",
	game.ResultDealerBlackjack: "Dealer blackjack",
}

func playerWon(r game.Result) bool {
	switch r {
	case game.ResultPlayerWins, game.ResultDealerBust, game.ResultPlayerBlackjack:
		return true
	}
	return false
}

func cardLabel(c game.CardView) string {
	if c.Hidden {
		return pterm.Gray("[??]")
	}
	label := "[" + c.Rank + c.Suit + "]"
	if c.Suit == "♥" || c.Suit == "♦" {
		return pterm.LightRed(label)
	}
	return pterm.LightWhite(label)
}

// handString renders one hand. Values stay "?" for the dealer while the hole card is down.
func handString(h game.HandView) string {
	labels := make([]string, 0, len(h.Cards))
	hidden := false
	for _, c := range h.Cards {
		labels = append(labels, cardLabel(c))
		hidden = hidden || c.Hidden
	}

	value := pterm.Sprint(h.Value)
	if hidden {
		value += " + ?"
	}
	switch {
	case h.IsBlackjack:
		value += pterm.LightYellow(" BLACKJACK")
	case h.IsBusted:
		value += pterm.LightRed(" BUST")
	}
	return strings.Join(labels, " ") + "\n\nValue: " + value
}

func handPanel(title string, h game.HandView) pterm.Panel {
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightCyan("|" + title + "|")).WithTitleTopCenter().Sprint(handString(h))}
}

func printState(snap game.Snapshot) {
	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		{handPanel("DEALER", snap.DealerHand), handPanel("YOU", snap.PlayerHand)},
	}).Render()
	pterm.Info.Printfln("Game %s, %d cards left in the deck", snap.GameID, snap.DeckRemaining)

	if !snap.Finished() {
		return
	}
	msg := resultText[snap.Result]
	if playerWon(snap.Result) {
		pterm.Success.Println(msg)
	} else if snap.Result == game.ResultPush {
		pterm.Warning.Println(msg)
	} else {
		pterm.Error.Println(msg)
	}
}
