package main

import (
	"context"
	"flag"
	"os"

	"blackjack-service/internal/service/game"
	"blackjack-service/pkg/client"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

const (
	actionHit   = "Hit"
	actionStand = "Stand"
	actionNew   = "New game"
	actionQuit  = "Quit"
)

func main() {
	var server string
	flag.StringVar(&server, "server", "http://localhost:5000", "blackjack API base url")
	flag.Parse()

	ctx := context.Background()
	api := client.New(server)

	pterm.Print("\n")
	title, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Black", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("jack", pterm.FgRed.ToStyle()),
	).Srender()
	if err == nil {
		pterm.Print(title)
	}

	health, err := api.Health(ctx)
	if err != nil {
		pterm.Error.Printfln("%s is not reachable: %v", server, err)
		os.Exit(1)
	}
	pterm.Info.Printfln("Connected to %s", health.Service)

	snap, ok := newGame(ctx, api)
	if !ok {
		os.Exit(1)
	}

	for {
		printState(snap)

		actions := []string{actionNew, actionQuit}
		if snap.GameState == game.StatePlaying {
			actions = []string{actionHit, actionStand, actionQuit}
		}
		selected, _ := pterm.DefaultInteractiveSelect.WithDefaultText("Select your next action").WithOptions(actions).Show()

		var next game.Snapshot
		err = nil
		switch selected {
		case actionHit:
			next, err = api.Hit(ctx, snap.GameID)
		case actionStand:
			next, err = api.Stand(ctx, snap.GameID)
		case actionNew:
			cleanup(ctx, api, snap.GameID)
			if next, ok = newGame(ctx, api); !ok {
				continue
			}
		default:
			cleanup(ctx, api, snap.GameID)
			pterm.Info.Println("Thanks for playing!")
			return
		}
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		snap = next
	}
}

func newGame(ctx context.Context, api *client.Client) (game.Snapshot, bool) {
	spinner, _ := pterm.DefaultSpinner.Start("Dealing a new game ...")
	snap, err := api.NewGame(ctx)
	if err != nil {
		spinner.Fail(err.Error())
		return game.Snapshot{}, false
	}
	spinner.Success()
	return snap, true
}

// cleanup frees the finished game on the server. A game that is already gone is fine.
func cleanup(ctx context.Context, api *client.Client, gameID string) {
	if err := api.Delete(ctx, gameID); err != nil && !client.IsNotFound(err) {
		pterm.Warning.Printfln("could not delete game %s: %v", gameID, err)
	}
}
