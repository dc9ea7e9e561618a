package client_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blackjack-service/internal/api"
	"blackjack-service/internal/config"
	"blackjack-service/internal/model"
	"blackjack-service/internal/service"
	"blackjack-service/internal/service/game"
	"blackjack-service/internal/service/session"
	"blackjack-service/pkg/client"
	appErr "blackjack-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newServer(t *testing.T) *client.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.GameRecord{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	services := service.NewContainer(config.GameConfig{IDLength: 9, MaxIDAttempts: 5}, db, nil,
		session.WithDeckFactory(func() *game.Deck {
			return game.NewOrderedDeck(
				game.Card{Suit: game.Spades, Rank: game.Ten},
				game.Card{Suit: game.Diamonds, Rank: game.Ten},
				game.Card{Suit: game.Hearts, Rank: game.Nine},
				game.Card{Suit: game.Clubs, Rank: game.Seven},
				game.Card{Suit: game.Clubs, Rank: game.Two},
			)
		}),
	)
	r := gin.New()
	api.RegisterRoutes(r, services, config.ServerConfig{ServiceName: "Blackjack Game API", AllowedOrigins: []string{"*"}})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return client.New(srv.URL + "/")
}

func TestClientPlaysAGame(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	snap, err := c.NewGame(ctx)
	if err != nil {
		t.Fatalf("new game failed: %v", err)
	}
	if snap.GameID == "" || snap.GameState != game.StatePlaying {
		t.Fatalf("unexpected new game: %+v", snap)
	}

	hit, err := c.Hit(ctx, snap.GameID)
	if err != nil {
		t.Fatalf("hit failed: %v", err)
	}
	if hit.PlayerHand.Value != 21 || hit.GameState != game.StatePlaying {
		t.Fatalf("expected three-card 21 still in play, got %+v", hit)
	}

	done, err := c.Stand(ctx, snap.GameID)
	if err != nil {
		t.Fatalf("stand failed: %v", err)
	}
	if done.Result != game.ResultPlayerWins {
		t.Fatalf("expected player win, got %+v", done)
	}

	status, err := c.Status(ctx, snap.GameID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Result != game.ResultPlayerWins {
		t.Fatalf("status should match stand result, got %+v", status)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.ActiveGames != 1 {
		t.Fatalf("expected 1 active game, got %d", stats.ActiveGames)
	}

	if err := c.Delete(ctx, snap.GameID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
}

func TestClientSurfacesServerMessages(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	_, err := c.Hit(ctx, "nonexistent")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "Game not found" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
	if !client.IsNotFound(err) {
		t.Fatalf("IsNotFound should report 404")
	}

	snap, err := c.NewGame(ctx)
	if err != nil {
		t.Fatalf("new game failed: %v", err)
	}
	if _, err := c.Stand(ctx, snap.GameID); err != nil {
		t.Fatalf("stand failed: %v", err)
	}
	_, err = c.Hit(ctx, snap.GameID)
	if !errors.As(err, &apiErr) || apiErr.Message != "Cannot hit when game is not in playing state" {
		t.Fatalf("expected illegal action message, got %v", err)
	}

	if _, err := c.Stand(ctx, ""); !errors.Is(err, appErr.ErrGameIDRequired) {
		t.Fatalf("expected ErrGameIDRequired, got %v", err)
	}
	if err := c.Delete(ctx, "missing00"); !client.IsNotFound(err) {
		t.Fatalf("expected 404 on delete, got %v", err)
	}
}

func TestClientHealth(t *testing.T) {
	c := newServer(t)
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if h.Status != "OK" || h.Service != "Blackjack Game API" {
		t.Fatalf("unexpected health: %+v", h)
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := client.New(url)
	if _, err := c.Health(context.Background()); err == nil || !strings.Contains(err.Error(), "server is not responding") {
		t.Fatalf("expected unreachable error, got %v", err)
	}
	if _, err := c.NewGame(context.Background()); err == nil || !strings.Contains(err.Error(), "Failed to create new game") {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
}
