package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blackjack-service/internal/service/game"
	"blackjack-service/internal/service/session"
	"blackjack-service/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type frame struct {
	Type string          `json:"type"`
	Seq  int64           `json:"seq"`
	Data json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*session.Registry, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// player 10+9, dealer 10+7, then a six for the player
	reg := session.NewRegistry(session.WithDeckFactory(func() *game.Deck {
		return game.NewOrderedDeck(
			game.Card{Suit: game.Spades, Rank: game.Ten},
			game.Card{Suit: game.Diamonds, Rank: game.Ten},
			game.Card{Suit: game.Hearts, Rank: game.Nine},
			game.Card{Suit: game.Clubs, Rank: game.Seven},
			game.Card{Suit: game.Clubs, Rank: game.Six},
		)
	}))

	r := gin.New()
	r.GET("/ws/game/:gameId", ws.NewHandler(reg, []string{"http://localhost:3000"}).HandleGameWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return reg, srv
}

func dial(t *testing.T, srv *httptest.Server, gameID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/game/" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return f
}

func snapshotOf(t *testing.T, f frame) game.Snapshot {
	t.Helper()
	if f.Type != "state" {
		t.Fatalf("expected state frame, got %s: %s", f.Type, f.Data)
	}
	var snap game.Snapshot
	if err := json.Unmarshal(f.Data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestGameOverSocket(t *testing.T) {
	reg, srv := setup(t)
	created, err := reg.Create(context.Background())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	conn := dial(t, srv, created.GameID)

	first := readFrame(t, conn)
	if first.Seq != 1 {
		t.Fatalf("expected seq 1, got %d", first.Seq)
	}
	initial := snapshotOf(t, first)
	if initial.GameState != game.StatePlaying || initial.PlayerHand.Value != 19 {
		t.Fatalf("unexpected initial state: %+v", initial)
	}
	if !initial.DealerHand.Cards[1].Hidden {
		t.Fatalf("dealer hole card should be hidden")
	}

	if err := conn.WriteJSON(map[string]string{"type": "stand"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	done := snapshotOf(t, readFrame(t, conn))
	if done.GameState != game.StateFinished || done.Result != game.ResultPlayerWins {
		t.Fatalf("expected player win, got %+v", done)
	}
	if done.DealerHand.Value != 17 {
		t.Fatalf("expected dealer 17, got %d", done.DealerHand.Value)
	}

	if err := conn.WriteJSON(map[string]string{"type": "hit"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	rejected := readFrame(t, conn)
	if rejected.Type != "error" || !strings.Contains(string(rejected.Data), "Cannot hit") {
		t.Fatalf("expected illegal action error, got %s %s", rejected.Type, rejected.Data)
	}
	if rejected.Seq != 3 {
		t.Fatalf("expected seq 3, got %d", rejected.Seq)
	}
}

func TestSocketRejectsBadFrames(t *testing.T) {
	reg, srv := setup(t)
	created, err := reg.Create(context.Background())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	conn := dial(t, srv, created.GameID)
	readFrame(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "error" || !strings.Contains(string(f.Data), "invalid payload") {
		t.Fatalf("expected invalid payload, got %s %s", f.Type, f.Data)
	}

	if err := conn.WriteJSON(map[string]string{"type": "double"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if f := readFrame(t, conn); f.Type != "error" || !strings.Contains(string(f.Data), "unknown action") {
		t.Fatalf("expected unknown action, got %s %s", f.Type, f.Data)
	}

	if err := conn.WriteJSON(map[string]string{"type": "hit"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	hit := snapshotOf(t, readFrame(t, conn))
	if hit.GameState != game.StateFinished || hit.Result != game.ResultPlayerBust {
		t.Fatalf("expected player bust at 25, got %+v", hit)
	}
}

func TestSocketUnknownGame(t *testing.T) {
	_, srv := setup(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/game/nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}

func TestSocketChecksOrigin(t *testing.T) {
	reg, srv := setup(t)
	created, err := reg.Create(context.Background())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/game/" + created.GameID

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})
	if err == nil {
		t.Fatalf("expected unlisted origin to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 response, got %+v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://localhost:3000"}})
	if err != nil {
		t.Fatalf("listed origin should connect: %v", err)
	}
	defer conn.Close()
	if f := readFrame(t, conn); f.Type != "state" {
		t.Fatalf("expected initial state, got %s", f.Type)
	}
}
