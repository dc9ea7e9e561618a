package session

import (
	"context"
	"fmt"
	"sync"

	"blackjack-service/internal/service/game"
	appErr "blackjack-service/pkg/errors"
	"blackjack-service/pkg/logger"
	"blackjack-service/pkg/utils/random"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DefaultIDLength      = 9
	defaultMaxIDAttempts = 5
)

// Registry owns every live game, keyed by its id. Lookups share a read lock;
// each game serializes its own actions.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*game.Game

	newID         func() string
	newDeck       func() *game.Deck
	reserver      Reserver
	onFinish      func(context.Context, game.Snapshot)
	maxIDAttempts int
}

type Option func(*Registry)

func WithIDLength(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.newID = func() string { return random.Token(n) }
		}
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

func WithDeckFactory(fn func() *game.Deck) Option {
	return func(r *Registry) { r.newDeck = fn }
}

func WithReserver(res Reserver) Option {
	return func(r *Registry) { r.reserver = res }
}

// WithOnFinish registers a hook run once per game, right after it finishes.
func WithOnFinish(fn func(context.Context, game.Snapshot)) Option {
	return func(r *Registry) { r.onFinish = fn }
}

func WithMaxIDAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxIDAttempts = n
		}
	}
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		games:         make(map[string]*game.Game),
		newID:         func() string { return random.Token(DefaultIDLength) },
		newDeck:       game.NewDeck,
		maxIDAttempts: defaultMaxIDAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Create(ctx context.Context) (game.Snapshot, error) {
	for attempt := 0; attempt < r.maxIDAttempts; attempt++ {
		id := r.newID()
		if r.exists(id) {
			continue
		}
		ok, err := r.reserve(ctx, id)
		if err != nil {
			return game.Snapshot{}, err
		}
		if !ok {
			logger.Log.Warn("game id already reserved", zap.String("gameID", id))
			continue
		}

		g, err := game.New(id, r.newDeck())
		if err != nil {
			r.release(ctx, id)
			return game.Snapshot{}, err
		}

		r.mu.Lock()
		if _, taken := r.games[id]; taken {
			r.mu.Unlock()
			r.release(ctx, id)
			continue
		}
		r.games[id] = g
		r.mu.Unlock()

		snap := g.Snapshot()
		logger.Log.Debug("game created", zap.String("gameID", id), zap.String("state", string(snap.GameState)))
		r.finished(ctx, snap)
		return snap, nil
	}
	return game.Snapshot{}, appErr.ErrIDSpaceExhausted
}

func (r *Registry) get(id string) (*game.Game, error) {
	if id == "" {
		return nil, appErr.ErrGameIDRequired
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	if !ok {
		return nil, fmt.Errorf("game %s: %w", id, appErr.ErrGameNotFound)
	}
	return g, nil
}

func (r *Registry) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.games[id]
	return ok
}

func (r *Registry) Hit(ctx context.Context, id string) (game.Snapshot, error) {
	g, err := r.get(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	snap, err := g.Hit()
	if err != nil {
		return game.Snapshot{}, err
	}
	r.finished(ctx, snap)
	return snap, nil
}

func (r *Registry) Stand(ctx context.Context, id string) (game.Snapshot, error) {
	g, err := r.get(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	snap, err := g.Stand()
	if err != nil {
		return game.Snapshot{}, err
	}
	r.finished(ctx, snap)
	return snap, nil
}

func (r *Registry) Status(ctx context.Context, id string) (game.Snapshot, error) {
	g, err := r.get(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return g.Snapshot(), nil
}

// Delete removes a game and reports whether it existed.
func (r *Registry) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()
	_, ok := r.games[id]
	delete(r.games, id)
	r.mu.Unlock()

	if ok {
		r.release(ctx, id)
	}
	return ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Close drops every live game and releases their reservations.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	ids := make([]string, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	r.games = make(map[string]*game.Game)
	r.mu.Unlock()

	if r.reserver == nil {
		return nil
	}
	var err error
	for _, id := range ids {
		err = multierr.Append(err, r.reserver.Release(ctx, id))
	}
	return err
}

// finished fires the hook for a snapshot that reached the end. Hit and Stand
// only succeed from the playing state, so each game passes here at most once.
func (r *Registry) finished(ctx context.Context, snap game.Snapshot) {
	if !snap.Finished() {
		return
	}
	logger.Log.Info("game finished",
		zap.String("gameID", snap.GameID),
		zap.String("result", string(snap.Result)),
		zap.Int("player", snap.PlayerHand.Value),
		zap.Int("dealer", snap.DealerHand.Value),
	)
	if r.onFinish != nil {
		r.onFinish(ctx, snap)
	}
}

func (r *Registry) reserve(ctx context.Context, id string) (bool, error) {
	if r.reserver == nil {
		return true, nil
	}
	return r.reserver.Reserve(ctx, id)
}

func (r *Registry) release(ctx context.Context, id string) {
	if r.reserver == nil {
		return
	}
	if err := r.reserver.Release(ctx, id); err != nil {
		logger.Log.Warn("failed to release game id", zap.String("gameID", id), zap.Error(err))
	}
}
