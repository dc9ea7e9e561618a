package service

import (
	"context"
	"time"

	"blackjack-service/internal/config"
	"blackjack-service/internal/service/game"
	"blackjack-service/internal/service/session"
	"blackjack-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const recordTimeout = 2 * time.Second

type Container struct {
	Sessions *session.Registry
	Game     *game.Service

	db  *gorm.DB
	rdb *redis.Client
}

// NewContainer wires the registry to the round ledger. rdb may be nil.
func NewContainer(cfg config.GameConfig, db *gorm.DB, rdb *redis.Client, opts ...session.Option) *Container {
	c := &Container{
		Game: game.NewService(db),
		db:   db,
		rdb:  rdb,
	}

	base := []session.Option{
		session.WithIDLength(cfg.IDLength),
		session.WithMaxIDAttempts(cfg.MaxIDAttempts),
		session.WithOnFinish(c.recordFinished),
	}
	if rdb != nil {
		base = append(base, session.WithReserver(session.NewRedisReserver(rdb, cfg.ReservePrefix, cfg.ReserveTTL)))
	}
	c.Sessions = session.NewRegistry(append(base, opts...)...)
	return c
}

// recordFinished never fails the game action; ledger trouble is only logged.
func (c *Container) recordFinished(ctx context.Context, snap game.Snapshot) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if _, err := c.Game.Record(ctx, snap); err != nil {
		logger.Log.Error("failed to record finished game",
			zap.String("gameID", snap.GameID),
			zap.Error(err),
		)
	}
}

func (c *Container) Close(ctx context.Context) error {
	err := c.Sessions.Close(ctx)
	if c.db != nil {
		if sqlDB, dbErr := c.db.DB(); dbErr != nil {
			err = multierr.Append(err, dbErr)
		} else {
			err = multierr.Append(err, sqlDB.Close())
		}
	}
	if c.rdb != nil {
		err = multierr.Append(err, c.rdb.Close())
	}
	return err
}
