package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"blackjack-service/internal/api"
	"blackjack-service/internal/config"
	"blackjack-service/internal/repo"
	"blackjack-service/internal/service"
	"blackjack-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Config
	config.LoadConfig(configPath)
	cfg := config.GlobalConfig

	// 2. Init Logger
	logger.InitLogger(logger.Options{
		Mode:    cfg.Server.Mode,
		Level:   cfg.Server.LogLevel,
		Service: cfg.Server.ServiceName,
	})
	defer logger.Log.Sync()

	logger.Log.Info("Starting server...", zap.String("mode", cfg.Server.Mode))

	// 3. Init DB & Redis
	repo.InitDB()
	repo.InitRedis()

	// 3.5 Init Services
	services := service.NewContainer(cfg.Game, repo.DB, repo.RDB)

	// 4. Init Router
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Register Routes
	api.RegisterRoutes(r, services, cfg.Server)

	// 5. Start Server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return services.Close(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Log.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Log.Info("Server exited")
}
