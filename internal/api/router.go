package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"blackjack-service/internal/config"
	"blackjack-service/internal/middleware"
	"blackjack-service/internal/service"
	"blackjack-service/internal/service/game"
	"blackjack-service/internal/ws"
	appErr "blackjack-service/pkg/errors"
	"blackjack-service/pkg/logger"
	"blackjack-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const isoLayout = "2006-01-02T15:04:05.000Z07:00"

type Handler struct {
	services    *service.Container
	serviceName string
}

func RegisterRoutes(r *gin.Engine, services *service.Container, cfg config.ServerConfig) {
	registerValidators()

	handler := &Handler{services: services, serviceName: cfg.ServiceName}
	wsHandler := ws.NewHandler(services.Sessions, cfg.AllowedOrigins)

	r.Use(middleware.RequestID(), middleware.AccessLog(), middleware.CORS(cfg.AllowedOrigins))

	r.GET("/health", handler.Health)

	gameGroup := r.Group("/api/game")
	{
		gameGroup.POST("/new", handler.NewGame)
		gameGroup.POST("/hit", handler.Hit)
		gameGroup.POST("/stand", handler.Stand)
		gameGroup.GET("/status/:gameId", handler.Status)
		gameGroup.DELETE("/:gameId", handler.DeleteGame)
		gameGroup.GET("/stats", handler.Stats)
		gameGroup.GET("/history", handler.History)
		gameGroup.GET("/history/summary", handler.HistorySummary)
	}

	r.GET("/ws/game/:gameId", wsHandler.HandleGameWS)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})
}

var validatorsOnce sync.Once

// registerValidators adds the "gameid" tag: 1-64 ASCII letters or digits.
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("gameid", validGameID); err != nil {
			logger.Log.Fatal("failed to register gameid validator", zap.Error(err))
		}
	})
}

func validGameID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if len(id) == 0 || len(id) > 64 {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		if !(ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9') {
			return false
		}
	}
	return true
}

type gameActionBody struct {
	GameID string `json:"gameId" binding:"required"`
}

type gameURI struct {
	GameID string `uri:"gameId" binding:"required"`
}

type historyQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

type statsResult struct {
	ActiveGames int    `json:"activeGames"`
	Timestamp   string `json:"timestamp"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": isoTimestamp(),
		"service":   h.serviceName,
	})
}

func (h *Handler) NewGame(c *gin.Context) {
	snap, err := h.services.Sessions.Create(c.Request.Context())
	if err != nil {
		logger.Log.Error("Error creating new game", zap.Error(err))
		response.ServerError(c, "Failed to create new game", err)
		return
	}
	response.Created(c, snap, "New game created successfully")
}

func (h *Handler) Hit(c *gin.Context) {
	gameID, ok := bindActionID(c)
	if !ok {
		return
	}

	snap, err := h.services.Sessions.Hit(c.Request.Context(), gameID)
	if err != nil {
		h.handleGameError(c, "hit", err)
		return
	}
	response.Success(c, snap, "Card dealt successfully")
}

func (h *Handler) Stand(c *gin.Context) {
	gameID, ok := bindActionID(c)
	if !ok {
		return
	}

	snap, err := h.services.Sessions.Stand(c.Request.Context(), gameID)
	if err != nil {
		h.handleGameError(c, "stand", err)
		return
	}
	response.Success(c, snap, "Stand action completed")
}

func (h *Handler) Status(c *gin.Context) {
	var uri gameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, http.StatusBadRequest, "Game ID is required")
		return
	}
	if !wellFormedID(uri.GameID) {
		response.Error(c, http.StatusNotFound, "Game not found")
		return
	}

	snap, err := h.services.Sessions.Status(c.Request.Context(), uri.GameID)
	if err != nil {
		h.handleGameError(c, "get game status", err)
		return
	}
	response.Success(c, snap, "Game status retrieved successfully")
}

func (h *Handler) DeleteGame(c *gin.Context) {
	var uri gameURI
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Error(c, http.StatusBadRequest, "Game ID is required")
		return
	}
	if !wellFormedID(uri.GameID) {
		response.Error(c, http.StatusNotFound, "Game not found")
		return
	}

	if !h.services.Sessions.Delete(c.Request.Context(), uri.GameID) {
		response.Error(c, http.StatusNotFound, "Game not found")
		return
	}
	response.Success(c, nil, "Game deleted successfully")
}

func (h *Handler) Stats(c *gin.Context) {
	response.Success(c, statsResult{
		ActiveGames: h.services.Sessions.Count(),
		Timestamp:   isoTimestamp(),
	}, "Statistics retrieved successfully")
}

func (h *Handler) History(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	limit := game.ClampHistoryLimit(q.Limit)
	items, err := h.services.Game.Recent(c.Request.Context(), limit)
	if err != nil {
		response.ServerError(c, "Failed to get game history", err)
		return
	}
	response.Success(c, gin.H{
		"items": items,
		"limit": limit,
	}, "Game history retrieved successfully")
}

func (h *Handler) HistorySummary(c *gin.Context) {
	summary, err := h.services.Game.Summary(c.Request.Context())
	if err != nil {
		response.ServerError(c, "Failed to get game summary", err)
		return
	}
	response.Success(c, summary, "Game summary retrieved successfully")
}

func (h *Handler) handleGameError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, appErr.ErrGameNotFound):
		response.Error(c, http.StatusNotFound, "Game not found")
	case errors.Is(err, appErr.ErrGameIDRequired):
		response.Error(c, http.StatusBadRequest, "Game ID is required")
	case errors.Is(err, appErr.ErrIllegalAction):
		response.Error(c, http.StatusBadRequest, fmt.Sprintf("Cannot %s when game is not in playing state", action))
	default:
		logger.Log.Error("game action failed", zap.String("action", action), zap.Error(err))
		response.ServerError(c, "Failed to "+action, err)
	}
}

// bindActionID reads gameId from a hit/stand body. Only a missing id is a bad
// request; an id of the wrong type or shape can never name a live game, so it
// answers like any other unknown id.
func bindActionID(c *gin.Context) (string, bool) {
	var body gameActionBody
	err := c.ShouldBindJSON(&body)

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		response.Error(c, http.StatusNotFound, "Game not found")
		return "", false
	case err != nil:
		response.Error(c, http.StatusBadRequest, "Game ID is required")
		return "", false
	case !wellFormedID(body.GameID):
		response.Error(c, http.StatusNotFound, "Game not found")
		return "", false
	}
	return body.GameID, true
}

// wellFormedID runs the "gameid" rule; ids the registry issues are alphanumeric.
func wellFormedID(id string) bool {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return true
	}
	return v.Var(id, "gameid") == nil
}

func isoTimestamp() string {
	return time.Now().UTC().Format(isoLayout)
}
