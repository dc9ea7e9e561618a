package game

import (
	"context"
	"encoding/json"
	"fmt"

	"blackjack-service/internal/model"
	appErr "blackjack-service/pkg/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service keeps the ledger of finished rounds.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type Summary struct {
	Total   int64            `json:"total"`
	Results map[Result]int64 `json:"results"`
}

func (s *Service) Record(ctx context.Context, snap Snapshot) (*model.GameRecord, error) {
	if !snap.Finished() {
		return nil, fmt.Errorf("record %s: %w", snap.GameID, appErr.ErrGameNotFinished)
	}
	playerCards, err := toJSON(snap.PlayerHand.Cards)
	if err != nil {
		return nil, err
	}
	dealerCards, err := toJSON(snap.DealerHand.Cards)
	if err != nil {
		return nil, err
	}

	record := &model.GameRecord{
		GameID:      snap.GameID,
		Result:      string(snap.Result),
		PlayerValue: snap.PlayerHand.Value,
		DealerValue: snap.DealerHand.Value,
		PlayerCards: playerCards,
		DealerCards: dealerCards,
		CardsDealt:  len(snap.PlayerHand.Cards) + len(snap.DealerHand.Cards),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Recent returns the newest records first. A non-positive limit means the default.
func (s *Service) Recent(ctx context.Context, limit int) ([]model.GameRecord, error) {
	limit = ClampHistoryLimit(limit)
	var records []model.GameRecord
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	default:
		return limit
	}
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var rows []struct {
		Result string
		Count  int64
	}
	err := s.db.WithContext(ctx).
		Model(&model.GameRecord{}).
		Select("result, count(*) as count").
		Group("result").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &Summary{Results: make(map[Result]int64, len(Results))}
	for _, r := range Results {
		summary.Results[r] = 0
	}
	for _, row := range rows {
		summary.Results[Result(row.Result)] = row.Count
		summary.Total += row.Count
	}
	return summary, nil
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
