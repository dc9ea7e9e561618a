package model

import (
	"time"

	"gorm.io/datatypes"
)

// GameRecord is one finished round. Live games are never stored; only the
// final outcome lands here once a round ends.
type GameRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	GameID      string `gorm:"size:32;index;not null" json:"gameId"`
	Result      string `gorm:"size:32;index;not null" json:"result"`
	PlayerValue int    `json:"playerValue"`
	DealerValue int    `json:"dealerValue"`
	// card lists as served to clients, e.g. [{"suit":"♠","rank":"A","value":11}]
	PlayerCards datatypes.JSON `json:"playerCards"`
	DealerCards datatypes.JSON `json:"dealerCards"`
	CardsDealt  int            `json:"cardsDealt"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
}
