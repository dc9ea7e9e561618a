package repo

import (
	"fmt"
	"strings"

	"blackjack-service/internal/config"
	"blackjack-service/internal/model"
	"blackjack-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	conf := config.GlobalConfig.Database
	var err error
	DB, err = OpenDB(conf)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database",
			zap.String("driver", conf.Driver),
			zap.Error(err),
		)
	}

	if err := DB.AutoMigrate(&model.GameRecord{}); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}
}

func OpenDB(conf config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(conf.Driver) {
	case "", "sqlite":
		dialector = sqlite.Open(conf.DSN)
	case "postgres":
		dialector = postgres.Open(conf.DSN)
	case "mysql":
		dialector = mysql.Open(conf.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}
	return gorm.Open(dialector, &gorm.Config{})
}
