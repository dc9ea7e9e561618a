package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`     // debug, release
	LogLevel        string        `mapstructure:"logLevel"` // empty keeps the mode's default
	ServiceName     string        `mapstructure:"serviceName"`
	AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type GameConfig struct {
	IDLength      int           `mapstructure:"idLength"`
	MaxIDAttempts int           `mapstructure:"maxIdAttempts"`
	ReserveTTL    time.Duration `mapstructure:"reserveTTL"`
	ReservePrefix string        `mapstructure:"reservePrefix"` // redis keys are <prefix>:game:<id>
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig is optional; an empty Addr disables cross-replica id reservation.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

var GlobalConfig *Config

func LoadConfig(path string) {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}
	GlobalConfig = cfg
}

// Load reads path if it exists and layers defaults and environment on top.
// PORT overrides server.port; BLACKJACK_SERVER_MODE style variables override the rest.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("blackjack")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "PORT", "BLACKJACK_SERVER_PORT"); err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.logLevel", "")
	v.SetDefault("server.serviceName", "Blackjack Game API")
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.shutdownTimeout", 10*time.Second)

	v.SetDefault("game.idLength", 9)
	v.SetDefault("game.maxIdAttempts", 5)
	v.SetDefault("game.reserveTTL", 24*time.Hour)
	v.SetDefault("game.reservePrefix", "blackjack")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:blackjack?mode=memory&cache=shared")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
}
