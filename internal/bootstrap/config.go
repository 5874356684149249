package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort          string  `mapstructure:"SERVER_PORT"`
	GrpcPort            string  `mapstructure:"GRPC_PORT"`
	RedisUrl            string  `mapstructure:"REDIS_URL"`
	MongoUri            string  `mapstructure:"MONGO_URI"`
	MongoDatabase       string  `mapstructure:"MONGO_DATABASE"`
	Storage             string  `mapstructure:"STORAGE"`
	IsLocalCors         bool    `mapstructure:"LOCAL_CORS"`
	LogLevel            string  `mapstructure:"LOG_LEVEL"`
	DefaultSize         int     `mapstructure:"DEFAULT_BOARD_SIZE"`
	DefaultKomi         float64 `mapstructure:"DEFAULT_KOMI"`
	DefaultRules        string  `mapstructure:"DEFAULT_RULES"`
	AutoScoreStonesOnly bool    `mapstructure:"AUTO_SCORE_STONES_ONLY"`
	// zero keeps cached SGF records forever
	SgfCacheTTL time.Duration `mapstructure:"SGF_CACHE_TTL"`
}

const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

var configKeys = map[string]any{
	"SERVER_PORT":            "8080",
	"GRPC_PORT":              "8082",
	"REDIS_URL":              "localhost:6379",
	"MONGO_URI":              "mongodb://localhost:27017",
	"MONGO_DATABASE":         "goban",
	"STORAGE":                StorageMemory,
	"LOCAL_CORS":             false,
	"LOG_LEVEL":              "info",
	"DEFAULT_BOARD_SIZE":     19,
	"DEFAULT_KOMI":           6.5,
	"DEFAULT_RULES":          "japanese",
	"AUTO_SCORE_STONES_ONLY": false,
	"SGF_CACHE_TTL":          "0s",
}

// Setup reads cfgPath when it exists; environment variables override the file
// and defaults fill the rest.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, def := range configKeys {
		v.SetDefault(key, def)
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Storage = strings.ToLower(cfg.Storage)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func (c Config) Validate() error {
	var result *multierror.Error
	if c.ServerPort == "" {
		result = multierror.Append(result, errors.New("SERVER_PORT is empty"))
	}
	if c.DefaultSize < 2 || c.DefaultSize > 25 {
		result = multierror.Append(result, fmt.Errorf("DEFAULT_BOARD_SIZE %d is out of range 2..25", c.DefaultSize))
	}
	switch c.Storage {
	case StorageMemory:
	case StorageMongo:
		if c.MongoUri == "" {
			result = multierror.Append(result, errors.New("MONGO_URI is required for mongo storage"))
		}
		if c.RedisUrl == "" {
			result = multierror.Append(result, errors.New("REDIS_URL is required for mongo storage"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown STORAGE %q", c.Storage))
	}
	return result.ErrorOrNil()
}
