// Package config loads client settings from defaults, an optional .env
// file and CHESSDB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvAPIURL        = "CHESSDB_API_URL"
	EnvTimeout       = "CHESSDB_TIMEOUT"
	EnvHistoryFile   = "CHESSDB_HISTORY"
	EnvCachePath     = "CHESSDB_CACHE"
	EnvTopMovesLimit = "CHESSDB_TOP_LIMIT"
	EnvVerbose       = "CHESSDB_VERBOSE"
)

const (
	DefaultAPIURL        = "http://127.0.0.1:80"
	DefaultTimeout       = 30 * time.Second
	DefaultTopMovesLimit = 10
)

// Config holds client configuration. An empty CachePath disables the game cache.
type Config struct {
	APIURL        string        `validate:"required,url"`
	Timeout       time.Duration `validate:"gt=0"`
	HistoryFile   string
	CachePath     string
	TopMovesLimit int `validate:"min=1,max=100"`
	Verbose       bool
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		APIURL:        DefaultAPIURL,
		Timeout:       DefaultTimeout,
		HistoryFile:   homePath(".chessdb_history"),
		CachePath:     homePath(filepath.Join(".chessdb", "games.db")),
		TopMovesLimit: DefaultTopMovesLimit,
	}
}

func homePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, name)
}

// Load reads envFile if it exists, then applies the environment over the
// defaults. Variables already set in the process win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := lookup(EnvAPIURL); ok {
		c.APIURL = v
	}
	if v, ok := lookup(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v, ok := os.LookupEnv(EnvHistoryFile); ok {
		c.HistoryFile = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvCachePath); ok {
		c.CachePath = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvTopMovesLimit); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTopMovesLimit, err)
		}
		c.TopMovesLimit = n
	}
	if v, ok := lookup(EnvVerbose); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVerbose, err)
		}
		c.Verbose = b
	}
	return nil
}

// lookup returns a set, non-blank variable.
func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

var validate = validator.New()

// Validate checks field constraints after flags have been applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return err
		}
		msgs := make([]string, 0, len(errs))
		for _, fe := range errs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}
