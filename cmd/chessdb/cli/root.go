package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"chessdb/internal/client/api"
	"chessdb/internal/client/cache"
	"chessdb/internal/client/display"
	"chessdb/internal/client/session"
	"chessdb/internal/config"
	"chessdb/internal/query"
	"chessdb/internal/rules"
)

type options struct {
	envFile string
	apiURL  string
	timeout time.Duration
	cache   string
	history string
	limit   int
	verbose bool
	noColor bool
}

// app is the wired client shared by every subcommand.
type app struct {
	cfg    *config.Config
	level  *slog.LevelVar
	logger *slog.Logger
	client *api.Client
	store  *cache.Store
	games  cache.ReadThrough
}

func (a *app) newSession(ctx context.Context) *session.Session {
	builder := query.Builder{TopMovesLimit: a.cfg.TopMovesLimit}
	return session.New(ctx, rules.NewEngine(), a.client, a.games, builder, a.logger)
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("closing game cache", slog.String("error", err.Error()))
		}
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}
	var a *app

	rootCmd := &cobra.Command{
		Use:   "chessdb",
		Short: "Browse a chess game database by position",
		Long: `chessdb explores a database of recorded chess games.

In search mode you move pieces on a free board; every new position is
queried for the most played replies, matching games and outcomes by
rating band. Opening a game switches to replay mode, where the game can
be stepped through move by move.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = setup(cmd, opts)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.Context(), a)
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "Environment file to load")
	flags.StringVar(&opts.apiURL, "api-url", config.DefaultAPIURL, "Search API base URL (env: "+config.EnvAPIURL+")")
	flags.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout, "HTTP request timeout (env: "+config.EnvTimeout+")")
	flags.StringVar(&opts.cache, "cache", "", "Game cache database, empty string disables (env: "+config.EnvCachePath+")")
	flags.StringVar(&opts.history, "history", "", "REPL history file (env: "+config.EnvHistoryFile+")")
	flags.IntVar(&opts.limit, "limit", config.DefaultTopMovesLimit, "Number of top moves to list (env: "+config.EnvTopMovesLimit+")")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging (env: "+config.EnvVerbose+")")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newGameCmd(func() *app { return a }))
	rootCmd.AddCommand(newCanonCmd())

	return rootCmd
}

// setup merges configuration sources, flags last, and wires the client.
func setup(cmd *cobra.Command, opts *options) (*app, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = opts.apiURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("cache") {
		cfg.CachePath = opts.cache
	}
	if flags.Changed("history") {
		cfg.HistoryFile = opts.history
	}
	if flags.Changed("limit") {
		cfg.TopMovesLimit = opts.limit
	}
	if flags.Changed("verbose") {
		cfg.Verbose = opts.verbose
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if opts.noColor {
		display.SetColor(false)
	} else {
		display.DetectColor(os.Stdout)
	}

	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	if cfg.Verbose {
		level.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a := &app{
		cfg:    cfg,
		level:  level,
		logger: logger,
		client: api.New(cfg.APIURL, cfg.Timeout, logger),
	}
	a.store = openCache(cfg.CachePath, logger)
	a.games = cache.ReadThrough{Store: a.store, Source: a.client}
	return a, nil
}

// openCache returns nil when the cache is disabled or cannot be opened.
func openCache(path string, logger *slog.Logger) *cache.Store {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		logger.Warn("game cache disabled", slog.String("error", err.Error()))
		return nil
	}
	store, err := cache.Open(path, logger)
	if err != nil {
		logger.Warn("game cache disabled", slog.String("error", fmt.Sprint(err)))
		return nil
	}
	return store
}
