// Package continental parses backend flags and launches the game core.
package continental

import (
	"context"
	"flag"
	"fmt"
	"log"

	entrypoint "github.com/louisbranch/continental/internal/platform/cmd"

	"github.com/louisbranch/continental/internal/game/commitlog"
	logsqlite "github.com/louisbranch/continental/internal/game/commitlog/sqlite"
	"github.com/louisbranch/continental/internal/game/reducer"
	"github.com/louisbranch/continental/internal/game/subscription"
)

// Config holds backend command configuration.
type Config struct {
	DBPath         string `env:"CONTINENTAL_DB_PATH" envDefault:"continental.db"`
	Channel        string `env:"CONTINENTAL_CHANNEL" envDefault:"continental"`
	Retention      int64  `env:"CONTINENTAL_RETENTION" envDefault:"10000"`
	SecondaryDepth int    `env:"CONTINENTAL_SECONDARY_DEPTH" envDefault:"5"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite commit log")
	fs.StringVar(&cfg.Channel, "channel", cfg.Channel, "Channel to subscribe on startup")
	fs.Int64Var(&cfg.Retention, "retention", cfg.Retention, "Commits retained per channel")
	fs.IntVar(&cfg.SecondaryDepth, "secondary-depth", cfg.SecondaryDepth, "Secondary commit recursion cap")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the game backend: commit log, snapshot store, and the
// subscription worker for the configured channel. It blocks until the
// context is cancelled, then checkpoints and shuts down.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceContinental, func(ctx context.Context) error {
		notifier := commitlog.NewNotifier()
		store, err := logsqlite.Open(cfg.DBPath, notifier, logsqlite.WithRetention(cfg.Retention))
		if err != nil {
			return fmt.Errorf("open commit log: %w", err)
		}
		defer store.Close()

		manager := subscription.NewManager(store, notifier, store,
			reducer.Config{MaxDepth: cfg.SecondaryDepth})
		if err := manager.Start(ctx, cfg.Channel); err != nil {
			return fmt.Errorf("start subscription: %w", err)
		}
		log.Printf("continental: folding channel %s from %s", cfg.Channel, cfg.DBPath)

		<-ctx.Done()

		stopCtx := context.Background()
		if err := manager.Stop(stopCtx, cfg.Channel); err != nil {
			return fmt.Errorf("stop subscription: %w", err)
		}
		log.Printf("continental: stopped channel %s", cfg.Channel)
		return nil
	})
}
