// Command sync mirrors the configured user's saved reddit items into the local store.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sethvargo/go-envconfig"

	"github.com/jdholdren/spdb/internal/logger"
	"github.com/jdholdren/spdb/internal/reddit"
	"github.com/jdholdren/spdb/internal/secrets"
	"github.com/jdholdren/spdb/internal/spdb"
	"github.com/jdholdren/spdb/internal/sqlite"
)

type config struct {
	Database     string `env:"DATABASE, default=saved.db"`
	Secrets      string `env:"SECRETS, default=.secrets"`
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
	LogDir       string `env:"LOG_DIR, default=logs"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	l, closer, err := logger.New(logger.Options{Format: cfg.LoggerFormat, Dir: cfg.LogDir})
	if err != nil {
		log.Fatalf("error creating logger: %s", err)
	}
	defer closer.Close()
	slog.SetDefault(l)

	if err := run(ctx, cfg); err != nil {
		slog.Error("sync failed", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	creds, err := secrets.LoadCredentials(cfg.Secrets)
	if err != nil {
		return err
	}

	dbx, err := sqlite.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer dbx.Close()

	client := reddit.New(ctx, reddit.Config{Credentials: creds})
	res, err := spdb.NewSyncer(client, sqlite.New(dbx)).Sync(ctx)
	if err != nil {
		return err
	}

	slog.Info("sync complete", "inserted", res.Inserted, "deleted", res.Deleted)
	return nil
}
