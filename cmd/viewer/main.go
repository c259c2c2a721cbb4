// Command viewer serves the saved bookmarks for browsing, tagging and syncing.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sethvargo/go-envconfig"
	"go.uber.org/fx"

	"github.com/jdholdren/spdb/internal/logger"
	"github.com/jdholdren/spdb/internal/reddit"
	"github.com/jdholdren/spdb/internal/secrets"
	"github.com/jdholdren/spdb/internal/spdb"
	"github.com/jdholdren/spdb/internal/sqlite"
	"github.com/jdholdren/spdb/internal/viewer"
)

type config struct {
	Database     string `env:"DATABASE, default=saved.db"`
	Secrets      string `env:"SECRETS, default=.secrets"`
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`
	LogDir       string `env:"LOG_DIR, default=logs"`

	Port           int    `env:"PORT, default=5000"`
	HTTPSCookies   bool   `env:"HTTPS_COOKIES, default=false"`
	CookieHashKey  string `env:"COOKIE_HASH_KEY, required"`
	CookieBlockKey string `env:"COOKIE_BLOCK_KEY, required"` // 16, 24 or 32 bytes
}

// Reads the secrets file on every sync, so edits to it don't need a restart.
type secretsSyncer struct {
	path string
	repo spdb.Repository
}

func (s secretsSyncer) Sync(ctx context.Context) (spdb.SyncResult, error) {
	creds, err := secrets.LoadCredentials(s.path)
	if err != nil {
		return spdb.SyncResult{}, err
	}

	return spdb.NewSyncer(reddit.New(ctx, reddit.Config{Credentials: creds}), s.repo).Sync(ctx)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
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

	dbx, err := sqlite.Open(cfg.Database)
	if err != nil {
		log.Fatalf("error opening database: %s", err)
	}
	defer dbx.Close()

	// Start the application
	fx.New(
		fx.Supply(
			viewer.ServerConfig{
				Port:           cfg.Port,
				CookieHashKey:  []byte(cfg.CookieHashKey),
				CookieBlockKey: []byte(cfg.CookieBlockKey),
				HttpsCookies:   cfg.HTTPSCookies,
			},
			dbx,
		),
		fx.Provide(
			fx.Annotate(sqlite.New, fx.As(new(spdb.Repository))),
			func(repo spdb.Repository) viewer.Syncer {
				return secretsSyncer{path: cfg.Secrets, repo: repo}
			},
		),
		viewer.Module,
		fx.Invoke(func(viewer.Server) {}), // Start the viewer
	).Run()
}
