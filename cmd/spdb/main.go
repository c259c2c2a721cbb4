// Command spdb manages the tags of the saved bookmarks from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jdholdren/spdb/internal/logger"
	"github.com/jdholdren/spdb/internal/sqlite"
)

type app struct {
	dbPath      string
	secretsPath string
	verbose     bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "spdb",
		Short:         "Browse and tag your saved reddit posts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts := logger.Options{Level: slog.LevelWarn}
			if a.verbose {
				opts.Level = slog.LevelDebug
			}
			l, _, err := logger.New(opts)
			if err != nil {
				return err
			}
			slog.SetDefault(l)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "saved.db", "database path")
	rootCmd.PersistentFlags().StringVar(&a.secretsPath, "secrets", ".secrets", "reddit secrets file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")

	rootCmd.AddCommand(a.listCmd())
	rootCmd.AddCommand(a.tagsCmd())
	rootCmd.AddCommand(a.createTagsCmd())
	rootCmd.AddCommand(a.tagCmd())
	rootCmd.AddCommand(a.untagCmd())
	rootCmd.AddCommand(a.uncategorisedCmd())

	return rootCmd
}

// Opens the store, handing back the repo and a func to close it with.
func (a *app) repo() (sqlite.Repo, func() error, error) {
	dbx, err := sqlite.Open(a.dbPath)
	if err != nil {
		return sqlite.Repo{}, nil, err
	}

	return sqlite.New(dbx), dbx.Close, nil
}
