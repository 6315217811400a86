// Command seed provisions a catalog into the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	seedcmd "github.com/iliyamo/mufant-museum/internal/cmd/seed"
	"github.com/iliyamo/mufant-museum/internal/config"
	"github.com/iliyamo/mufant-museum/internal/database"
	"github.com/iliyamo/mufant-museum/internal/provision"
	queue_publisher "github.com/iliyamo/mufant-museum/internal/service"
)

func main() {
	cfg, err := seedcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if cfg.List {
		_ = seedcmd.Run(context.Background(), nil, database.SQLite, cfg, os.Stdout)
		return
	}
	app := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(app.StoreOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	var opts []provision.Option
	if app.Queue.Enabled {
		opts = append(opts, provision.WithNotifier(queue_publisher.New(app.Queue.URL)))
	}
	if err := seedcmd.Run(ctx, db, app.Dialect(), cfg, os.Stdout, opts...); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Error: %v\n", err)
		db.Close()
		os.Exit(1)
	}
}
