// Command inspect prints a read-only report of the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	inspectcmd "github.com/iliyamo/mufant-museum/internal/cmd/inspect"
	"github.com/iliyamo/mufant-museum/internal/config"
	"github.com/iliyamo/mufant-museum/internal/database"
)

func main() {
	cfg, err := inspectcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	app := config.MustLoad()

	db, err := database.Open(app.StoreOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Ping(ctx, db); err != nil {
		fmt.Fprintf(os.Stderr, "✗ Error connecting to database: %v\n", err)
		db.Close()
		os.Exit(1)
	}
	if err := inspectcmd.Run(ctx, db, app.Dialect(), cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		db.Close()
		os.Exit(1)
	}
}
