// Command admintoken prints a signed access token for the admin routes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/iliyamo/mufant-museum/internal/cmd/admintoken"
	"github.com/iliyamo/mufant-museum/internal/config"
)

func main() {
	app := config.MustLoad()
	cfg, err := admintoken.ParseConfig(flag.CommandLine, os.Args[1:], time.Duration(app.AccessTTLMin)*time.Minute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := admintoken.Run(app.JWTSecret, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
