// Package admintoken mints access tokens for the admin routes without a
// login round trip.
package admintoken

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iliyamo/mufant-museum/internal/utils"
)

// Config holds admintoken command configuration.
type Config struct {
	Subject string
	Role    string
	TTL     time.Duration
}

// ParseConfig parses flags into a Config. defaultTTL is the configured
// access token lifetime.
func ParseConfig(fs *flag.FlagSet, args []string, defaultTTL time.Duration) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.Subject, "sub", "admin", "token subject")
	fs.StringVar(&cfg.Role, "role", "ADMIN", "role claim")
	fs.DurationVar(&cfg.TTL, "ttl", defaultTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Role = strings.ToUpper(strings.TrimSpace(cfg.Role))
	if cfg.TTL <= 0 {
		return Config{}, errors.New("ttl must be positive")
	}
	return cfg, nil
}

// Run signs a token with secret and writes it, followed by a newline, to out.
func Run(secret string, cfg Config, out io.Writer) error {
	tok, err := utils.NewAccessToken(secret, cfg.Subject, cfg.Role, cfg.TTL)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, tok.Token)
	return err
}
