package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Name matcher choices
const (
	MatcherPositional  = "positional"
	MatcherJaroWinkler = "jaro-winkler"
)

type Config struct {
	Port             int
	DatabaseURL      string
	DatabaseType     string
	AdminKeySalt     string
	ElectionSlugSalt string
	IPHashSalt       string
	DedupThreshold   float64
	DedupWorkers     int
	NameMatcher      string
	EnvFile          string
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("countroll", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.EnvFile, "env", ".env", "Optional dotenv file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.ElectionSlugSalt, "slug-salt", "", "Election slug salt (prefer env)")

	// Roll cleaning
	fs.Float64Var(&cfg.DedupThreshold, "dedup-threshold", -1, "Minimum fused score for a duplicate pair")
	fs.IntVar(&cfg.DedupWorkers, "dedup-workers", 0, "Blocks compared in parallel")
	fs.StringVar(&cfg.NameMatcher, "name-matcher", "", "Name comparison (positional or jaro-winkler)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Values already in the environment win over the file
	if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", cfg.EnvFile, err)
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.ElectionSlugSalt == "" {
		cfg.ElectionSlugSalt = os.Getenv("ELECTION_SLUG_SALT")
	}
	if cfg.ElectionSlugSalt == "" {
		return Config{}, errors.New("ELECTION_SLUG_SALT required")
	}

	cfg.IPHashSalt = os.Getenv("IP_HASH_SALT")
	if cfg.IPHashSalt == "" {
		cfg.IPHashSalt = cfg.AdminKeySalt
	}

	if cfg.DedupThreshold < 0 {
		cfg.DedupThreshold = 0.8
		if s := os.Getenv("DEDUP_THRESHOLD"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || v < 0 || math.IsNaN(v) {
				return Config{}, errors.New("invalid DEDUP_THRESHOLD env variable")
			}
			cfg.DedupThreshold = v
		}
	}

	if math.IsNaN(cfg.DedupThreshold) {
		return Config{}, errors.New("dedup threshold must be a number")
	}

	if cfg.DedupWorkers == 0 {
		cfg.DedupWorkers = 4
		if s := os.Getenv("DEDUP_WORKERS"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 {
				return Config{}, errors.New("invalid DEDUP_WORKERS env variable")
			}
			cfg.DedupWorkers = n
		}
	}
	if cfg.DedupWorkers < 1 {
		return Config{}, errors.New("dedup workers must be at least 1")
	}

	if cfg.NameMatcher == "" {
		cfg.NameMatcher = os.Getenv("NAME_MATCHER")
		if cfg.NameMatcher == "" {
			cfg.NameMatcher = MatcherPositional
		}
	}
	if cfg.NameMatcher != MatcherPositional && cfg.NameMatcher != MatcherJaroWinkler {
		return Config{}, fmt.Errorf("unknown name matcher %q", cfg.NameMatcher)
	}

	return cfg, nil
}
