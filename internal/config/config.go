// Package config loads Commander's toolchain environment overrides,
// grounded on termfx-morfx's cmd/morfx main, the pack's only example of a
// Go CLI calling godotenv.Load() at startup: an optional `.env` beside the
// working directory is loaded into the process environment, and a missing
// file is not an error (SPEC_FULL.md §2).
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the resolved set of environment overrides for one run of the
// toolchain.
type Config struct {
	// NoColor disables internal/diagnostics' colorized output even on a
	// terminal that supports it.
	NoColor bool
	// Shell holds COMMANDER_SHELL. No package reads it: internal/jobrunner
	// always execs argv[0] directly with no shell.
	Shell string
	// Timeout is the default pipeline timeout applied when a CmdStmt/
	// CmdExpr has no enclosing `timeout` block; zero means no default.
	Timeout time.Duration
}

// Load reads an optional `.env` file from dir (godotenv.Load is a no-op
// error when the file does not exist) and returns the resulting Config,
// read from COMMANDER_NO_COLOR, COMMANDER_SHELL, and COMMANDER_TIMEOUT_MS.
func Load(dir string) Config {
	envPath := dir + string(os.PathSeparator) + ".env"
	_ = godotenv.Load(envPath) // absent .env is not an error

	var cfg Config
	cfg.NoColor = os.Getenv("COMMANDER_NO_COLOR") != ""
	cfg.Shell = os.Getenv("COMMANDER_SHELL")
	if ms, err := strconv.Atoi(os.Getenv("COMMANDER_TIMEOUT_MS")); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg
}
