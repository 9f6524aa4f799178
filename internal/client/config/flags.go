package config

import (
	"flag"
	"os"
	"time"

	"github.com/levelquest/sessiongate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   base URL of the auth backend (default from Config)
//	-b string   path/DSN of the local session database
//	-r int      token renewal interval in seconds
//	-s int      profile sync interval in seconds
//
// Note: The function filters os.Args to only include the flags it knows
// about, using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-b", "-r", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "base URL of the auth backend")
	fs.StringVar(&cfg.DatabaseDSN, "b", cfg.DatabaseDSN, "path of the local session database")
	renewInterval := fs.Int("r", int(cfg.RenewInterval.Seconds()), "token renewal interval (in seconds)")
	syncInterval := fs.Int("s", int(cfg.SyncInterval.Seconds()), "profile sync interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RenewInterval = time.Duration(*renewInterval) * time.Second
	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
}
