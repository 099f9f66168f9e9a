package config

import (
	"flag"
	"os"
	"time"

	"github.com/velora-digital/siteauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   API base URL (versioned prefix)
//	-s string   site base URL
//	-d string   sqlite DSN for the session slot store
//	-i int      session monitor interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.SiteBaseURL, "s", cfg.SiteBaseURL, "site base URL")
	fs.StringVar(&cfg.StoreDSN, "d", cfg.StoreDSN, "session store sqlite DSN")
	monitorInterval := fs.Int("i", int(cfg.MonitorInterval.Seconds()), "session monitor interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.MonitorInterval = time.Duration(*monitorInterval) * time.Second
}
