package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/admagic/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the auth API
//	-d string   path of the local SQLite database
//	-i int      session revalidation interval in seconds
//	-t int      request timeout in seconds
//	-m          keep the credential in memory only
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-t", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the auth API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path of the local database")
	revalidate := fs.Int("i", int(cfg.RevalidateInterval.Seconds()), "session revalidation interval (in seconds)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.BoolVar(&cfg.Ephemeral, "m", cfg.Ephemeral, "keep the credential in memory only")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Durations from earlier stages may carry sub-second precision, so only
	// flags present on the command line replace them.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.RevalidateInterval = time.Duration(*revalidate) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
