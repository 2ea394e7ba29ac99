package config

import (
	"flag"
	"os"

	"github.com/pantrysync/restock/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   bind address of the HTTP endpoint
//	-b string   storage backend: postgres, s3 or memory
//	-d string   PostgreSQL DSN
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.EndpointAddr, "a", cfg.EndpointAddr, "address and port to bind")
	fs.StringVar(&cfg.StorageBackend, "b", cfg.StorageBackend, "snapshot storage backend")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
