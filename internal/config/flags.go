package config

import (
	"flag"
	"os"

	"github.com/firevault/firevault/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   authorization service bind address (loopback)
//	-d string   data directory
//
// Args are pre-filtered with flagx.FilterArgs so this flag set does not
// collide with -c/-config handled by the JSON overlay.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port for the local authorization service")
	fs.StringVar(&config.DataDir, "d", config.DataDir, "data directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
