// apm shows a live actions-per-minute overlay for keyboard and mouse input.
// Single binary: global capture, two rolling rates, one terminal line.
package main

import (
	"os"

	"github.com/corey/apm/cmd/apm/cmd"
)

// Set by -ldflags at release time.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
