// Command dicomwsi is a CLI for reading DICOMDIR indexes and WSMIS tiled
// image levels.
package main

import (
	"fmt"
	"os"

	"github.com/wsicore/dicomwsi/cmd/dicomwsi/internal/cli"
)

// version, commit, and date are injected at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Run(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
