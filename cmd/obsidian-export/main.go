// Command obsidian-export exports an Obsidian vault to plain CommonMark.
package main

import (
	"os"

	"github.com/obsidian-tools/obsidian-export/internal/cli"
)

// Version information set by build flags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
