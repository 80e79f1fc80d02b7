package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:     "diskhound",
		Short:   "Analyze disk usage and surface reclaimable space",
		Version: version + " (" + commit + ")",
	}

	root.AddCommand(newScanCmd())
	root.AddCommand(newConfigCmd())

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
