package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toodl-app/mind"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of mind",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mind version %s\n", strings.TrimSpace(mind.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
