package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/konvo/konvo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of konvo",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("konvo version %s\n", strings.TrimSpace(konvo.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
