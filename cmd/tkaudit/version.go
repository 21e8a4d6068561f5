package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tetraklein/tkaudit/pkg/tkaudit"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tkaudit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tkaudit version %s\n", tkaudit.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
