package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tetraklein/tkaudit/internal/tkaudit/envprobe"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print a snapshot of the execution environment",
	Long:  `Probes host, CPU, memory, and accelerator details and prints them as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		snap, err := envprobe.Probe(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(envCmd)
}
