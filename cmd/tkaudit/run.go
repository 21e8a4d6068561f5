package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tetraklein/tkaudit/internal/tkaudit/audit"
	"github.com/tetraklein/tkaudit/internal/tkaudit/config"
	"github.com/tetraklein/tkaudit/internal/tkaudit/envprobe"
)

// runCmd executes the full feasibility audit.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full feasibility audit",
	Long: `Runs every audit goal in order and seals the results into an
append-only record. Hard failures abort the run; budget shortfalls are
recorded and the run continues.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAudit(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("out", "audit_record.jsonl", "Audit record output path")
	runCmd.Flags().String("env-out", "", "Optional path for the environment snapshot JSON")

	// Make 'run' the default when no subcommand is given.
	rootCmd.Run = runCmd.Run
}

func runAudit(cmd *cobra.Command) error {
	logger := newLogger(cmd)

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.NewLoader(logger).Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	reg := prometheus.NewRegistry()
	pipeline, err := audit.NewPipeline(audit.DefaultGoals(cfg),
		audit.WithLogger(logger),
		audit.WithMetrics(reg),
	)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	ctx := context.Background()

	if envOut, _ := cmd.Flags().GetString("env-out"); envOut != "" {
		snap, err := envprobe.Probe(ctx)
		if err != nil {
			return fmt.Errorf("probing environment: %w", err)
		}
		if err := snap.WriteFile(envOut); err != nil {
			return fmt.Errorf("writing environment snapshot: %w", err)
		}
		logger.Info("environment snapshot written", "path", envOut)
	}

	record, aborted, runErr := pipeline.Run(ctx)

	outPath, _ := cmd.Flags().GetString("out")
	if record != nil {
		if err := record.WriteFile(outPath, aborted); err != nil {
			return fmt.Errorf("writing audit record: %w", err)
		}
		logger.Info("audit record written", "path", outPath, "digest", record.Digest())
		fmt.Println(record.TerminalLine(aborted))
	}

	if runErr != nil {
		return runErr
	}
	if record != nil && !record.AllOK() {
		os.Exit(2)
	}
	return nil
}
