// Command graphmigrate copies a relational dataset, or an existing
// Memgraph-family graph, into a destination graph database speaking the
// Bolt/Cypher wire protocol.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tordrt/graphmigrate"
	"github.com/tordrt/graphmigrate/internal/config"
	"github.com/tordrt/graphmigrate/internal/obs"
	"github.com/tordrt/graphmigrate/internal/report"
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "graphmigrate",
	Short: "Migrate a relational or graph dataset into a Cypher-speaking destination",
	Long: `graphmigrate copies an entire dataset from a source database (PostgreSQL,
MySQL, or an existing Memgraph-family graph) into a destination graph database,
preserving row data, referential structure, indexes, and constraints.`,
	RunE: run,
}

func init() {
	if err := config.BindFlags(rootCmd, cfg); err != nil {
		panic(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log, err := obs.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	summary, err := graphmigrate.Run(ctx, cfg, log)
	if err != nil {
		return err
	}

	formatter, err := report.New(os.Stdout, cfg.Format)
	if err != nil {
		return err
	}
	return formatter.Format(summary)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
