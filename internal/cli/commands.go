package cli

import (
	"fmt"
	"io"

	"github.com/rpattn/gamesetl/internal/audit"
	"github.com/rpattn/gamesetl/internal/pipeline"

	"github.com/spf13/cobra"
)

type stageBuilder func(a *app, audits *audit.Writer, out io.Writer) pipeline.Stage

// runStages executes the named stages as one run.
func (a *app) runStages(cmd *cobra.Command, builders ...stageBuilder) error {
	runner, audits, err := a.newRunner()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stages := make([]pipeline.Stage, 0, len(builders))
	for _, build := range builders {
		stages = append(stages, build(a, audits, out))
	}

	if _, err := runner.Run(cmd.Context(), stages...); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "run %s completed\n", runner.RunID())
	return nil
}

func addLimitFlag(cmd *cobra.Command, a *app, limit *int) {
	cmd.Flags().IntVar(limit, "limit", 20, "maximum number of records to fetch")
	previous := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("limit") {
			a.cfg.API.Limit = *limit
		}
		if previous != nil {
			return previous(cmd, args)
		}
		return nil
	}
}

func addSeedFlag(cmd *cobra.Command, a *app, seed *uint64) {
	cmd.Flags().Uint64Var(seed, "seed", 0, "random seed for corruption (0 seeds from the clock)")
	previous := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("seed") {
			a.cfg.Cleaning.Seed = *seed
		}
		if previous != nil {
			return previous(cmd, args)
		}
		return nil
	}
}

func newIngestCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch games from the API into the record store and a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStages(cmd, (*app).ingestStage)
		},
	}
	addLimitFlag(cmd, a, &limit)
	return cmd
}

func newCleanCmd(a *app) *cobra.Command {
	var seed uint64
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Corrupt, profile and clean the stored table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStages(cmd, (*app).cleanStage)
		},
	}
	addSeedFlag(cmd, a, &seed)
	return cmd
}

func newEnrichCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich",
		Short: "Left-join the cleaned table with the secondary dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStages(cmd, (*app).enrichStage)
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var (
		limit int
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run ingest, clean and enrich in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStages(cmd, (*app).ingestStage, (*app).cleanStage, (*app).enrichStage)
		},
	}
	addLimitFlag(cmd, a, &limit)
	addSeedFlag(cmd, a, &seed)
	return cmd
}
