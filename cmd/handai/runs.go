package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zkbaum/handai/internal/config"
	"github.com/zkbaum/handai/internal/store"
)

func runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List recorded inference runs",
		RunE:  runRuns,
	}
}

func runRuns(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	cfg, err := config.Load(v.GetString("manifest"))
	if err != nil {
		return err
	}
	ledger, err := store.New(cfg.Paths.Ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	runs, err := ledger.ListRuns()
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tEXPERIMENT\tYEAR\tMODEL\tENSEMBLING\tQUESTIONS\tFAILURES\tOUTPUT")
	for _, run := range runs {
		finished := "running"
		if run.FinishedAt != nil {
			finished = run.OutputPath
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\t%d\t%s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Experiment, run.Year, run.Model, run.Ensembling,
			run.Questions, run.Failures, finished)
	}
	return w.Flush()
}
