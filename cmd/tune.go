package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/strandwise/internal/advisor"
	"github.com/abhisek/strandwise/internal/report"
)

var tuneCmd = &cobra.Command{
	Use:   "tune <id|name>",
	Short: "Rerun K selection on a stored dataset",
	Args:  cobra.ExactArgs(1),
	RunE: withDataset(func(cmd *cobra.Command, svc *advisor.Service, id int) error {
		ds, sel, err := svc.Retune(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset %q (%d)\n", ds.Name, ds.ID)
		return report.Selection(cmd.OutOrStdout(), sel)
	}),
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <id|name>",
	Short: "Show cross-validation diagnostics for a dataset's K",
	Args:  cobra.ExactArgs(1),
	RunE: withDataset(func(cmd *cobra.Command, svc *advisor.Service, id int) error {
		ds, rep, err := svc.Evaluate(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset %q (%d), %d folds, seed %d\n",
			ds.Name, ds.ID, ds.Selection.Folds, ds.Selection.Seed)
		return report.Evaluation(cmd.OutOrStdout(), rep)
	}),
}
