package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/strandwise/internal/report"
	"github.com/abhisek/strandwise/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Browse stored recommendations",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recommendations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openService(cmd)
		if err != nil {
			return err
		}
		defer done()

		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		if ref, _ := cmd.Flags().GetString("dataset"); ref != "" {
			if opts.DatasetID, err = datasetID(cmd, svc, ref); err != nil {
				return err
			}
		}
		list, err := svc.Results(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return report.Results(cmd.OutOrStdout(), list)
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recommendation with its neighbors",
	Long:  "Show accepts the full result ID or any unique prefix of it.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openService(cmd)
		if err != nil {
			return err
		}
		defer done()

		res, err := svc.Result(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return report.Result(cmd.OutOrStdout(), res)
	},
}

func init() {
	resultsListCmd.Flags().Int("limit", 20, "Maximum number of results (0 for all)")
	resultsListCmd.Flags().String("dataset", "", "Only results of this dataset ID or name")

	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
}
