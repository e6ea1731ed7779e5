package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/strandwise/internal/advisor"
	"github.com/abhisek/strandwise/internal/report"
)

var datasetsCmd = &cobra.Command{
	Use:     "datasets",
	Aliases: []string{"ds"},
	Short:   "Manage stored datasets",
}

// withDataset opens the service, resolves args[0] to a dataset ID and
// calls fn.
func withDataset(fn func(cmd *cobra.Command, svc *advisor.Service, id int) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, done, err := openService(cmd)
		if err != nil {
			return err
		}
		defer done()

		id, err := datasetID(cmd, svc, args[0])
		if err != nil {
			return err
		}
		return fn(cmd, svc, id)
	}
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openService(cmd)
		if err != nil {
			return err
		}
		defer done()

		list, err := svc.Datasets(cmd.Context())
		if err != nil {
			return err
		}
		return report.Datasets(cmd.OutOrStdout(), list)
	},
}

var datasetsShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show a dataset with its label counts",
	Args:  cobra.ExactArgs(1),
	RunE: withDataset(func(cmd *cobra.Command, svc *advisor.Service, id int) error {
		ds, err := svc.FindDataset(cmd.Context(), fmt.Sprint(id))
		if err != nil {
			return err
		}
		samples, err := svc.Records(cmd.Context(), id)
		if err != nil {
			return err
		}
		return report.Dataset(cmd.OutOrStdout(), ds, samples)
	}),
}

var datasetsRecordsCmd = &cobra.Command{
	Use:   "records <id|name>",
	Short: "List the samples of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: withDataset(func(cmd *cobra.Command, svc *advisor.Service, id int) error {
		samples, err := svc.Records(cmd.Context(), id)
		if err != nil {
			return err
		}
		return report.Samples(cmd.OutOrStdout(), samples)
	}),
}

var datasetsActivateCmd = &cobra.Command{
	Use:   "activate <id|name>",
	Short: "Make a dataset the default for recommendations",
	Args:  cobra.ExactArgs(1),
	RunE: withDataset(func(cmd *cobra.Command, svc *advisor.Service, id int) error {
		if err := svc.Activate(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset %d is now active\n", id)
		return nil
	}),
}

var datasetsDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id|name>",
	Short: "Clear the active flag of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: withDataset(func(cmd *cobra.Command, svc *advisor.Service, id int) error {
		if err := svc.Deactivate(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset %d is now inactive\n", id)
		return nil
	}),
}

var datasetsRenameCmd = &cobra.Command{
	Use:   "rename <id|name> <new-name>",
	Short: "Rename a dataset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDataset(func(cmd *cobra.Command, svc *advisor.Service, id int) error {
			ds, err := svc.FindDataset(cmd.Context(), fmt.Sprint(id))
			if err != nil {
				return err
			}
			desc := ds.Description
			if cmd.Flags().Changed("description") {
				desc, _ = cmd.Flags().GetString("description")
			}
			if err := svc.Rename(cmd.Context(), id, args[1], desc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed dataset %d to %q\n", id, args[1])
			return nil
		})(cmd, args)
	},
}

var datasetsDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a dataset with its samples and results",
	Args:  cobra.ExactArgs(1),
	RunE: withDataset(func(cmd *cobra.Command, svc *advisor.Service, id int) error {
		if err := svc.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted dataset %d\n", id)
		return nil
	}),
}

func init() {
	datasetsRenameCmd.Flags().String("description", "", "New description")

	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsShowCmd)
	datasetsCmd.AddCommand(datasetsRecordsCmd)
	datasetsCmd.AddCommand(datasetsActivateCmd)
	datasetsCmd.AddCommand(datasetsDeactivateCmd)
	datasetsCmd.AddCommand(datasetsRenameCmd)
	datasetsCmd.AddCommand(datasetsDeleteCmd)
}
