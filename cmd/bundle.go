package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/strandwise/internal/advisor"
	"github.com/abhisek/strandwise/internal/bundle"
)

var exportCmd = &cobra.Command{
	Use:   "export <id|name> <file>",
	Short: "Write a tuned dataset to a portable bundle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDataset(func(cmd *cobra.Command, svc *advisor.Service, id int) error {
			b, err := svc.Export(cmd.Context(), id)
			if err != nil {
				return err
			}
			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := bundle.Encode(f, b); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %q (%d samples, K=%d) to %s\n", b.Name, len(b.Records), b.ChosenK, args[1])
			return nil
		})(cmd, args)
	},
}

var importBundleCmd = &cobra.Command{
	Use:   "import-bundle <file>",
	Short: "Load a bundle as a new dataset without retuning",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		b, err := bundle.Decode(f)
		if err != nil {
			return fmt.Errorf("read bundle %s: %w", args[0], err)
		}

		svc, done, err := openService(cmd)
		if err != nil {
			return err
		}
		defer done()

		name, _ := cmd.Flags().GetString("name")
		ds, err := svc.ImportBundle(cmd.Context(), b, name)
		if err != nil {
			return err
		}
		if activate, _ := cmd.Flags().GetBool("activate"); activate {
			if err := svc.Activate(cmd.Context(), ds.ID); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %q as dataset %d with %d samples (K=%d)\n", ds.Name, ds.ID, ds.Size, ds.Selection.BestK)
		return nil
	},
}

func init() {
	importBundleCmd.Flags().String("name", "", "Dataset name (default: the bundle's)")
	importBundleCmd.Flags().Bool("activate", false, "Make this the active dataset")
}
