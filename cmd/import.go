package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/strandwise/internal/advisor"
	"github.com/abhisek/strandwise/internal/questionnaire"
	"github.com/abhisek/strandwise/internal/report"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import labelled survey rows as a dataset and select K",
	Long: "Import reads CSV or JSON rows. With --question-set the columns are matched to\n" +
		"the named question set and summed per strand; without it the rows must carry\n" +
		"STEM, ABM and HUMSS score columns. Every row needs a Strand column.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		rows, err := readRows(args[0], format)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		desc, _ := cmd.Flags().GetString("description")
		set, _ := cmd.Flags().GetString("question-set")
		activate, _ := cmd.Flags().GetBool("activate")
		noDiag, _ := cmd.Flags().GetBool("no-diagnostics")

		svc, done, err := openService(cmd)
		if err != nil {
			return err
		}
		defer done()

		res, err := svc.Import(cmd.Context(), advisor.ImportRequest{
			Name:        name,
			Description: desc,
			QuestionSet: set,
			Rows:        rows,
			Activate:    activate,
			Diagnostics: cfg.Diagnostics && !noDiag,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Imported %q as dataset %d with %d samples\n", res.Dataset.Name, res.Dataset.ID, res.Dataset.Size)
		if len(res.Ignored) > 0 {
			fmt.Fprintf(out, "Ignored columns: %s\n", strings.Join(res.Ignored, ", "))
		}
		if err := report.Selection(out, res.Selection); err != nil {
			return err
		}
		if res.Report != nil {
			return report.Evaluation(out, res.Report)
		}
		return nil
	},
}

// readRows parses a CSV or JSON rows file. An empty format is taken from
// the file extension.
func readRows(path, format string) ([]questionnaire.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseRows(f, path, format)
}

func parseRows(r io.Reader, path, format string) ([]questionnaire.Row, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case "csv":
		return questionnaire.ParseCSVRows(r)
	case "json":
		return questionnaire.ParseJSONRows(r)
	default:
		return nil, fmt.Errorf("unknown rows format %q (use csv or json)", format)
	}
}

func init() {
	f := importCmd.Flags()
	f.String("name", "", "Dataset name (default: file name without extension)")
	f.String("description", "", "Dataset description")
	f.String("question-set", "", "Question set used to score the rows")
	f.String("format", "", "Input format: csv or json (default: from file extension)")
	f.Bool("activate", false, "Make this the active dataset")
	f.Bool("no-diagnostics", false, "Skip the evaluation report")
}
