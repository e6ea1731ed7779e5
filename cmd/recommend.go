package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/strandwise/internal/advisor"
	"github.com/abhisek/strandwise/internal/knn"
	"github.com/abhisek/strandwise/internal/report"
	"github.com/abhisek/strandwise/internal/strand"
)

// recommendation is the --json output.
type recommendation struct {
	ID         string        `json:"id"`
	Respondent string        `json:"respondent,omitempty"`
	Scores     strand.Scores `json:"scores"`
	knn.PredictionResult
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend a strand for one respondent",
	Long: "Recommend classifies either raw scores (--stem, --abm, --humss) or a file of\n" +
		"questionnaire answers (--answers, one CSV or JSON row) against the active\n" +
		"dataset, or the one named by --dataset.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		req := advisor.RecommendRequest{}
		req.QuestionSet, _ = f.GetString("question-set")
		req.Respondent, _ = f.GetString("respondent")

		if f.Changed("stem") || f.Changed("abm") || f.Changed("humss") {
			stem, _ := f.GetInt("stem")
			abm, _ := f.GetInt("abm")
			humss, _ := f.GetInt("humss")
			req.Scores = &strand.Scores{STEM: stem, ABM: abm, HUMSS: humss}
		}
		if path, _ := f.GetString("answers"); path != "" {
			format, _ := f.GetString("format")
			rows, err := readRows(path, format)
			if err != nil {
				return err
			}
			if len(rows) != 1 {
				return fmt.Errorf("answers file must hold exactly one row, found %d", len(rows))
			}
			req.Answers = rows[0]
		}

		svc, done, err := openService(cmd)
		if err != nil {
			return err
		}
		defer done()

		if ref, _ := f.GetString("dataset"); ref != "" {
			if req.DatasetID, err = datasetID(cmd, svc, ref); err != nil {
				return err
			}
		}

		res, err := svc.Recommend(cmd.Context(), req)
		if err != nil {
			return err
		}

		if asJSON, _ := f.GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(recommendation{
				ID:               res.PublicID,
				Respondent:       res.Respondent,
				Scores:           res.Scores,
				PredictionResult: res.PredictionResult,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Result %s\n", res.PublicID)
		return report.Prediction(cmd.OutOrStdout(), res.PredictionResult)
	},
}

func init() {
	f := recommendCmd.Flags()
	f.Int("stem", 0, "STEM score")
	f.Int("abm", 0, "ABM score")
	f.Int("humss", 0, "HUMSS score")
	f.String("answers", "", "File with one row of questionnaire answers")
	f.String("format", "", "Answers format: csv or json (default: from file extension)")
	f.String("question-set", "", "Question set used to score the answers (default: the dataset's)")
	f.String("dataset", "", "Dataset ID or name (default: the active dataset)")
	f.String("respondent", "", "Respondent name or identifier stored with the result")
	f.Bool("json", false, "Print the result as JSON")
}
