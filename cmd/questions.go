package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/strandwise/internal/questionnaire"
	"github.com/abhisek/strandwise/internal/report"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage questionnaires",
}

var questionsAddCmd = &cobra.Command{
	Use:   "add <file.toml>",
	Short: "Add a question set from a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := questionnaire.LoadSetFile(args[0])
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			set.Name = name
		}

		svc, done, err := openService(cmd)
		if err != nil {
			return err
		}
		defer done()

		qs, err := svc.AddQuestionSet(cmd.Context(), set)
		if err != nil {
			return err
		}
		counts := qs.CountByStrand()
		fmt.Fprintf(cmd.OutOrStdout(), "Added question set %q with %d questions (STEM %d, ABM %d, HUMSS %d)\n",
			qs.Name, len(qs.Questions), counts["STEM"], counts["ABM"], counts["HUMSS"])
		return nil
	},
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List question sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openService(cmd)
		if err != nil {
			return err
		}
		defer done()

		list, err := svc.QuestionSets(cmd.Context())
		if err != nil {
			return err
		}
		return report.QuestionSets(cmd.OutOrStdout(), list)
	},
}

var questionsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the questions of a set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, done, err := openService(cmd)
		if err != nil {
			return err
		}
		defer done()

		qs, err := svc.QuestionSet(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return report.QuestionSet(cmd.OutOrStdout(), qs)
	},
}

func init() {
	questionsAddCmd.Flags().String("name", "", "Override the set name from the file")

	questionsCmd.AddCommand(questionsAddCmd)
	questionsCmd.AddCommand(questionsListCmd)
	questionsCmd.AddCommand(questionsShowCmd)
}
