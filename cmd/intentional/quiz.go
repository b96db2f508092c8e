package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"intentional/internal/heuristic"
	"intentional/internal/types"
)

func newQuizCmd() *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "quiz [answers.json|-]",
		Short: "Score legacy quiz answers with the heuristic rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in types.QuizSubmission
			if err := readJSON(cmd, args[0], &in); err != nil {
				return err
			}
			if len(in.Answers) == 0 {
				return fmt.Errorf("no answers in %s", args[0])
			}
			result := heuristic.Analyze(in.Answers)
			if markdown {
				return writeOutput(cmd, "", []byte(result.Recommendations))
			}
			body, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", append(body, '\n'))
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print only the recommendations")
	return cmd
}

func newQuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List the legacy quiz questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := json.MarshalIndent(heuristic.Questions(), "", "  ")
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", append(body, '\n'))
		},
	}
}
