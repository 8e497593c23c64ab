package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	"github.com/johnquangdev/interview-assistant/internal/usecase/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Recompute the canonical score of an evaluation payload",
	Long: "Decodes a scoring model payload (flat or legacy grouped), drops closing questions and " +
		"recomputes the weighted score deterministically. Totals carried by the payload are ignored.",
	RunE: runScore,
}

var (
	scoreFile      string
	scoreTotal     int
	scoreOutput    string
	scoreRationale bool
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreFile, "file", "f", "", "Path to the payload JSON file, - for stdin (required)")
	scoreCmd.Flags().IntVarP(&scoreTotal, "total", "t", 0, "Number of configured scorable questions (default: evaluations in the payload)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "out", "o", "", "Path to the output JSON file (default: stdout)")
	scoreCmd.Flags().BoolVar(&scoreRationale, "rationale", false, "Print the human readable rationale instead of JSON")

	if err := scoreCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

// scoreOutputDoc is the JSON document written by the score command
type scoreOutputDoc struct {
	OverallScore int                         `json:"overall_score"`
	Result       string                      `json:"result"`
	Score        entities.AggregatedScore    `json:"score"`
	Evaluations  []entities.AnswerEvaluation `json:"evaluations"`
}

func runScore(cmd *cobra.Command, _ []string) error {
	raw, err := readInput(cmd.InOrStdin(), scoreFile)
	if err != nil {
		return err
	}

	doc, err := rescore(raw, scoreTotal)
	if err != nil {
		return err
	}

	var out []byte
	if scoreRationale {
		out = []byte(scoring.Rationale(doc.Score))
	} else {
		out, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal score: %w", err)
		}
		out = append(out, '\n')
	}

	if scoreOutput == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if dir := filepath.Dir(scoreOutput); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(scoreOutput, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", scoreOutput, err)
	}
	return nil
}

// rescore decodes a payload and aggregates it. A non-positive total falls
// back to the number of scorable evaluations in the payload.
func rescore(raw []byte, total int) (*scoreOutputDoc, error) {
	payload, err := scoring.DecodePayload(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	if total <= 0 {
		total = len(scoring.FilterClosing(payload.Evaluations()))
	}
	result := scoring.Normalize(payload, total)

	evals := result.Evaluations
	if evals == nil {
		evals = []entities.AnswerEvaluation{}
	}
	return &scoreOutputDoc{
		OverallScore: result.Score.OverallScore,
		Result:       result.Score.ResultLabel(),
		Score:        result.Score,
		Evaluations:  evals,
	}, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file %s: %w", path, err)
	}
	return data, nil
}
