package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"docqa/internal/contract"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Assess a document for completeness",
	Long: `Retrieve the most relevant guidelines, ask the generator for a structured
assessment, and print it only if it satisfies the analysis contract.
Pass "-" to read the document from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var text string
	if args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		text = string(data)
	} else {
		doc, err := newLoader().Load(args[0])
		if err != nil {
			return err
		}
		text = doc.Text
	}

	a, err := newApp(ctx, needs{generator: true, guidelines: true})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.Analyze(ctx, text)
	if err != nil {
		var rej *contract.Rejection
		if errors.As(err, &rej) {
			return fmt.Errorf("generator output rejected (%s on %s): %w", rej.Kind, rej.Field, err)
		}
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
