package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the stored documents",
	Long:  `Retrieve the most relevant chunks, ask the generator, and print the answer with numbered sources.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var (
	askDocumentID string
	askJSON       bool
	askIngest     []string
)

func init() {
	askCmd.Flags().StringVarP(&askDocumentID, "document", "d", "", "Restrict retrieval to one document id")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the answer and sources as JSON")
	askCmd.Flags().StringSliceVarP(&askIngest, "file", "f", nil, "Ingest these files before asking (useful with the memory store)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, needs{generator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	for _, path := range askIngest {
		if _, err := ingestFile(ctx, a, path); err != nil {
			return err
		}
	}

	ans, err := a.pipeline.Answer(ctx, strings.Join(args, " "), askDocumentID)
	if err != nil {
		return err
	}

	if askJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}

	cmd.Println(ans.Text)
	if len(ans.Citations) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, c := range ans.Citations {
			cmd.Printf("  [%d] %s  score=%.3f\n", c.SourceNumber, c.Document, c.Score)
		}
	}
	return nil
}
