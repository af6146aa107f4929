package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"docqa/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [file...]",
	Short: "Ask questions interactively",
	Long:  `Optionally ingest the given files, then open an interactive question loop that shows each answer with its sources.`,
	RunE:  runTUI,
}

var tuiDocumentID string

func init() {
	tuiCmd.Flags().StringVarP(&tuiDocumentID, "document", "d", "", "Restrict retrieval to one document id")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, needs{generator: true})
	if err != nil {
		return err
	}
	defer a.Close()

	for _, path := range args {
		if _, err := ingestFile(ctx, a, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	docs, err := a.pipeline.Documents(ctx)
	if err != nil {
		return err
	}
	summary := fmt.Sprintf("%d documents in %s store", len(docs), cfg.VectorStore.Type)

	m := tui.New(ctx, a.pipeline, tuiDocumentID, summary)
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}
