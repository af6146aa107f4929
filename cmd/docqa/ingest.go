package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"docqa/internal/service"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add documents to the store",
	Long:  `Load each file, split it into chunks, embed the chunks and store them. Supported types: .txt, .md, .html, .pdf.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, needs{})
	if err != nil {
		return err
	}
	defer a.Close()

	failed := 0
	for _, path := range args {
		res, err := ingestFile(ctx, a, path)
		if err != nil {
			failed++
			cmd.PrintErrf("  %s: %v\n", path, err)
			continue
		}
		cmd.Printf("  %s  %s  (%d chunks)\n", res.DocumentID, res.Filename, res.Chunks)
		if res.Preview != "" {
			cmd.Printf("    %s\n", res.Preview)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func ingestFile(ctx context.Context, a *app, path string) (service.IngestResult, error) {
	doc, err := a.loader.Load(path)
	if err != nil {
		return service.IngestResult{}, err
	}
	return a.pipeline.Ingest(ctx, service.IngestRequest{
		Filename: doc.Filename,
		FileType: doc.FileType,
		Content:  doc.Text,
	})
}
