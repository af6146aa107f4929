package main

import (
	"time"

	"github.com/spf13/cobra"

	"docqa/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they appear in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, needs{})
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.VectorStore.Type == "memory" {
		logger.Warn().Msg("Watching with the memory store; ingested documents are lost on exit")
	}

	w := watch.New(args[0], cfg.Watch.Extensions, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, logger)
	paths, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	// A rewritten file replaces the document ingested from it earlier.
	ingested := make(map[string]string)
	for path := range paths {
		if id, ok := ingested[path]; ok {
			if _, err := a.pipeline.Delete(ctx, id); err != nil {
				logger.Warn().Err(err).Str("document_id", id).Msg("Failed to replace document")
			}
			delete(ingested, path)
		}
		res, err := ingestFile(ctx, a, path)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Auto-ingest failed")
			continue
		}
		ingested[path] = res.DocumentID
		cmd.Printf("  %s  %s  (%d chunks)\n", res.DocumentID, res.Filename, res.Chunks)
	}
	return nil
}
