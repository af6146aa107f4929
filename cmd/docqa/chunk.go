package main

import (
	"github.com/spf13/cobra"

	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/loader"
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file]",
	Short: "Show how a document would be chunked",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunk,
}

var (
	chunkSize    int
	chunkOverlap int
)

func init() {
	chunkCmd.Flags().IntVar(&chunkSize, "size", 0, "Chunk size in characters (default from config)")
	chunkCmd.Flags().IntVar(&chunkOverlap, "overlap", -1, "Overlap in characters (default from config)")
	rootCmd.AddCommand(chunkCmd)
}

func newLoader() *loader.Loader {
	return loader.New(logger)
}

func runChunk(cmd *cobra.Command, args []string) error {
	size, overlap := cfg.Chunker.Size, cfg.Chunker.Overlap
	if chunkSize > 0 {
		size = chunkSize
	}
	if chunkOverlap >= 0 {
		overlap = chunkOverlap
	}
	c, err := chunker.NewBoundaryChunker(size, overlap)
	if err != nil {
		return err
	}

	doc, err := newLoader().Load(args[0])
	if err != nil {
		return err
	}
	chunks, err := c.Chunk(domain.Document{ID: doc.Filename, Content: doc.Text})
	if err != nil {
		return err
	}

	for _, ch := range chunks {
		cmd.Printf("--- chunk %d/%d  [%d:%d]  %d chars\n", ch.Index+1, ch.Total, ch.Start, ch.End, len([]rune(ch.Text)))
		cmd.Println(ch.Text)
	}
	cmd.Printf("\nTotal: %d chunks (size=%d overlap=%d)\n", len(chunks), size, overlap)
	return nil
}
