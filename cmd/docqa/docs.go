package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id...]",
	Short: "Remove documents and their chunks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, needs{})
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.pipeline.Documents(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFILENAME\tTYPE\tSIZE\tCHUNKS\tUPLOADED")
	for _, d := range docs {
		uploaded := "-"
		if !d.UploadDate.IsZero() {
			uploaded = d.UploadDate.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n", d.ID, d.Filename, d.FileType, d.FileSize, d.Chunks, uploaded)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, needs{})
	if err != nil {
		return err
	}
	defer a.Close()

	missing := 0
	for _, id := range args {
		deleted, err := a.pipeline.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			missing++
			cmd.PrintErrf("  %s: not found\n", id)
			continue
		}
		cmd.Printf("  %s: deleted\n", id)
	}
	if missing > 0 {
		return fmt.Errorf("%d documents not found", missing)
	}
	return nil
}
