package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/clusterscope/internal/pipeline"
)

var docsJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]...",
	Short: "Ingest documents into the index",
	Long: `Extracts, chunks, embeds and indexes each file. Files whose content was
already ingested are reported as duplicate_skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE:  runDocs,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its index entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	docsCmd.Flags().BoolVar(&docsJSON, "json", false, "output documents as JSON")
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	a.Orchestrator.Start(ctx)
	defer a.Orchestrator.Stop()

	jobs := make([]*pipeline.Job, 0, len(args))
	for _, path := range args {
		job := pipeline.NewJob(path, filepath.Base(path), "cli", false)
		if err := a.Orchestrator.Submit(job); err != nil {
			return fmt.Errorf("queue %s: %w", path, err)
		}
		jobs = append(jobs, job)
	}

	failed := 0
	out := cmd.OutOrStdout()
	for _, job := range jobs {
		snap, err := waitFinished(ctx, job)
		if err != nil {
			return err
		}
		switch snap.Status {
		case pipeline.StatusFailed:
			failed++
			fmt.Fprintf(out, "%s: failed: %v\n", snap.Filename, snap.Progress.Errors)
		default:
			fmt.Fprintf(out, "%s: %s %s (%d chunks)\n", snap.Filename, snap.Status, snap.DocID, snap.Progress.TotalChunks)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(jobs))
	}
	return nil
}

func waitFinished(ctx context.Context, job *pipeline.Job) (pipeline.JobSnapshot, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if snap := job.Snapshot(); snap.Finished() {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return pipeline.JobSnapshot{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func runDocs(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	docs := a.Processor.List()
	if docsJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if len(docs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No documents.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tINDUSTRY\tREGION\tCHUNKS\tPROCESSED")
	for _, d := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			d.ID, d.Title, dash(d.Industry), dash(d.Region), d.ChunkCount, d.ProcessedDate.Format(time.DateTime))
	}
	return tw.Flush()
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Processor.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
