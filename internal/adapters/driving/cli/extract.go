package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
)

var (
	extractChunkSize int
	extractWatch     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [folder]",
	Short: "Chunk new documents into the store",
	Long: `Read every note, PDF and document under the folder that has not been
extracted yet, split its text into chunks and store them.

The folder defaults to the corpus.folder setting. Documents that failed
before are skipped until the failures table is reset. With --watch the
folder is extracted again whenever files are added, until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the document table from stored chunks",
	RunE:  runIndex,
}

func init() {
	extractCmd.Flags().IntVar(&extractChunkSize, "chunk-size", 0, "characters per chunk (default from settings)")
	extractCmd.Flags().BoolVar(&extractWatch, "watch", false, "keep extracting as files are added")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(indexCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if services == nil || services.Extraction == nil {
		return errNotConfigured("extraction")
	}

	req := driving.ExtractRequest{ChunkSize: extractChunkSize}
	if len(args) == 1 {
		req.Folder = args[0]
	}

	if extractWatch {
		cmd.Println("Watching for new documents. Press Ctrl+C to stop.")
		return services.Extraction.Watch(cmd.Context(), req, func(report *driving.ExtractReport) {
			printExtractReport(cmd, report)
		})
	}

	report, err := services.Extraction.Extract(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	printExtractReport(cmd, report)
	return nil
}

func printExtractReport(cmd *cobra.Command, report *driving.ExtractReport) {
	st := stylesFor(cmd.OutOrStderr())
	cmd.Println(st.Title.Render("Extraction"))
	cmd.Printf("  Found:     %d\n", report.Found)
	cmd.Printf("  Skipped:   %d\n", report.Skipped)
	cmd.Printf("  Extracted: %s\n", st.Success.Render(fmt.Sprint(report.Extracted)))
	if report.Failed > 0 {
		cmd.Printf("  Failed:    %s\n", st.Warning.Render(fmt.Sprint(report.Failed)))
	} else {
		cmd.Printf("  Failed:    0\n")
	}
	cmd.Printf("  Chunks:    %d\n", report.Chunks)
	cmd.Printf("  Took:      %s\n", report.Duration.Round(time.Millisecond))
	if report.Interrupted {
		cmd.Println(st.Warning.Render("Interrupted; run again to continue."))
	}
}

func runIndex(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Index == nil {
		return errNotConfigured("index")
	}

	n, err := services.Index.Rebuild(cmd.Context())
	if err != nil {
		return fmt.Errorf("index rebuild failed: %w", err)
	}
	cmd.Printf("Indexed %d documents.\n", n)
	return nil
}
