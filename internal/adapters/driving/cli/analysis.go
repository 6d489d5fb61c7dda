package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

var (
	aggregateAfter   int64
	aggregateUpTo    int64
	pruneShare       float64
	coverageFraction float64
	similarCount     int
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Count stemmed words across stored chunks",
	Long: `Tokenise the chunks with ids in (--after, --upto] and add their stemmed
word counts to the frequencies table. Words split across chunk boundaries
are joined before counting. --upto 0 reads to the last chunk.

Ranges cover whole documents: a document still open at --upto is read to
its end, and one that started at or before --after is skipped. Pass the
reported last chunk as the next --after.

Counts are added, so aggregate each range once or reset the frequencies
table first.`,
	RunE: runAggregate,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop words above a share of all occurrences",
	RunE:  runPrune,
}

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Select the vocabulary covering a fraction of occurrences",
	RunE:  runCoverage,
}

var vectoriseCmd = &cobra.Command{
	Use:     "vectorise",
	Aliases: []string{"vectorize"},
	Short:   "Build a normalised word vector per document",
	RunE:    runVectorise,
}

var tfidfCmd = &cobra.Command{
	Use:   "tfidf",
	Short: "Weight the document vectors by TF-IDF",
	RunE:  runTFIDF,
}

var similarCmd = &cobra.Command{
	Use:   "similar <document>",
	Short: "List the documents closest to one by TF-IDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

func init() {
	aggregateCmd.Flags().Int64Var(&aggregateAfter, "after", 0, "start after this chunk id")
	aggregateCmd.Flags().Int64Var(&aggregateUpTo, "upto", 0, "stop at this chunk id (0 for the last)")
	pruneCmd.Flags().Float64Var(&pruneShare, "share", 0, "maximum share of occurrences (default from settings)")
	coverageCmd.Flags().Float64Var(&coverageFraction, "fraction", 0, "fraction of occurrences to cover (default from settings)")
	similarCmd.Flags().IntVarP(&similarCount, "count", "n", 5, "number of documents to list")

	rootCmd.AddCommand(aggregateCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(vectoriseCmd)
	rootCmd.AddCommand(tfidfCmd)
	rootCmd.AddCommand(similarCmd)
}

func runAggregate(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Aggregation == nil {
		return errNotConfigured("aggregation")
	}

	report, err := services.Aggregation.Aggregate(cmd.Context(), domain.ChunkRange{
		AfterID: aggregateAfter,
		UpToID:  aggregateUpTo,
	})
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	st := stylesFor(cmd.OutOrStderr())
	cmd.Println(st.Title.Render("Aggregation"))
	cmd.Printf("  Chunks:  %d\n", report.Chunks)
	cmd.Printf("  Tokens:  %d\n", report.Tokens)
	cmd.Printf("  Words:   %d\n", report.Words)
	cmd.Printf("  Last id: %d\n", report.LastID)
	if report.Interrupted {
		cmd.Println(st.Warning.Render("Interrupted; nothing was written."))
	}
	return nil
}

func runPrune(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Aggregation == nil {
		return errNotConfigured("aggregation")
	}

	share := pruneShare
	if share == 0 {
		settings, err := currentSettings()
		if err != nil {
			return err
		}
		share = settings.Aggregation.PruneShare
	}
	if share == 0 {
		return errors.New("no share given: pass --share or set aggregation.prune_share")
	}

	n, err := services.Aggregation.Prune(cmd.Context(), share)
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	cmd.Printf("Removed %d words above %.2f%% of occurrences.\n", n, share*100)
	return nil
}

func runCoverage(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Coverage == nil {
		return errNotConfigured("coverage")
	}

	fraction := coverageFraction
	if fraction == 0 {
		settings, err := currentSettings()
		if err != nil {
			return err
		}
		fraction = settings.Coverage.Fraction
	}

	report, err := services.Coverage.SelectVocabulary(cmd.Context(), fraction)
	if err != nil {
		return fmt.Errorf("vocabulary selection failed: %w", err)
	}

	st := stylesFor(cmd.OutOrStderr())
	cmd.Println(st.Title.Render("Vocabulary"))
	cmd.Printf("  Words:    %d\n", report.Words)
	cmd.Printf("  Covered:  %d of %d\n", report.Covered, report.Total)
	cmd.Printf("  Fraction: %.4f\n", report.Fraction)
	return nil
}

func runVectorise(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Vectors == nil {
		return errNotConfigured("vector")
	}

	report, err := services.Vectors.Vectorise(cmd.Context())
	if err != nil {
		return fmt.Errorf("vectorisation failed: %w", err)
	}

	st := stylesFor(cmd.OutOrStderr())
	cmd.Println(st.Title.Render("Vectors"))
	cmd.Printf("  Documents: %d\n", report.Documents)
	cmd.Printf("  Entries:   %d\n", report.Entries)
	if report.Failed > 0 {
		cmd.Printf("  Failed:    %s\n", st.Warning.Render(fmt.Sprint(report.Failed)))
	}
	if report.Interrupted {
		cmd.Println(st.Warning.Render("Interrupted before vectorising."))
	}
	return nil
}

func runTFIDF(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Coverage == nil {
		return errNotConfigured("coverage")
	}

	matrix, err := services.Coverage.ComputeTFIDF(cmd.Context())
	if err != nil {
		return fmt.Errorf("TF-IDF failed: %w", err)
	}
	cmd.Printf("Weighted %d words across %d documents.\n", len(matrix.Words), len(matrix.Documents))
	return nil
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if services == nil || services.Coverage == nil {
		return errNotConfigured("coverage")
	}

	results, err := services.Coverage.Similar(cmd.Context(), args[0], similarCount)
	if err != nil {
		return fmt.Errorf("similarity failed: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No similar documents.")
		return nil
	}

	st := stylesFor(cmd.OutOrStderr())
	for i, r := range results {
		cmd.Printf("%2d. %s %s\n", i+1, r.Name, st.Muted.Render(fmt.Sprintf("(%.3f)", r.Similarity)))
	}
	return nil
}

// currentSettings loads settings for flags left at zero.
func currentSettings() (*domain.Settings, error) {
	if services.Settings == nil {
		return nil, errNotConfigured("settings")
	}
	settings, err := services.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}
