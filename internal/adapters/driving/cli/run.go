package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
)

var (
	runRetrain bool
	runEvery   time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run [folder]",
	Short: "Run every stage in order",
	Long: `Extract new documents, rebuild the index, recount word frequencies,
select the vocabulary, vectorise, weight by TF-IDF and classify.

The run stops at the first failing stage. Interrupting it with Ctrl+C
stops between stages; everything finished so far is kept.

With --every the pipeline runs again at that interval until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPipeline,
}

var resetCmd = &cobra.Command{
	Use:   "reset <table>...",
	Short: "Clear stage output tables",
	Long: fmt.Sprintf(`Clear one or more tables so their stage can run from scratch.

Tables: %s`, tableNames()),
	Args: cobra.MinimumNArgs(1),
	RunE: runReset,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts for every stage",
	RunE:  runStats,
}

func init() {
	runCmd.Flags().BoolVar(&runRetrain, "retrain", false, "discard stored models and train every topic")
	runCmd.Flags().DurationVar(&runEvery, "every", 0, "repeat the run at this interval, e.g. 30m")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	if services == nil || services.Pipeline == nil {
		return errNotConfigured("pipeline")
	}

	req := driving.RunRequest{Retrain: runRetrain}
	if len(args) == 1 {
		req.Folder = args[0]
	}

	if runEvery > 0 {
		return runScheduled(cmd, req)
	}

	report, err := services.Pipeline.Run(cmd.Context(), req)
	if report != nil {
		printRunReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}
	return nil
}

func runScheduled(cmd *cobra.Command, req driving.RunRequest) error {
	if services.NewScheduler == nil {
		return errNotConfigured("scheduler")
	}

	cmd.Printf("Running every %s. Press Ctrl+C to stop.\n", runEvery)
	scheduler := services.NewScheduler(runEvery)
	return scheduler.Start(cmd.Context(), req, func(report *driving.RunReport, err error) {
		if report != nil {
			printRunReport(cmd, report)
		}
		if err != nil {
			cmd.Println(stylesFor(cmd.OutOrStderr()).Error.Render("Run failed: " + err.Error()))
		}
	})
}

func printRunReport(cmd *cobra.Command, report *driving.RunReport) {
	st := stylesFor(cmd.OutOrStderr())
	if report.Extract != nil {
		printExtractReport(cmd, report.Extract)
	}
	if report.Aggregate != nil {
		cmd.Println(st.Title.Render("Aggregation"))
		cmd.Printf("  Documents: %d\n", report.Indexed)
		cmd.Printf("  Tokens:    %d\n", report.Aggregate.Tokens)
		cmd.Printf("  Words:     %d\n", report.Aggregate.Words)
		if report.Pruned > 0 {
			cmd.Printf("  Pruned:    %d\n", report.Pruned)
		}
	}
	if report.Coverage != nil {
		cmd.Println(st.Title.Render("Vocabulary"))
		cmd.Printf("  Words:     %d (%.2f%% of occurrences)\n", report.Coverage.Words, report.Coverage.Fraction*100)
	}
	if report.Vectors != nil {
		cmd.Println(st.Title.Render("Vectors"))
		cmd.Printf("  Documents: %d\n", report.Vectors.Documents)
	}
	if report.Classify != nil {
		printClassifyReport(cmd, report.Classify)
	}
	if report.Interrupted {
		cmd.Println(st.Warning.Render("Interrupted; run again to continue."))
	}
}

func runReset(cmd *cobra.Command, args []string) error {
	if services == nil || services.Maintenance == nil {
		return errNotConfigured("maintenance")
	}

	tables := make([]domain.Table, 0, len(args))
	for _, arg := range args {
		table, err := domain.ParseTable(arg)
		if err != nil {
			return err
		}
		tables = append(tables, table)
	}

	if err := services.Maintenance.Reset(cmd.Context(), tables...); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Printf("Reset %s.\n", strings.Join(args, ", "))
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Maintenance == nil {
		return errNotConfigured("maintenance")
	}

	stats, err := services.Maintenance.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	st := stylesFor(cmd.OutOrStderr())
	cmd.Println(st.Title.Render("Store"))
	cmd.Printf("  Documents:   %d\n", stats.Documents)
	cmd.Printf("  Extractions: %d\n", stats.Extractions)
	cmd.Printf("  Chunks:      %d\n", stats.Chunks)
	cmd.Printf("  Failures:    %d\n", stats.Failures)
	cmd.Printf("  Words:       %d (%d occurrences)\n", stats.Words, stats.TotalWords)
	cmd.Printf("  Vocabulary:  %d\n", stats.Vocabulary)
	cmd.Printf("  Vectors:     %d\n", stats.Vectors)
	cmd.Printf("  Models:      %d\n", stats.Models)
	return nil
}

func tableNames() string {
	names := make([]string, 0, len(domain.AllTables()))
	for _, t := range domain.AllTables() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
