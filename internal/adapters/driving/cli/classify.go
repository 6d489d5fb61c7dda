package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
)

var classifyRetrain bool

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Grow the topic label set",
	Long: `For every topic in the label set, train a ridge classifier on the
labelled documents and assign the documents it scores above the high
threshold. Documents scoring between the thresholds are assigned when one
of their nearest neighbours already carries the topic.

Topics are visited in shuffled order. A topic with a stored model is
skipped unless --retrain is given.`,
	RunE: runClassify,
}

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Manage topic labels",
	RunE:  runLabelsList,
}

var labelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every topic and its documents",
	RunE:  runLabelsList,
}

var labelsAddCmd = &cobra.Command{
	Use:   "add <topic> <document>",
	Short: "Label an extracted document with a topic",
	Args:  cobra.ExactArgs(2),
	RunE:  runLabelsAdd,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyRetrain, "retrain", false, "discard stored models and train every topic")
	labelsCmd.AddCommand(labelsListCmd)
	labelsCmd.AddCommand(labelsAddCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(labelsCmd)
}

func runClassify(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Classifier == nil {
		return errNotConfigured("classifier")
	}

	report, err := services.Classifier.Run(cmd.Context(), driving.ClassifyRequest{Retrain: classifyRetrain})
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}
	printClassifyReport(cmd, report)
	return nil
}

func printClassifyReport(cmd *cobra.Command, report *driving.ClassifyReport) {
	st := stylesFor(cmd.OutOrStderr())
	cmd.Println(st.Title.Render("Classification"))
	if len(report.Topics) == 0 {
		cmd.Println("  No topics. Add one with 'lexicon labels add <topic> <document>'.")
		return
	}
	for _, tr := range report.Topics {
		switch {
		case tr.Err != nil:
			cmd.Printf("  %s: %s\n", st.Label.Render(tr.Topic), st.Error.Render(tr.Err.Error()))
		case tr.Skipped:
			cmd.Printf("  %s: %s\n", st.Label.Render(tr.Topic), st.Muted.Render("skipped, "+tr.Reason))
		default:
			cmd.Printf("  %s: %d assigned, %d by neighbour\n", st.Label.Render(tr.Topic), tr.Assigned, tr.ByNeighbour)
		}
	}
}

func runLabelsList(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Classifier == nil {
		return errNotConfigured("classifier")
	}

	labels, err := services.Classifier.Labels(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load labels: %w", err)
	}

	topics := labels.Topics()
	if len(topics) == 0 {
		cmd.Println("No labels yet.")
		return nil
	}

	st := stylesFor(cmd.OutOrStderr())
	for _, topic := range topics {
		members := labels.Members(topic)
		cmd.Printf("%s %s\n", st.Label.Render(topic), st.Muted.Render(fmt.Sprintf("(%d)", len(members))))
		for _, doc := range members {
			cmd.Printf("  %s\n", doc)
		}
	}
	return nil
}

func runLabelsAdd(cmd *cobra.Command, args []string) error {
	if services == nil || services.Classifier == nil {
		return errNotConfigured("classifier")
	}

	if err := services.Classifier.AddLabel(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("failed to add label: %w", err)
	}
	cmd.Printf("Labelled %s as %s.\n", args[1], args[0])
	return nil
}
