// Package cli provides the command-line interface for lexicon.
package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
	"github.com/custodia-labs/lexicon/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services holds the driving ports the commands call.
type Services struct {
	Extraction  driving.ExtractionService
	Index       driving.IndexService
	Aggregation driving.AggregationService
	Coverage    driving.CoverageService
	Vectors     driving.VectorService
	Classifier  driving.ClassifierService
	Settings    driving.SettingsService
	Maintenance driving.MaintenanceService
	Pipeline    driving.PipelineRunner

	// NewScheduler repeats pipeline runs every interval.
	NewScheduler func(interval time.Duration) driving.PipelineScheduler

	// Close releases the resources behind the services.
	Close func() error
}

// Bootstrap builds services for a data directory.
type Bootstrap func(home string) (*Services, error)

var (
	services  *Services
	bootstrap Bootstrap

	verbose bool
	homeDir string
)

var rootCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Personal knowledge pipeline",
	Long: `lexicon turns a folder of notes and PDFs into a searchable, labelled corpus.

Each stage can be run on its own:
  extract   - chunk new documents into the store
  index     - rebuild the document table
  aggregate - count stemmed words across chunks
  coverage  - select the vocabulary covering most word occurrences
  vectorise - build per-document word vectors
  tfidf     - weight the vectors by TF-IDF
  classify  - grow the topic label set

or all of them in order with 'lexicon run'.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug output")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "data directory (default $LEXICON_HOME or ~/.lexicon)")
}

// SetServices installs already built services. Bootstrap is skipped.
func SetServices(s *Services) {
	services = s
}

// SetBootstrap sets how services are built once flags are parsed.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// HomeDir resolves the data directory from the flag, the environment and
// the default, in that order.
func HomeDir() (string, error) {
	if homeDir != "" {
		return homeDir, nil
	}
	if env := os.Getenv("LEXICON_HOME"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lexicon"), nil
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if services != nil || bootstrap == nil || cmd == versionCmd {
		return nil
	}

	home, err := HomeDir()
	if err != nil {
		return err
	}
	s, err := bootstrap(home)
	if err != nil {
		return err
	}
	services = s
	return nil
}

// Close releases the services built by the bootstrap.
func Close() error {
	if services == nil || services.Close == nil {
		return nil
	}
	err := services.Close()
	services.Close = nil
	return err
}

// errNotConfigured is returned when a command runs without its service.
func errNotConfigured(name string) error {
	return errors.New(name + " service not configured")
}
