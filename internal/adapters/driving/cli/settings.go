package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change pipeline settings.

Settings are stored in config.toml in the data directory. Keys use dots,
for example extraction.chunk_size or classifier.high_threshold.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if services == nil || services.Settings == nil {
		return errNotConfigured("settings")
	}

	st := stylesFor(cmd.OutOrStderr())
	cmd.Println(st.Title.Render("Current Settings"))

	section := ""
	for _, key := range services.Settings.Keys() {
		value, err := services.Settings.Value(key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		group, name, _ := strings.Cut(key, ".")
		if group != section {
			section = group
			cmd.Println()
			cmd.Println(st.Label.Render("[" + group + "]"))
		}
		if value == "" {
			value = st.Muted.Render("(not set)")
		}
		cmd.Printf("  %s: %s\n", name, value)
	}
	cmd.Println()

	if err := services.Settings.Validate(); err != nil {
		cmd.Printf("%s %v\n", st.Warning.Render("Warning:"), err)
		cmd.Println("Run 'lexicon settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if services == nil || services.Settings == nil {
		return errNotConfigured("settings")
	}

	if err := services.Settings.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s to %s\n", args[0], args[1])
	return nil
}
