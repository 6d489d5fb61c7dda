package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the lexicon build and data directory",
	Long: `Print the lexicon release, the commit it was built from, the Go
toolchain and the data directory commands would use.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the release")
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	if versionShort {
		cmd.Println(version)
		return nil
	}

	home, err := HomeDir()
	if err != nil {
		home = "unknown (" + err.Error() + ")"
	}

	st := stylesFor(cmd.OutOrStderr())
	cmd.Println(st.Title.Render("lexicon " + version))
	cmd.Printf("  Commit: %s\n", buildCommit())
	cmd.Printf("  Go:     %s\n", runtime.Version())
	cmd.Printf("  Data:   %s\n", home)
	return nil
}

// buildCommit returns the VCS revision stamped by go build, shortened.
func buildCommit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	revision, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return "unknown"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}
