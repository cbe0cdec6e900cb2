package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata, set by -ldflags at compile time. When unset, the VCS stamp
// recorded by the Go toolchain is used instead.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		writeVersion(cmd.OutOrStdout(), resolveBuildMeta(info))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildMeta is the version information printed by the version command.
type buildMeta struct {
	version string
	commit  string
	date    string
	dirty   bool
}

// resolveBuildMeta fills ldflags gaps from the embedded VCS settings.
func resolveBuildMeta(info *debug.BuildInfo) buildMeta {
	meta := buildMeta{version: Version, commit: CommitSHA, date: BuildDate}
	if info == nil {
		return meta
	}

	if meta.version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		meta.version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if meta.commit == "unknown" {
				meta.commit = s.Value
			}
		case "vcs.time":
			if meta.date == "unknown" {
				meta.date = s.Value
			}
		case "vcs.modified":
			meta.dirty = s.Value == "true"
		}
	}
	return meta
}

func writeVersion(w io.Writer, meta buildMeta) {
	commit := meta.commit
	if meta.dirty {
		commit += " (modified)"
	}
	fmt.Fprintf(w, "face-portal %s (%s, %s/%s)\n", meta.version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "  Commit: %s\n", commit)
	fmt.Fprintf(w, "  Built:  %s\n", meta.date)
}
