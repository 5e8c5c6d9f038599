package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	grovelogging "github.com/grovetools/core/logging"
	"github.com/spf13/cobra"
)

// Build information, set with -ldflags "-X github.com/grovetools/speechprep/cmd.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var ulogVersion = grovelogging.NewUnifiedLogger("speechprep.cmd.version")

// VersionInfo describes the running binary.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func currentVersion() VersionInfo {
	return VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentVersion()
			if jsonOutput {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal version info to JSON: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}

			ulogVersion.Info("Version").
				Field("version", info.Version).
				Field("commit", info.Commit).
				Field("build_date", info.BuildDate).
				Pretty(fmt.Sprintf("speechprep %s (commit %s, built %s, %s %s)\n",
					info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)).
				PrettyOnly().
				Emit()
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print version information as JSON")
	return cmd
}
