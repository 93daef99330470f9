package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/turtacn/TrajMap/internal/backend"
)

// VersionInfo is the output of `trajmap version`.
type VersionInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	BuildDate     string `json:"build_date"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
	ClientVersion string `json:"backend_client_version"`
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("trajmap %s (commit %s, built %s, %s %s)", v.Version, v.Commit, v.BuildDate, v.GoVersion, v.Platform)
}

// TableHeaders implements tableProvider.
func (v VersionInfo) TableHeaders() []string { return []string{"FIELD", "VALUE"} }

// TableRows implements tableProvider.
func (v VersionInfo) TableRows() [][]string {
	return [][]string{
		{"version", v.Version},
		{"commit", v.Commit},
		{"build_date", v.BuildDate},
		{"go_version", v.GoVersion},
		{"platform", v.Platform},
		{"backend_client", v.ClientVersion},
	}
}

// CurrentVersion collects the build-time version variables.
func CurrentVersion() VersionInfo {
	return VersionInfo{
		Version:       Version,
		Commit:        GitCommit,
		BuildDate:     BuildDate,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
		ClientVersion: backend.Version,
	}
}

// NewVersionCmd prints build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintResult(cmd, CurrentVersion())
		},
	}
}

//Personal.AI order the ending
