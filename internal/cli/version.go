package cli

import (
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/otiai10/recipebox/internal/version"
)

// versionInfo is the output of the version command
type versionInfo struct {
	Commit string `json:"commit"`
	Go     string `json:"go"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{Commit: version.CommitHash, Go: runtime.Version()}
			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(info, func(w io.Writer) {
				io.WriteString(w, "recipebox "+info.Commit+"\n")
			})
		},
	}
}
