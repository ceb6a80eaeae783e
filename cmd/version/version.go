package version

import (
	"bytes"
	"fmt"
	"runtime"
	"text/template"

	"github.com/spf13/cobra"
)

// These variables can be overridden at build time with ldflags
var (
	Version   string // -X github.com/trac-network/tap-authority/cmd/version.Version=...
	Commit    string // -X github.com/trac-network/tap-authority/cmd/version.Commit=...
	BuildTime string // -X github.com/trac-network/tap-authority/cmd/version.BuildTime=...
)

var versionTemplate = `
 Version:	{{.Version}}
 Git commit:	{{.GitCommit}}
 Built:		{{.BuildTime}}
 Go version:	{{.GoVersion}}
 OS/Arch:	{{.Os}}/{{.Arch}}
`

type versionInfo struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	Os        string
	Arch      string
}

func render(info *versionInfo) (string, error) {
	tmpl, err := template.New("version").Parse(versionTemplate)
	if err != nil {
		return "", fmt.Errorf("template parsing error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, info); err != nil {
		return "", fmt.Errorf("template executing error: %w", err)
	}
	return buf.String(), nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// NewVersionCmd returns the version subcommand.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the application version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := render(&versionInfo{
				Version:   orUnknown(Version),
				GitCommit: orUnknown(Commit),
				BuildTime: orUnknown(BuildTime),
				GoVersion: runtime.Version(),
				Os:        runtime.GOOS,
				Arch:      runtime.GOARCH,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
