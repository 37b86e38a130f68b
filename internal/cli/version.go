package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dbtlineage/pkg/buildinfo"
)

// versionCommand prints build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printKeyValue(c.Out, "Version", buildinfo.Version)
			printKeyValue(c.Out, "Commit", buildinfo.Commit)
			printKeyValue(c.Out, "Built", buildinfo.Date)
			printKeyValue(c.Out, "Go", runtime.Version())
		},
	}
}
