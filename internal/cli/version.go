package cli

import (
	"github.com/eleven-am/cinelog/pkg/cinelog"
	"github.com/spf13/cobra"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display cinelog version and build information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.printer(cmd)
			if opts.jsonOutput {
				return p.JSON(cinelog.BuildInfo)
			}
			p.Printf("%s", cinelog.FullVersionInfo())
			return nil
		},
	}
}
