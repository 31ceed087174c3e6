package cli

import (
	"github.com/spf13/cobra"

	"github.com/hamed0406/probecheck/internal/render"
	"github.com/hamed0406/probecheck/internal/staticcheck"
)

func newStaticCmd(a *app) *cobra.Command {
	check := staticcheck.Check{}
	var noColor bool
	cmd := &cobra.Command{
		Use:   "static [FILE...]",
		Short: "Check that source files reference a marker",
		Long: `Static verifies, without any network access, that each named file under
--dir exists and contains --marker. With no files the grades management
components are checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			check.Files = staticcheck.DefaultFiles
			if len(args) > 0 {
				check.Files = args
			}
			results, err := check.Run()
			if err != nil {
				return err
			}
			render.NewConsole(a.stdout, !noColor, false).Static(check.Marker, results)
			if !staticcheck.AllOK(results) {
				return errVerdict
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&check.Dir, "dir", staticcheck.DefaultDir, "Directory containing the files")
	cmd.Flags().StringVar(&check.Marker, "marker", staticcheck.DefaultMarker, "Text every file must contain")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}
