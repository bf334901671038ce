package cli

import (
	"receipt-generator/internal/app"

	"github.com/spf13/cobra"
)

func newLayoutCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the effective layout as YAML",
		Long: `Print the anchor table, font and checkbox geometry the renderer will use.
Redirect it to a file, adjust the coordinates and point renderer.layout_file at it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			layout, err := app.ResolveLayout(cfg)
			if err != nil {
				return err
			}
			out, err := layout.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
