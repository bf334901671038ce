package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"receipt-generator/config"
	"receipt-generator/internal/app"

	"github.com/spf13/cobra"
)

func newRenderCommand(opts *options) *cobra.Command {
	var (
		flags       receiptFlags
		outDir      string
		counterFile string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a receipt PNG to disk",
		Long: `Validate the receipt, assign an id from the configured counter unless --id
is given, render it and write receipt_<id>_<date>.png into --out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if counterFile != "" {
				cfg.Counter.Backend = config.CounterFile
				cfg.Counter.Path = counterFile
			}

			ctx := cmd.Context()

			components, err := app.Build(ctx, cfg, nil, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer components.Close()

			out, err := components.Service.Generate(ctx, flags.request(cmd))
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			path := filepath.Join(outDir, out.ArchiveFilename())
			if err := os.WriteFile(path, out.ImageBytes, 0o644); err != nil {
				return fmt.Errorf("writing receipt: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().StringVar(&counterFile, "counter-file", "", "Use this counter file instead of the configured backend")
	return cmd
}
