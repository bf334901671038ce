package cli

import (
	"errors"
	"fmt"

	"receipt-generator/config"
	"receipt-generator/internal/app"
	"receipt-generator/internal/core/domain"

	"github.com/spf13/cobra"
)

func newNextIDCommand(opts *options) *cobra.Command {
	var (
		counterFile string
		peek        bool
	)

	cmd := &cobra.Command{
		Use:   "next-id",
		Short: "Consume and print the next receipt id",
		Args:  cobra.NoArgs,
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

			if components.Counter == nil {
				return errors.New("ids are assigned by the remote renderer in remote mode")
			}

			var n int64
			if peek {
				n, err = components.Counter.Current(ctx)
			} else {
				n, err = components.Counter.Next(ctx)
			}
			if err != nil {
				return fmt.Errorf("reading counter: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), domain.FormatReceiptID(n, cfg.Counter.Width))
			return nil
		},
	}

	cmd.Flags().StringVar(&counterFile, "counter-file", "", "Use this counter file instead of the configured backend")
	cmd.Flags().BoolVar(&peek, "peek", false, "Print the last assigned id without consuming one")
	return cmd
}
