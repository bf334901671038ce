// Package cli implements receiptctl, the command-line front end for
// rendering and checking receipts without the HTTP server.
package cli

import (
	"fmt"
	"io"

	"receipt-generator/config"
	"receipt-generator/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X receipt-generator/internal/cli.Version=...".
var Version = "dev"

type options struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the receiptctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "receiptctl",
		Short: "Render and validate payment receipts",
		Long: `receiptctl renders receipt images from the command line using the same
renderer, layout and counter configuration as the HTTP service.

Example Usage:
  receiptctl render --sample --out ./out
  receiptctl render --date 2024-01-15 --from "John Smith" --for Consulting --amount 250 --cash
  receiptctl validate --date 2024-01-15 --amount 0 --cash
  receiptctl next-id
  receiptctl layout > layout.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: ./config.yaml or ./config/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	root.AddCommand(
		newRenderCommand(opts),
		newValidateCommand(),
		newNextIDCommand(opts),
		newLayoutCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs receiptctl with the process arguments and returns the error
// for main to report.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// logger writes to stderr so stdout carries only command output.
func (o *options) logger(w io.Writer) zerolog.Logger {
	return logger.NewWithWriter(o.logLevel, w)
}
