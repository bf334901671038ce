package cli

import (
	"errors"
	"fmt"

	"receipt-generator/internal/core/domain"

	"github.com/spf13/cobra"
)

// ErrInvalidReceipt is returned by validate when the receipt is rejected,
// so the process exits non-zero.
var ErrInvalidReceipt = errors.New("receipt is invalid")

func newValidateCommand() *cobra.Command {
	var flags receiptFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check receipt fields without rendering",
		Long:  `Print "ok" for an acceptable receipt, or the first failing check and field.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := flags.request(cmd).Validate()
			if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}

			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				return err
			}
			if vErr.Field != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", vErr.Kind, vErr.Field)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), vErr.Kind)
			}
			return ErrInvalidReceipt
		},
	}

	flags.register(cmd)
	return cmd
}
