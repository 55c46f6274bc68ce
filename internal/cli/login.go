package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newLoginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize maestro with Spotify and store the credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			manager := newAuthManager(cfg, cmd.OutOrStdout())
			rec, err := manager.Authorize(ctx)
			if err != nil {
				return fmt.Errorf("authorizing with spotify: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in. Credentials saved to %s (valid until %s).\n",
				cfg.Credentials.Path, rec.ExpiresAt.Local().Format("15:04:05"))
			return err
		},
	}
}
