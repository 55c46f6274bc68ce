// Package cli implements the maestro command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nadzzz/maestro/internal/config"
)

type options struct {
	configFile string
	voice      bool
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "maestro",
		Short: "Control Spotify playback with text or voice commands",
		Long: "maestro turns short spoken or typed commands into Spotify playback actions. " +
			"Type a command at the prompt, or 'q' to speak one.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to config file (YAML)")
	rootCmd.Flags().BoolVar(&opts.voice, "voice", false, "listen for a voice command before the first prompt")

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(opts),
	)

	return rootCmd
}

// loadConfig reads and validates the configuration and installs the logger.
// Logs go to the command's error stream so the prompt stays readable.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.SetupLogging(cfg.Logging, cmd.ErrOrStderr())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
