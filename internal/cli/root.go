package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/figwire/pkg/buildinfo"
	"github.com/matzehuels/figwire/pkg/codec"
)

// Execute runs the figwire CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (convert, bench,
// serve), loads the TOML configuration, configures logging based on the
// --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext. The context is propagated to every command so that
// long-running commands such as serve shut down on cancellation.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
		cfg        Config
	)

	root := &cobra.Command{
		Use:          "figwire",
		Short:        "figwire converts figure trees to and from strict JSON",
		Long:         `figwire is a CLI tool for serializing figure value trees (traces, layouts, frames, numeric arrays, timestamps) to strict JSON and back, with selectable encoding engines.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)

			explicit := cmd.Flags().Changed("config") || cmd.InheritedFlags().Changed("config")
			loaded, err := loadConfig(configPath, explicit)
			if err != nil {
				return err
			}
			cfg = loaded
			if cfg.Engine != "" {
				if err := codec.SetDefaultEngine(cfg.Engine); err != nil {
					return err
				}
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to figwire.toml")

	root.AddCommand(newConvertCmd(&cfg))
	root.AddCommand(newBenchCmd())
	root.AddCommand(newServeCmd(&cfg))

	return root.ExecuteContext(ctx)
}
