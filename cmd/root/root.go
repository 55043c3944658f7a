// Package root contains the root command for the application.
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"scanbook/scan-csv/internal/config"
)

var (
	// Log is the shared logger instance for commands.
	Log = logrus.New()

	// Cfg is the resolved application configuration, available to
	// subcommands after PersistentPreRunE.
	Cfg *config.Config

	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "scan-csv",
		Short: "Convert scanned bank statements into an accounting-software CSV.",
		Long: `scan-csv reads scanned bank-statement pages (images or multi-page
PDFs), extracts double-entry bookkeeping records with the Gemini API,
and exports them as a Shift_JIS CSV ready for accounting-software
import (UTF-8 with BOM when the content cannot be represented).`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to scan-csv!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			Cfg = cfg
			Log = config.ConfigureLogging(cfg)
			return nil
		},
	}

	// Output is the shared output path flag.
	Output string
)

// Init initializes the root command flags.
func Init() {
	Cmd.PersistentFlags().StringVarP(&Output, "output", "o", "", "Output file or directory")
}
