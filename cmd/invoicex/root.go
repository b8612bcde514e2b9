package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

var (
	configPath string
	logLevel   string

	cfg      *common.Config
	logger   *slog.Logger
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "invoicex",
	Short: "Extract invoice fields and line items from PDF documents",
	Long: `invoicex reads a directory of invoice and order PDFs, extracts their text
(falling back to OCR for scanned documents), recognises invoice fields and
item tables, and writes a summary table and a line item table.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
}

// setup loads the configuration, applies command flags and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := common.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	applyFlags(cmd, c)
	if err := c.Validate(); err != nil {
		return err
	}

	l, closer, err := common.NewLogger(c.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(l)
	cfg, logger, closeLog = c, l, closer
	return nil
}
