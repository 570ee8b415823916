// Root command and shared wiring for the lifelog CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifelog-dev/lifelog/internal/app"
	"github.com/lifelog-dev/lifelog/internal/paths"
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

// Values loaded from config.yaml by PersistentPreRunE.
var (
	configDataDir string
	configQuota   int64
)

var rootCmd = &cobra.Command{
	Use:     "lifelog",
	Short:   "Lifelog is a local-first personal life tracker",
	Version: version,
	Long: `Lifelog tracks expenses, incomes, sleep, daily check-ins, diaries,
and reading/music logs on the local machine. Collections can be exported
to JSON files and merged back in on another machine.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		configDataDir = cfg.GetString(cfgKeyDataDir)
		configQuota = cfg.GetInt64(cfgKeyQuotaBytes)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: platform data dir)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(expenseCmd)
	rootCmd.AddCommand(incomeCmd)
	rootCmd.AddCommand(versionCmd)
}

func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// newLogger builds the CLI logger. Storage-layer warnings (corrupt data
// treated as empty, best-effort blob cleanup) surface on stderr.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// openApp assembles the storage stack for a command invocation.
func openApp() (*app.App, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}
	return app.Open(dataDir, configQuota, newLogger())
}
