package main

import (
	"fmt"
	"os"

	"log/slog"

	"github.com/spf13/cobra"

	"github.com/konvo/konvo/internal/config"
	"github.com/konvo/konvo/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "konvo",
	Short: "Konvo is a conversational session orchestration engine",
	Long:  `Konvo processes chat messages through durable, validated multi-step flows backed by a Redis session store.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the YAML configuration file")
}

// loadConfig reads the configuration named by the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newLogger builds the logger described by the configuration.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if cfg.Log.Format == "json" {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}
