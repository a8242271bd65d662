package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/toodl-app/mind"
	"github.com/toodl-app/mind/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "mind",
	Short: "Mind is a natural-language command interpreter for Toodl",
	Long:  `Mind parses free-text requests like "Add $20 for gas to the ski trip group" into structured, confirmable intents.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func logLevel(cmd *cobra.Command) slog.Level {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func buildEngine(cfg config.Config, logger *slog.Logger) (*mind.Engine, error) {
	opts := []mind.Option{mind.WithLogger(logger)}
	if cfg.Models.Token != "" {
		opts = append(opts, mind.WithTokenModelPath(cfg.Models.Token))
	}
	if cfg.Models.Command != "" || cfg.Models.Intent != "" {
		opts = append(opts, mind.WithRouterModelPaths(cfg.Models.Command, cfg.Models.Intent))
	}
	if cfg.Router.Disabled {
		opts = append(opts, mind.WithoutRouter())
	}
	if cfg.Router.Threshold > 0 {
		opts = append(opts, mind.WithRouterThreshold(cfg.Router.Threshold))
	}
	return mind.New(opts...)
}
