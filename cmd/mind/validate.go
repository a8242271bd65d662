package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toodl-app/mind/internal/logging"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the model artifacts for consistency",
	Long:  `Loads the token and router models (embedded or from the configured paths) and reports their vocabulary and class inventory.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Model artifacts are valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, logging.NewNop())
	if err != nil {
		return fmt.Errorf("failed to init engine: %w", err)
	}

	info := engine.ModelInfo()
	fmt.Printf("Token model: %d features, classes: %s\n",
		info.TokenVocabulary, strings.Join(info.TokenClasses, ", "))
	if info.RouterVocabulary > 0 {
		fmt.Printf("Router: %d features, intents: %s, threshold: %.2f\n",
			info.RouterVocabulary, strings.Join(info.IntentClasses, ", "), info.RouterThreshold)
	} else {
		fmt.Println("Router: disabled")
	}
	return nil
}
