package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/toodl-app/mind/internal/logging"
	"github.com/toodl-app/mind/pkg/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [utterance]",
	Short: "Interpret one utterance",
	Long: `Runs a single utterance through the interpreter and prints the proposed
intent. With a terminal attached the confirmation is rendered as rich text;
otherwise (or with --json) the raw response is printed as JSON.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAsk(cmd, args); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringP("snapshot", "s", "", "Path to a YAML or JSON snapshot file")
	askCmd.Flags().Bool("debug", false, "Attach interpretation traces to the response")
	askCmd.Flags().Bool("json", false, "Print the raw JSON response")
}

func runAsk(cmd *cobra.Command, args []string) error {
	utterance := strings.Join(args, " ")
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	debug, _ := cmd.Flags().GetBool("debug")
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg, logging.NewNop())
	if err != nil {
		return err
	}

	req := &domain.MindRequest{Utterance: utterance}
	if snapshotPath != "" {
		snapshot, err := loadSnapshot(snapshotPath)
		if err != nil {
			return err
		}
		req.Snapshot = snapshot
	}
	if debug {
		req.ContextHints = map[string]any{"debug": true}
	}

	response := engine.Handle(req)

	if jsonOut || !term.IsTerminal(int(os.Stdout.Fd())) {
		encoded, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}

	render := newRenderer()
	out, err := render(formatResponse(response))
	if err != nil {
		// Fall back to plain output if the terminal renderer chokes.
		fmt.Println(formatResponse(response))
		return nil
	}
	fmt.Print(out)
	return nil
}

// loadSnapshot reads a snapshot fixture. JSON documents decode directly;
// YAML documents round-trip through JSON so the struct's json tags apply.
func loadSnapshot(path string) (domain.MindExperienceSnapshot, error) {
	var snapshot domain.MindExperienceSnapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snapshot, fmt.Errorf("read snapshot: %w", err)
	}

	if json.Valid(data) {
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return snapshot, fmt.Errorf("parse snapshot: %w", err)
		}
		return snapshot, nil
	}

	var loose map[string]any
	if err := yaml.Unmarshal(data, &loose); err != nil {
		return snapshot, fmt.Errorf("parse snapshot: %w", err)
	}
	bridged, err := json.Marshal(loose)
	if err != nil {
		return snapshot, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := json.Unmarshal(bridged, &snapshot); err != nil {
		return snapshot, fmt.Errorf("parse snapshot: %w", err)
	}
	return snapshot, nil
}

func formatResponse(response *domain.MindResponse) string {
	var b strings.Builder

	if response.Status != domain.StatusOK {
		b.WriteString("# No intent\n\n")
		b.WriteString(response.Error)
		b.WriteString("\n")
	} else {
		result := response.Result
		fmt.Fprintf(&b, "# %s\n\n", result.Intent.Tool)
		fmt.Fprintf(&b, "> %s\n\n", result.Message)
		fmt.Fprintf(&b, "**Confidence:** %.2f\n\n", result.Confidence)

		if encoded, err := json.MarshalIndent(result.Intent, "", "  "); err == nil {
			fmt.Fprintf(&b, "```json\n%s\n```\n", encoded)
		}
	}

	if len(response.Debug) > 0 {
		b.WriteString("\n## Traces\n\n")
		for _, trace := range response.Debug {
			fmt.Fprintf(&b, "- **%s**: %s\n", trace.Phase, trace.Description)
		}
	}
	return b.String()
}
