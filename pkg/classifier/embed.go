package classifier

import (
	_ "embed"
	"fmt"
)

// Default model artifacts, produced by the offline training pipeline and
// embedded so a zero-config process can still interpret.
var (
	//go:embed models/token_model.json
	defaultTokenModel []byte

	//go:embed models/command_model.json
	defaultCommandModel []byte

	//go:embed models/intent_model.json
	defaultIntentModel []byte
)

// DefaultTokenModel parses the embedded slot-classifier artifact.
func DefaultTokenModel() (*TokenModel, error) {
	model, err := ParseTokenModel(defaultTokenModel)
	if err != nil {
		return nil, fmt.Errorf("embedded token model: %w", err)
	}
	return model, nil
}

// DefaultRouterModels parses the embedded command and intent router artifacts.
func DefaultRouterModels() (command, intent *RouterModel, err error) {
	command, err = ParseRouterModel(defaultCommandModel)
	if err != nil {
		return nil, nil, fmt.Errorf("embedded command model: %w", err)
	}
	intent, err = ParseRouterModel(defaultIntentModel)
	if err != nil {
		return nil, nil, fmt.Errorf("embedded intent model: %w", err)
	}
	return command, intent, nil
}
