package config

import (
	_ "embed"
)

//go:embed defaults/gems.yaml
var defaultGemsYAML []byte

// DefaultGemsConfig returns the default gem game configuration.
func DefaultGemsConfig() GemsConfig {
	return GemsConfig{
		Board: GemsBoard{
			Size:    8,
			Palette: 6,
		},
		Moves: 30,
		Sanitize: GemsSanitize{
			MaxAttempts: 10,
			MaxRounds:   20,
		},
		Animation: GemsAnimation{
			StepDelayMS: 300,
		},
		Membership: GemsMembership{
			Price: 100,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a game.
func GetDefaultYAML(gameID string) []byte {
	switch gameID {
	case "gems":
		return defaultGemsYAML
	default:
		return nil
	}
}
