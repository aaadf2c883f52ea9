package config

import "fmt"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed" // Config file as-is
)

// gemsPreset is the move budget and color count of a preset.
type gemsPreset struct {
	moves   int
	palette int
}

var gemsPresets = map[DifficultyPreset]gemsPreset{
	DifficultyEasy:   {moves: 40, palette: 5},
	DifficultyNormal: {moves: 30, palette: 6},
	DifficultyHard:   {moves: 20, palette: 7},
}

// Presets lists the selectable presets in display order.
func Presets() []DifficultyPreset {
	return []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed}
}

// ParsePreset converts a CLI value to a preset. The empty string means no preset.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("config: unknown difficulty %q (want easy, normal, hard or fixed)", s)
	}
}

// Describe returns a one-line summary of a preset for menus.
func (p DifficultyPreset) Describe() string {
	if gp, ok := gemsPresets[p]; ok {
		return fmt.Sprintf("%d moves, %d colors", gp.moves, gp.palette)
	}
	if p == DifficultyFixed {
		return "use config file values"
	}
	return ""
}

// ApplyGemsPreset modifies the config based on a difficulty preset.
// Fixed and unknown presets leave it unchanged.
func ApplyGemsPreset(cfg *GemsConfig, preset DifficultyPreset) {
	gp, ok := gemsPresets[preset]
	if !ok {
		return
	}
	cfg.Moves = gp.moves
	cfg.Board.Palette = gp.palette
}
