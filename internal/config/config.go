// Package config provides YAML-based game configuration loading and
// difficulty presets for the arcade platform.
package config

import (
	"errors"
	"fmt"
	"time"
)

// GemsConfig contains all configuration for the gem match-3 game.
type GemsConfig struct {
	Board      GemsBoard      `yaml:"board"`
	Moves      int            `yaml:"moves"`
	Sanitize   GemsSanitize   `yaml:"sanitize"`
	Animation  GemsAnimation  `yaml:"animation"`
	Membership GemsMembership `yaml:"membership"`
}

// GemsBoard defines the board shape.
type GemsBoard struct {
	Size    int `yaml:"size"`    // Board is Size×Size
	Palette int `yaml:"palette"` // Number of gem colors
}

// GemsSanitize bounds the work spent clearing runs from a fresh board:
// MaxRounds cascade rounds per board, MaxAttempts boards in total.
type GemsSanitize struct {
	MaxAttempts int `yaml:"max_attempts"`
	MaxRounds   int `yaml:"max_rounds"`
}

// GemsAnimation controls cascade playback.
type GemsAnimation struct {
	StepDelayMS int `yaml:"step_delay_ms"` // 0 disables paced playback
}

// GemsMembership holds the membership price charged per payment request.
type GemsMembership struct {
	Price int `yaml:"price"`
}

// Bounds accepted by Validate.
const (
	MinBoardSize   = 3
	MaxBoardSize   = 12
	MinPalette     = 3
	MaxPalette     = 8
	MaxStepDelayMS = 5000
)

// StepDelay returns the cascade step delay as a duration.
func (c GemsConfig) StepDelay() time.Duration {
	return time.Duration(c.Animation.StepDelayMS) * time.Millisecond
}

// Validate reports every out-of-range field at once.
func (c GemsConfig) Validate() error {
	var errs []error
	if c.Board.Size < MinBoardSize || c.Board.Size > MaxBoardSize {
		errs = append(errs, fmt.Errorf("board.size %d out of range [%d, %d]", c.Board.Size, MinBoardSize, MaxBoardSize))
	}
	if c.Board.Palette < MinPalette || c.Board.Palette > MaxPalette {
		errs = append(errs, fmt.Errorf("board.palette %d out of range [%d, %d]", c.Board.Palette, MinPalette, MaxPalette))
	}
	if c.Moves < 1 {
		errs = append(errs, fmt.Errorf("moves must be at least 1, got %d", c.Moves))
	}
	if c.Sanitize.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("sanitize.max_attempts must be at least 1, got %d", c.Sanitize.MaxAttempts))
	}
	if c.Sanitize.MaxRounds < 1 {
		errs = append(errs, fmt.Errorf("sanitize.max_rounds must be at least 1, got %d", c.Sanitize.MaxRounds))
	}
	if c.Animation.StepDelayMS < 0 || c.Animation.StepDelayMS > MaxStepDelayMS {
		errs = append(errs, fmt.Errorf("animation.step_delay_ms %d out of range [0, %d]", c.Animation.StepDelayMS, MaxStepDelayMS))
	}
	if c.Membership.Price < 0 {
		errs = append(errs, fmt.Errorf("membership.price must not be negative, got %d", c.Membership.Price))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid gems config: %w", errors.Join(errs...))
	}
	return nil
}
