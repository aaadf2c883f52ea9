// Package board implements the match-elimination engine of the gem game:
// board generation, run detection, gravity with refill, and the settle loop.
// It is UI-agnostic and deterministic given its random source.
package board

import "math/rand"

// Tile identifies the gem kind occupying a cell. Palette tiles are 1..n;
// Empty only exists between match removal and refill.
type Tile uint8

// Empty is the transient "no gem" sentinel.
const Empty Tile = 0

// Palette limits.
const (
	MinPalette = 3
	MaxPalette = 8
)

// tileLetters is used by Grid.String and ParseGrid.
const tileLetters = ".RBGPYOCW"

// Letter returns the single-character code of the tile ('.' for Empty).
func (t Tile) Letter() byte {
	if int(t) >= len(tileLetters) {
		return '?'
	}
	return tileLetters[t]
}

// TileFromLetter is the inverse of Tile.Letter.
func TileFromLetter(b byte) (Tile, bool) {
	for i := 0; i < len(tileLetters); i++ {
		if tileLetters[i] == b {
			return Tile(i), true
		}
	}
	return Empty, false
}

// Palette is the number of distinct gem kinds in play.
type Palette int

// Valid reports whether the palette size is supported.
func (p Palette) Valid() bool {
	return p >= MinPalette && p <= MaxPalette
}

// Contains reports whether t is a drawable tile of this palette.
func (p Palette) Contains(t Tile) bool {
	return t != Empty && int(t) <= int(p)
}

// Random draws a uniformly random tile.
func (p Palette) Random(rng RandSource) Tile {
	return Tile(rng.Intn(int(p)) + 1)
}

// RandSource is the entropy the engine consumes.
// *rand.Rand satisfies it; tests use scripted sources.
type RandSource interface {
	Intn(n int) int
}

var _ RandSource = (*rand.Rand)(nil)

// NewRand returns a seeded source.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
