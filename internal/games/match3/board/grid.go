package board

import (
	"fmt"
	"strings"
)

// Coord addresses a cell. Row 0 is the top row.
type Coord struct {
	Row int
	Col int
}

// At is a convenience constructor for Coord.
func At(row, col int) Coord {
	return Coord{Row: row, Col: col}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Adjacent reports whether a and b are four-directional neighbours.
func Adjacent(a, b Coord) bool {
	dr := a.Row - b.Row
	dc := a.Col - b.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc == 1
}

// Grid is a square board of tiles stored row-major.
// Its size is fixed at construction.
type Grid struct {
	size  int
	tiles []Tile
}

// NewGrid returns a size×size grid of empty cells.
func NewGrid(size int) Grid {
	return Grid{size: size, tiles: make([]Tile, size*size)}
}

// ParseGrid builds a grid from rows of tile letters ("RBG...", '.' for empty).
// All rows must have the same length as the number of rows.
func ParseGrid(rows ...string) (Grid, error) {
	g := NewGrid(len(rows))
	for r, line := range rows {
		if len(line) != len(rows) {
			return Grid{}, fmt.Errorf("board: row %d has %d cells, want %d", r, len(line), len(rows))
		}
		for c := 0; c < len(line); c++ {
			t, ok := TileFromLetter(line[c])
			if !ok {
				return Grid{}, fmt.Errorf("board: unknown tile %q at %v", line[c], At(r, c))
			}
			g.tiles[r*g.size+c] = t
		}
	}
	return g, nil
}

// MustParseGrid is ParseGrid for fixtures; it panics on malformed input.
func MustParseGrid(rows ...string) Grid {
	g, err := ParseGrid(rows...)
	if err != nil {
		panic(err)
	}
	return g
}

// Size returns the side length.
func (g Grid) Size() int {
	return g.size
}

// InBounds reports whether c lies on the grid.
func (g Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.size && c.Col >= 0 && c.Col < g.size
}

// Get returns the tile at c, or Empty when out of bounds.
func (g Grid) Get(c Coord) Tile {
	if !g.InBounds(c) {
		return Empty
	}
	return g.tiles[c.Row*g.size+c.Col]
}

// Set writes t at c. Out-of-bounds writes are ignored.
// Set mutates the receiver's backing array; Clone first to keep the original.
func (g Grid) Set(c Coord, t Tile) {
	if g.InBounds(c) {
		g.tiles[c.Row*g.size+c.Col] = t
	}
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	tiles := make([]Tile, len(g.tiles))
	copy(tiles, g.tiles)
	return Grid{size: g.size, tiles: tiles}
}

// Swap returns a copy of the grid with the tiles at a and b exchanged.
func (g Grid) Swap(a, b Coord) Grid {
	out := g.Clone()
	if !g.InBounds(a) || !g.InBounds(b) {
		return out
	}
	ta, tb := g.Get(a), g.Get(b)
	out.Set(a, tb)
	out.Set(b, ta)
	return out
}

// Equal returns true if two grids have the same size and contents.
func (g Grid) Equal(other Grid) bool {
	if g.size != other.size {
		return false
	}
	for i, t := range g.tiles {
		if other.tiles[i] != t {
			return false
		}
	}
	return true
}

// CountEmpty returns the number of Empty cells.
func (g Grid) CountEmpty() int {
	n := 0
	for _, t := range g.tiles {
		if t == Empty {
			n++
		}
	}
	return n
}

// Row returns a copy of row r.
func (g Grid) Row(r int) []Tile {
	out := make([]Tile, g.size)
	copy(out, g.tiles[r*g.size:(r+1)*g.size])
	return out
}

// String renders one line per row using tile letters.
func (g Grid) String() string {
	var sb strings.Builder
	sb.Grow(g.size*g.size + g.size)
	for r := 0; r < g.size; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < g.size; c++ {
			sb.WriteByte(g.tiles[r*g.size+c].Letter())
		}
	}
	return sb.String()
}
