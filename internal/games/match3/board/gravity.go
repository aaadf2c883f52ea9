package board

// ApplyGravityAndRefill clears the given cells, lets the remaining tiles of
// each column fall to the floor in their original order, then fills every
// vacated cell with a fresh random tile. The input grid is not modified and
// the returned grid holds no Empty cells.
//
// Refill order is row-major from the top-left, so a scripted RandSource
// decides exactly which tile lands where.
func ApplyGravityAndRefill(g Grid, empty []Coord, palette Palette, rng RandSource) Grid {
	out := g.Clone()
	for _, c := range empty {
		out.Set(c, Empty)
	}
	Compact(out)
	Refill(out, palette, rng)
	return out
}

// Compact shifts non-empty tiles of every column down in place (stack-on-floor).
func Compact(g Grid) {
	n := g.size
	for c := 0; c < n; c++ {
		write := n - 1
		for r := n - 1; r >= 0; r-- {
			t := g.tiles[r*n+c]
			if t == Empty {
				continue
			}
			if r != write {
				g.tiles[write*n+c] = t
			}
			write--
		}
		for r := write; r >= 0; r-- {
			g.tiles[r*n+c] = Empty
		}
	}
}

// Refill replaces every Empty cell in place with a random palette tile.
func Refill(g Grid, palette Palette, rng RandSource) {
	for i, t := range g.tiles {
		if t == Empty {
			g.tiles[i] = palette.Random(rng)
		}
	}
}
