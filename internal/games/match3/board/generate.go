package board

// Generate returns a size×size grid with every cell drawn independently and
// uniformly from the palette. No adjacency rule is enforced here; callers
// sanitize with Settle.
func Generate(palette Palette, size int, rng RandSource) Grid {
	g := NewGrid(size)
	for i := range g.tiles {
		g.tiles[i] = palette.Random(rng)
	}
	return g
}
