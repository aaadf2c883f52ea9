package board

// PointsPerTile is awarded for every distinct matched cell.
const PointsPerTile = 10

// runLength is the shortest run that counts as a match.
const runLength = 3

// MatchResult describes the cells taking part in runs of three or more.
type MatchResult struct {
	Cells  []Coord // Distinct, sorted row-major
	Points int
}

// Found reports whether any run exists.
func (m MatchResult) Found() bool {
	return len(m.Cells) > 0
}

// DetectMatches scans rows and columns with a sliding window of three and
// returns the union of all matched cells. A cell in both a horizontal and a
// vertical run is counted once. Empty cells never match.
func DetectMatches(g Grid) MatchResult {
	n := g.size
	marked := make([]bool, n*n)

	for r := 0; r < n; r++ {
		for c := 0; c+runLength <= n; c++ {
			t := g.tiles[r*n+c]
			if t == Empty || g.tiles[r*n+c+1] != t || g.tiles[r*n+c+2] != t {
				continue
			}
			for k := 0; k < runLength; k++ {
				marked[r*n+c+k] = true
			}
		}
	}

	for c := 0; c < n; c++ {
		for r := 0; r+runLength <= n; r++ {
			t := g.tiles[r*n+c]
			if t == Empty || g.tiles[(r+1)*n+c] != t || g.tiles[(r+2)*n+c] != t {
				continue
			}
			for k := 0; k < runLength; k++ {
				marked[(r+k)*n+c] = true
			}
		}
	}

	var cells []Coord
	for i, on := range marked {
		if on {
			cells = append(cells, At(i/n, i%n))
		}
	}
	return MatchResult{Cells: cells, Points: PointsPerTile * len(cells)}
}

// HasMatches is the dry-run form of DetectMatches.
func HasMatches(g Grid) bool {
	return DetectMatches(g).Found()
}
