package match3

import (
	"fmt"
	"slices"

	"github.com/vovakirdan/gem-arcade/internal/core"
	"github.com/vovakirdan/gem-arcade/internal/games/match3/board"
)

const (
	cellWidth = 3 // Bracket, gem, bracket
	hudHeight = 3
	gemGlyph  = '●'
	fadeGlyph = '✦'
)

// tileColors maps palette tiles to screen colors, indexed by Tile.
var tileColors = [...]core.Color{
	board.Empty: core.ColorGray,
	1:           core.ColorBrightRed,
	2:           core.ColorBrightBlue,
	3:           core.ColorBrightGreen,
	4:           core.ColorBrightMagenta,
	5:           core.ColorBrightYellow,
	6:           core.ColorOrange,
	7:           core.ColorBrightCyan,
	8:           core.ColorBrightWhite,
}

func tileColor(t board.Tile) core.Color {
	if int(t) < len(tileColors) {
		return tileColors[t]
	}
	return core.ColorDefault
}

// minScreenSize is the board plus its border, the HUD and the help line.
func (g *Game) minScreenSize() (int, int) {
	size := g.session.Config().BoardSize
	minW := max(size*cellWidth+2, 36)
	minH := size + 2 + hudHeight + 2
	return minW, minH
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	if g.session == nil {
		return
	}

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	size := g.session.Config().BoardSize
	boardW := size*cellWidth + 2
	boardH := size + 2
	area := core.NewRect(0, hudHeight, g.screenW, g.screenH-hudHeight-1).Centered(boardW, boardH)

	g.renderHUD(dst, area)
	g.renderBoard(dst, area)
	g.renderHelp(dst, area)
	g.renderOverlays(dst, area)
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	minW, minH := g.minScreenSize()
	dst.DrawTextCentered(y+1, fmt.Sprintf("Please resize terminal to %dx%d", minW, minH))
}

// renderHUD draws title, score, moves and difficulty above the board.
func (g *Game) renderHUD(dst *core.Screen, area core.Rect) {
	dst.DrawTextCentered(0, "GEM MATCH")

	shownScore, shownMoves := g.displayTotals()
	score := fmt.Sprintf("Score: %d", shownScore)
	if g.lastGain > 0 && !g.animating() {
		score += fmt.Sprintf(" (+%d)", g.lastGain)
	}
	dst.DrawTextColored(area.X, 1, score, core.ColorBrightYellow)

	moves := fmt.Sprintf("Moves: %d", shownMoves)
	movesColor := core.ColorWhite
	if shownMoves <= 5 {
		movesColor = core.ColorBrightRed
	}
	dst.DrawTextColored(max(area.Right()-len(moves), area.X), 1, moves, movesColor)

	if g.preset != "" {
		dst.DrawTextCentered(2, "Difficulty: "+string(g.preset))
	}
}

// renderBoard draws the framed grid. The selected cell is bracketed, the
// cursor is marked with angle brackets, and cells about to clear fade.
func (g *Game) renderBoard(dst *core.Screen, area core.Rect) {
	dst.DrawBox(area)

	grid, clearing := g.displayGrid()
	selected, hasSel := g.session.Selection()
	resting := !g.animating()

	for r := range grid.Size() {
		for c := range grid.Size() {
			at := board.At(r, c)
			x := area.X + 1 + c*cellWidth
			y := area.Y + 1 + r

			t := grid.Get(at)
			glyph := gemGlyph
			if t == board.Empty {
				glyph = ' '
			}
			color := tileColor(t)
			if slices.Contains(clearing, at) {
				glyph = fadeGlyph
				color = core.ColorBrightWhite
			}
			dst.SetColored(x+1, y, glyph, color)

			switch {
			case resting && hasSel && at == selected:
				dst.SetColored(x, y, '[', core.ColorBrightWhite)
				dst.SetColored(x+2, y, ']', core.ColorBrightWhite)
			case resting && at == g.cursor:
				dst.SetColored(x, y, '>', core.ColorBrightCyan)
				dst.SetColored(x+2, y, '<', core.ColorBrightCyan)
			}
		}
	}
}

func (g *Game) renderHelp(dst *core.Screen, area core.Rect) {
	help := "arrows move  enter select  p pause  r restart  q quit"
	if len(help) > g.screenW {
		help = "arrows/enter/p/r/q"
	}
	dst.DrawTextColored((g.screenW-len(help))/2, area.Bottom(), help, core.ColorGray)
}

// renderOverlays draws pause and game-over boxes over the board.
func (g *Game) renderOverlays(dst *core.Screen, area core.Rect) {
	switch {
	case g.paused:
		g.renderBanner(dst, area, "PAUSED", "Press P to resume")
	case g.State().GameOver:
		g.renderBanner(dst, area, "GAME OVER",
			fmt.Sprintf("Final score: %d", g.session.Score()),
			"R restart  Q quit")
	}
}

func (g *Game) renderBanner(dst *core.Screen, area core.Rect, title string, lines ...string) {
	w := len(title)
	for _, l := range lines {
		w = max(w, len(l))
	}
	box := area.Centered(w+4, len(lines)+3)
	dst.DrawRect(box, ' ')
	dst.DrawBox(box)
	dst.DrawTextColored(box.X+(box.W-len(title))/2, box.Y+1, title, core.ColorBrightYellow)
	for i, l := range lines {
		dst.DrawText(box.X+(box.W-len(l))/2, box.Y+2+i, l)
	}
}
