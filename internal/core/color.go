package core

// Color is a foreground color for a screen cell. The zero value leaves the
// terminal default in place.
type Color uint8

// Colors available to games. Gems use the bright range so they stay
// distinct on both dark and light terminals.
const (
	ColorDefault Color = iota
	ColorWhite
	ColorGray
	ColorOrange
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite

	colorCount
)

// ansi256 holds the 256-color palette index of every Color.
var ansi256 = [colorCount]string{
	ColorDefault:       "",
	ColorWhite:         "7",
	ColorGray:          "245",
	ColorOrange:        "208",
	ColorBrightRed:     "9",
	ColorBrightGreen:   "10",
	ColorBrightYellow:  "11",
	ColorBrightBlue:    "12",
	ColorBrightMagenta: "13",
	ColorBrightCyan:    "14",
	ColorBrightWhite:   "15",
}

// Code returns the ANSI 256-color index for c, or "" for the default and
// for values outside the palette.
func (c Color) Code() string {
	if c >= colorCount {
		return ""
	}
	return ansi256[c]
}

// Colors returns every defined color, default first.
func Colors() []Color {
	out := make([]Color, colorCount)
	for i := range out {
		out[i] = Color(i)
	}
	return out
}
