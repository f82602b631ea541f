// Package markdown reads and renders the bulleted itinerary text produced by
// the itinerary stage. Parsing uses goldmark; terminal styling uses lipgloss.
package markdown

// Theme maps semantic roles to ANSI color indices (0-15). The terminal's own
// palette decides the actual colors. A negative index disables the color.
type Theme struct {
	Accent  int // Headings, start/end markers
	Muted   int // Link targets, code gutters
	Success int // List bullets
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Accent:  5,
		Muted:   8,
		Success: 2,
	}
}

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width.
func Render(source string, width int, theme Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}
