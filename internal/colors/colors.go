// Package colors provides the TTY-aware palette used by machobj output.
//
// Colors are automatically disabled when stdout is not a terminal (piped or
// redirected to a file). This behavior is provided by the underlying fatih/color
// library and respected by default. Use Init() to override based on CLI flags.
package colors

import "github.com/fatih/color"

// Init allows overriding the auto-detected color setting.
//   - forceColor == nil: keep auto-detected value
//   - forceColor == true: force colors on (--color)
//   - forceColor == false: force colors off (--no-color)
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

// Active is Enabled; renderers use it to pick highlighted output.
func Active() bool { return Enabled() }

// New creates a color with custom attributes.
func New(attrs ...color.Attribute) *color.Color {
	return color.New(attrs...)
}

// -----------------------------------------------------------------------------
// Object dump palette
// -----------------------------------------------------------------------------

// Title marks a file or slice heading.
func Title() *color.Color { return color.New(color.Bold, color.FgHiBlue) }

// Heading marks a table heading such as "Sections:".
func Heading() *color.Color { return color.New(color.Bold, color.Underline) }

func Field() *color.Color   { return color.New(color.Faint, color.FgWhite) }
func Address() *color.Color { return color.New(color.Faint) }
func Section() *color.Color { return color.New(color.FgHiCyan) }
func Symbol() *color.Color  { return color.New(color.Bold) }
func Kind() *color.Color    { return color.New(color.Faint, color.FgCyan) }
func Library() *color.Color { return color.New(color.Faint, color.FgMagenta) }
func Value() *color.Color   { return color.New(color.FgHiYellow) }

// Hidden marks records that only exist as the second half of a pair.
func Hidden() *color.Color { return color.New(color.Italic, color.Faint) }

func Warning() *color.Color { return color.New(color.Bold, color.FgYellow) }
func Error() *color.Color   { return color.New(color.Bold, color.FgRed) }
