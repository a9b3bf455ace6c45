package colors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestInit_ForceOn(t *testing.T) {
	// Save and restore original state
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = true
	forceOn := true
	Init(&forceOn)

	if color.NoColor {
		t.Error("expected colors enabled when Init(true)")
	}
	if !Enabled() || !Active() {
		t.Error("Enabled() and Active() should return true")
	}
}

func TestInit_ForceOff(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = false
	forceOff := false
	Init(&forceOff)

	if !color.NoColor {
		t.Error("expected colors disabled when Init(false)")
	}
	if Enabled() || Active() {
		t.Error("Enabled() and Active() should return false")
	}
}

func TestInit_Nil_KeepsExisting(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	for _, v := range []bool{false, true} {
		color.NoColor = v
		Init(nil)
		if color.NoColor != v {
			t.Errorf("Init(nil) changed NoColor from %v", v)
		}
	}
}

var palette = map[string]func() *color.Color{
	"Title":   Title,
	"Heading": Heading,
	"Field":   Field,
	"Address": Address,
	"Section": Section,
	"Symbol":  Symbol,
	"Kind":    Kind,
	"Library": Library,
	"Value":   Value,
	"Hidden":  Hidden,
	"Warning": Warning,
	"Error":   Error,
}

func TestPalette_NoColor(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()
	color.NoColor = true

	for name, fn := range palette {
		if got := fn().Sprint("__text"); got != "__text" {
			t.Errorf("%s: expected plain text when disabled, got %q", name, got)
		}
	}
}

func TestPalette_Color(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()
	color.NoColor = false

	for name, fn := range palette {
		c := fn()
		c.EnableColor()
		got := c.Sprint("_main")
		if !strings.Contains(got, "\x1b[") {
			t.Errorf("%s: expected ANSI escape, got %q", name, got)
		}
		if !strings.Contains(got, "_main") {
			t.Errorf("%s: lost text, got %q", name, got)
		}
	}
}

func TestNew(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()
	color.NoColor = false

	c := New(color.FgRed, color.Bold)
	c.EnableColor()
	if got := c.Sprint("x"); got == "x" {
		t.Error("expected New to apply attributes")
	}
}
