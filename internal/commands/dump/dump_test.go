package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blacktop/machobj/internal/machotest"
	"github.com/blacktop/machobj/pkg/macho"
	"github.com/blacktop/machobj/pkg/object"
)

func noColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func fixture() *machotest.Builder {
	b := machotest.New(true, false, machotest.CPUAmd64)
	b.Flags = uint32(macho.FlagSubsectionsViaSymbols)
	b.AddSegment("",
		machotest.Section{
			Name: "__text", Seg: "__TEXT", Align: 4, Data: make([]byte, 0x10),
			Flags: uint32(macho.S_ATTR_PURE_INSTRUCTIONS | macho.S_ATTR_SOME_INSTRUCTIONS),
			Relocs: []machotest.Reloc{
				b.Plain(0x1, 2, true, 2, true, uint8(macho.X86_64_RELOC_BRANCH)),
				b.Plain(0x9, 1, true, 2, true, uint8(macho.X86_64_RELOC_BRANCH)),
			},
		},
		machotest.Section{Name: "__bss", Seg: "__DATA", Addr: 0x10, Size: 0x8, Flags: uint32(macho.S_ZEROFILL)},
	)
	b.AddSymtab(
		machotest.Symbol{Name: "_main", Type: uint8(macho.N_SECT | macho.N_EXT), Sect: 1, Value: 0x8},
		machotest.Symbol{Name: "__Z3foov", Type: uint8(macho.N_SECT | macho.N_EXT), Sect: 1},
		machotest.Symbol{Name: "_puts", Type: uint8(macho.N_UNDF | macho.N_EXT)},
	)
	b.AddDylib(machotest.LC_LOAD_DYLIB, "/usr/lib/libSystem.B.dylib")
	b.AddDataInCode(machotest.Dice{Offset: 0x204, Length: 4, Kind: uint16(macho.DiceKindJumpTable32)})
	return b
}

func fixtureSlice(t *testing.T) Slice {
	t.Helper()
	f, err := macho.NewFile(fixture().Build())
	require.NoError(t, err)
	return Slice{Path: "fixture.o", File: f}
}

var all = &Config{Header: true, Loads: true, Sections: true, Symbols: true, Relocs: true, Libs: true, Dice: true}

func TestSummarize(t *testing.T) {
	got, err := Summarize(fixtureSlice(t), all)
	require.NoError(t, err)

	want := &Summary{
		Path:         "fixture.o",
		Format:       "Mach-O 64-bit x86-64",
		Arch:         "x86_64",
		Type:         "MH_OBJECT",
		Flags:        []string{"SubsectionsViaSymbols"},
		LoadCommands: 4,
		Sections: []SectionSummary{
			{Segment: "__TEXT", Name: "__text", Addr: 0, Size: 0x10, Align: 16, Kinds: []string{"TEXT"}},
			{Segment: "__DATA", Name: "__bss", Addr: 0x10, Size: 0x8, Align: 1, Kinds: []string{"BSS"}},
		},
		Symbols: []SymbolSummary{
			{Name: "__Z3foov", Addr: 0, Size: 8, Type: "function", Flags: "global", Section: "__TEXT,__text"},
			{Name: "_main", Addr: 8, Size: 8, Type: "function", Flags: "global", Section: "__TEXT,__text"},
			{Name: "_puts", Addr: object.UnknownAddressOrSize, Size: object.UnknownAddressOrSize, Type: "unknown", Flags: "undefined|global"},
		},
		Relocations: []RelocSummary{
			{Section: "__TEXT,__text", Offset: 0x1, Type: "X86_64_RELOC_BRANCH", Value: "_puts"},
			{Section: "__TEXT,__text", Offset: 0x9, Type: "X86_64_RELOC_BRANCH", Value: "__Z3foov"},
		},
		Libraries: []LibrarySummary{
			{Path: "/usr/lib/libSystem.B.dylib", ShortName: "System", Command: "LC_LOAD_DYLIB"},
		},
		DataInCode: []macho.DataInCodeEntry{{Offset: 0x204, Length: 4, Kind: macho.DiceKindJumpTable32}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeDemangle(t *testing.T) {
	got, err := Summarize(fixtureSlice(t), &Config{Symbols: true, Relocs: true, Demangle: true})
	require.NoError(t, err)

	names := make([]string, 0, len(got.Symbols))
	for _, s := range got.Symbols {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"foo()", "_main", "_puts"}, names)
	assert.Equal(t, "foo()", got.Relocations[1].Value)
	assert.Nil(t, got.Sections)
	assert.Nil(t, got.Libraries)
}

func TestSummarizeBrokenPair(t *testing.T) {
	b := machotest.New(true, false, machotest.CPUAmd64)
	b.AddSegment("__TEXT", machotest.Section{Name: "__text", Data: make([]byte, 8),
		Relocs: []machotest.Reloc{b.Plain(0x0, 0, false, 3, true, uint8(macho.X86_64_RELOC_SUBTRACTOR))}})
	b.AddSymtab(machotest.Symbol{Name: "_a", Type: uint8(macho.N_SECT), Sect: 1})
	f, err := macho.NewFile(b.Build())
	require.NoError(t, err)

	got, err := Summarize(Slice{Path: "broken.o", File: f}, &Config{Relocs: true})
	require.NoError(t, err)
	require.Len(t, got.Relocations, 1)
	assert.Empty(t, got.Relocations[0].Value)
	assert.Contains(t, got.Relocations[0].Error, "X86_64_RELOC_SUBTRACTOR")
}

func TestText(t *testing.T) {
	noColor(t)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, fixtureSlice(t), false, all))
	out := buf.String()

	lines := strings.Split(out, "\n")
	assert.Equal(t, "fixture.o", lines[0])
	for _, want := range []string{
		"Mach-O 64-bit x86-64",
		"MH_OBJECT",
		"SubsectionsViaSymbols",
		"Load Commands:",
		"LC_SEGMENT_64",
		"LC_DATA_IN_CODE",
		"Sections:",
		"__TEXT,__text",
		"__DATA,__bss",
		"align=16",
		"Symbols:",
		"undefined|global",
		"Relocations: __TEXT,__text",
		"X86_64_RELOC_BRANCH",
		"Libraries:",
		"/usr/lib/libSystem.B.dylib",
		"Data in Code:",
		"0x00000204    4 JUMP_TABLE32",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "\x1b[", "colors are off")

	var found bool
	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) == 6 && fields[5] == "_main" {
			found = true
			assert.Equal(t, []string{"0x0000000000000008", "0x8", "function", "global", "__TEXT,__text", "_main"}, fields)
		}
		if len(fields) > 0 && fields[len(fields)-1] == "_puts" && len(fields) == 6 {
			assert.Equal(t, "-", fields[0], "undefined symbols have no address")
			assert.Equal(t, "-", fields[1])
		}
	}
	assert.True(t, found, "no row for _main in:\n%s", out)
}

func TestTextUniversalName(t *testing.T) {
	noColor(t)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, fixtureSlice(t), true, &Config{}))
	assert.Equal(t, "fixture.o (x86_64)\n", buf.String())
}

func TestTextHiddenPair(t *testing.T) {
	noColor(t)

	b := machotest.New(true, false, machotest.CPUAmd64)
	b.AddSegment("__DATA", machotest.Section{Name: "__data", Data: make([]byte, 8),
		Relocs: []machotest.Reloc{
			b.Plain(0x0, 1, false, 3, true, uint8(macho.X86_64_RELOC_SUBTRACTOR)),
			b.Plain(0x0, 0, false, 3, true, uint8(macho.X86_64_RELOC_UNSIGNED)),
		}})
	b.AddSymtab(
		machotest.Symbol{Name: "_a", Type: uint8(macho.N_SECT), Sect: 1},
		machotest.Symbol{Name: "_b", Type: uint8(macho.N_SECT), Sect: 1, Value: 4},
	)
	f, err := macho.NewFile(b.Build())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, Slice{Path: "pair.o", File: f}, false, &Config{Relocs: true}))
	out := buf.String()
	assert.Contains(t, out, "_a-_b")
	assert.Contains(t, out, "(pair)")
}

func TestJSON(t *testing.T) {
	noColor(t)

	sum, err := Summarize(fixtureSlice(t), &Config{Libs: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, []*Summary{sum}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[\n"))
	assert.Contains(t, out, `"short_name": "System"`)
	assert.Contains(t, out, `"arch": "x86_64"`)
	assert.NotContains(t, out, `"symbols"`)
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestOpenSlicesThin(t *testing.T) {
	path := writeTemp(t, "thin.o", fixture().Build())

	slices, err := OpenSlices(path)
	require.NoError(t, err)
	require.Len(t, slices, 1)
	assert.Equal(t, path, slices[0].Path)
	assert.Zero(t, slices[0].Offset)
	assert.Equal(t, object.ArchX86_64, slices[0].Arch())
}

func TestOpenSlicesBigEndianThin(t *testing.T) {
	b := machotest.New(false, true, machotest.CPUPpc)
	b.AddSegment("__TEXT", machotest.Section{Name: "__text", Data: make([]byte, 4)})
	path := writeTemp(t, "ppc.o", b.Build())

	slices, err := OpenSlices(path)
	require.NoError(t, err)
	require.Len(t, slices, 1)
	assert.Equal(t, object.ArchPPC, slices[0].Arch())
}

func TestOpenSlicesUniversal(t *testing.T) {
	x86 := machotest.New(true, false, machotest.CPUAmd64).
		AddSegment("__TEXT", machotest.Section{Name: "__text", Data: []byte{0xc3}}).
		Build()
	arm := machotest.New(true, false, machotest.CPUArm64).
		AddSegment("__TEXT", machotest.Section{Name: "__text", Data: []byte{0xc0, 0x03, 0x5f, 0xd6}}).
		Build()
	path := writeTemp(t, "fat.o", machotest.Fat(x86, arm))

	slices, err := OpenSlices(path)
	require.NoError(t, err)
	require.Len(t, slices, 2)

	sizes := []int{len(x86), len(arm)}
	assert.Equal(t, object.ArchX86_64, slices[0].Arch())
	assert.Equal(t, machotest.FatOffset(sizes, 0), slices[0].Offset)
	assert.Equal(t, object.ArchARM64, slices[1].Arch())
	assert.Equal(t, machotest.FatOffset(sizes, 1), slices[1].Offset)
	assert.Equal(t, "fat.o (arm64)", filepath.Base(slices[1].Name(true)))

	arm64, err := FilterArch(slices, "arm64")
	require.NoError(t, err)
	require.Len(t, arm64, 1)
	assert.Equal(t, slices[1].Offset, arm64[0].Offset)
}

func TestOpenSlicesErrors(t *testing.T) {
	_, err := OpenSlices(filepath.Join(t.TempDir(), "missing.o"))
	assert.Error(t, err)

	_, err = OpenSlices(writeTemp(t, "junk", []byte("not a mach-o file")))
	assert.ErrorIs(t, err, macho.ErrUnrecognizedFormat)

	img := fixture().Build()
	_, err = OpenSlices(writeTemp(t, "short.o", img[:40]))
	assert.ErrorIs(t, err, macho.ErrParseFailed)
}

func TestFilterArch(t *testing.T) {
	slices := []Slice{fixtureSlice(t)}

	got, err := FilterArch(slices, "")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = FilterArch(slices, "x86_64")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = FilterArch(slices, "arm64")
	assert.ErrorContains(t, err, "no arm64 slice")

	_, err = FilterArch(slices, "sparc")
	assert.ErrorContains(t, err, `unknown architecture "sparc"`)
}
