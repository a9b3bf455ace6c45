package macho

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blacktop/machobj/internal/machotest"
	"github.com/blacktop/machobj/pkg/object"
)

type relocRow struct {
	Offset uint64
	Type   string
	Value  string
	Hidden bool
}

// relocRows renders every relocation of section s. A record whose value
// cannot be rendered gets the value "!".
func relocRows(t *testing.T, f *File, s object.SectionRef) []relocRow {
	t.Helper()
	var rows []relocRow
	for r := range object.Relocations(f, s) {
		var row relocRow
		var err error
		row.Offset, err = f.RelocationOffset(r)
		require.NoError(t, err)
		row.Type, err = f.RelocationTypeName(r)
		require.NoError(t, err)
		row.Hidden, err = f.RelocationHidden(r)
		require.NoError(t, err)
		row.Value, err = f.RelocationValueString(r)
		if err != nil {
			assert.ErrorIs(t, err, ErrParseFailed)
			row.Value = "!"
		}
		rows = append(rows, row)
	}
	return rows
}

func TestRelocationsX86_64(t *testing.T) {
	b := machotest.New(true, false, machotest.CPUAmd64)
	b.AddSegment("__TEXT", machotest.Section{Name: "__text", Addr: 0x1000, Data: make([]byte, 0x20),
		Relocs: []machotest.Reloc{
			b.Plain(0x0, 1, false, 3, true, uint8(X86_64_RELOC_SUBTRACTOR)),
			b.Plain(0x0, 0, false, 3, true, uint8(X86_64_RELOC_UNSIGNED)),
			b.Plain(0x8, 2, true, 2, true, uint8(X86_64_RELOC_GOT_LOAD)),
			b.Plain(0xc, 2, false, 2, true, uint8(X86_64_RELOC_GOT)),
			b.Plain(0x10, 2, true, 2, true, uint8(X86_64_RELOC_TLV)),
			b.Plain(0x14, 2, true, 2, true, uint8(X86_64_RELOC_SIGNED_4)),
			b.Plain(0x18, 1, true, 2, false, uint8(X86_64_RELOC_SIGNED)),
			b.Plain(0x1c, 0, false, 2, true, uint8(X86_64_RELOC_UNSIGNED)),
			b.Plain(0x1c, 0, false, 3, true, uint8(X86_64_RELOC_SUBTRACTOR)),
		}})
	b.AddSymtab(
		machotest.Symbol{Name: "_a", Type: uint8(N_SECT | N_EXT), Sect: 1, Value: 0x1000},
		machotest.Symbol{Name: "_b", Type: uint8(N_SECT | N_EXT), Sect: 1, Value: 0x1010},
		machotest.Symbol{Name: "_tls", Type: uint8(N_UNDF | N_EXT)},
	)
	f := mustOpen(t, b)

	assert.Equal(t, []relocRow{
		{0x0, "X86_64_RELOC_SUBTRACTOR", "_a-_b", false},
		{0x0, "X86_64_RELOC_UNSIGNED", "_a", true},
		{0x8, "X86_64_RELOC_GOT_LOAD", "_tls@GOTPCREL", false},
		{0xc, "X86_64_RELOC_GOT", "_tls@GOT", false},
		{0x10, "X86_64_RELOC_TLV", "_tls@TLVP", false},
		{0x14, "X86_64_RELOC_SIGNED_4", "_tls-4", false},
		{0x18, "X86_64_RELOC_SIGNED", "__text", false},
		{0x1c, "X86_64_RELOC_UNSIGNED", "_a", false},
		// a SUBTRACTOR without its UNSIGNED partner
		{0x1c, "X86_64_RELOC_SUBTRACTOR", "!", false},
	}, relocRows(t, f, f.SectionBegin()))

	r := f.SectionRelocationBegin(f.SectionBegin())
	r = f.NextRelocation(f.NextRelocation(r))
	addr, err := f.RelocationAddress(r)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1008), addr)
	sym, err := f.RelocationSymbol(r)
	require.NoError(t, err)
	name, _ := f.SymbolName(sym)
	assert.Equal(t, "_tls", name)

	// non-extern records refer to a section, not a symbol
	sym, err = f.RelocationSymbol(object.RelocationRef{A: 0, B: 6})
	require.NoError(t, err)
	assert.Equal(t, f.SymbolEnd(), sym)
}

func TestX86_64NeverScattered(t *testing.T) {
	b := machotest.New(true, false, machotest.CPUAmd64)
	b.AddSegment("__TEXT", machotest.Section{Name: "__text", Data: make([]byte, 8),
		Relocs: []machotest.Reloc{machotest.Scattered(0x4, 0, 2, false, 0x1234)}})
	f := mustOpen(t, b)

	rel, err := f.Relocation(f.SectionRelocationBegin(f.SectionBegin()))
	require.NoError(t, err)
	assert.False(t, rel.Scattered)
	assert.Equal(t, uint32(0x80000004|2<<28), rel.Addr)
}

func genericFixture(t *testing.T, bigEndian bool) *File {
	t.Helper()
	cpu := machotest.CPU386
	if bigEndian {
		cpu = machotest.CPUPpc
	}
	b := machotest.New(false, bigEndian, cpu)
	b.AddSegment("__TEXT",
		machotest.Section{Name: "__text", Addr: 0x0, Data: make([]byte, 0x10),
			Relocs: []machotest.Reloc{
				machotest.Scattered(0x8, uint8(GENERIC_RELOC_SECTDIFF), 2, false, 0x10),
				machotest.Scattered(0x0, uint8(GENERIC_RELOC_PAIR), 2, false, 0x4),
				machotest.Scattered(0xc, uint8(GENERIC_RELOC_LOCAL_SECTDIFF), 2, false, 0x0),
				machotest.Scattered(0x0, uint8(GENERIC_RELOC_PAIR), 2, false, 0x7),
				machotest.Scattered(0x4, uint8(GENERIC_RELOC_VANILLA), 2, false, 0x14),
				b.Plain(0x0, 0, true, 2, true, uint8(GENERIC_RELOC_TLV)),
				machotest.Scattered(0xc, uint8(GENERIC_RELOC_SECTDIFF), 2, false, 0x10),
				machotest.Scattered(0x0, uint8(GENERIC_RELOC_VANILLA), 2, false, 0x4),
				machotest.Scattered(0xc, uint8(GENERIC_RELOC_SECTDIFF), 2, false, 0x10),
			}},
	)
	b.AddSegment("__DATA", machotest.Section{Name: "__data", Addr: 0x10, Data: make([]byte, 8)})
	b.AddSymtab(
		machotest.Symbol{Name: "_a", Type: uint8(N_SECT | N_EXT), Sect: 2, Value: 0x10},
		machotest.Symbol{Name: "_b", Type: uint8(N_SECT), Sect: 1, Value: 0x4},
	)
	return mustOpen(t, b)
}

func TestRelocationsGeneric(t *testing.T) {
	f := genericFixture(t, false)
	assert.Equal(t, []relocRow{
		{0x8, "GENERIC_RELOC_SECTDIFF", "_a-_b", false},
		{0x0, "GENERIC_RELOC_PAIR", "", true},
		{0xc, "GENERIC_RELOC_LOCAL_SECTDIFF", "__text-0x7", false},
		{0x0, "GENERIC_RELOC_PAIR", "", true},
		{0x4, "GENERIC_RELOC_VANILLA", "0x14", false},
		{0x0, "GENERIC_RELOC_TLV", "_a@TLVP", false},
		// followed by the wrong type
		{0xc, "GENERIC_RELOC_SECTDIFF", "!", false},
		{0x0, "GENERIC_RELOC_VANILLA", "_b", false},
		// last record of the section
		{0xc, "GENERIC_RELOC_SECTDIFF", "!", false},
	}, relocRows(t, f, f.SectionBegin()))

	assert.True(t, f.targets.Contains(0x10))
	assert.True(t, f.targets.Contains(0x7))

	first := f.SectionRelocationBegin(f.SectionBegin())
	sym, err := f.RelocationSymbol(first)
	require.NoError(t, err)
	assert.Equal(t, f.SymbolEnd(), sym, "scattered records have no symbol")
	addr, _ := f.RelocationAddress(first)
	assert.Equal(t, uint64(0x8), addr)

	_, err = f.Relocation(object.RelocationRef{A: 0, B: 99})
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestRelocationsARM(t *testing.T) {
	b := machotest.New(false, false, machotest.CPUArm)
	b.AddSegment("__TEXT", machotest.Section{Name: "__text", Addr: 0x0, Data: make([]byte, 0x20),
		Relocs: []machotest.Reloc{
			b.Plain(0x0, 0, false, 1, true, uint8(ARM_RELOC_HALF)),
			b.Plain(0x1234, 0, false, 1, false, uint8(ARM_RELOC_PAIR)),
			machotest.Scattered(0x4, uint8(ARM_RELOC_HALF_SECTDIFF), 3, false, 0x20),
			machotest.Scattered(0x0, uint8(ARM_RELOC_PAIR), 3, false, 0x0),
			b.Plain(0x8, 0, false, 2, true, uint8(ARM_RELOC_PB_LA_PTR)),
			b.Plain(0xc, 0, true, 2, true, uint8(ARM_RELOC_BR24)),
			b.Plain(0x10, 0, false, 1, true, uint8(ARM_RELOC_HALF)),
		}})
	b.AddSegment("__DATA", machotest.Section{Name: "__data", Addr: 0x20, Data: make([]byte, 4)})
	b.AddSymtab(machotest.Symbol{Name: "_foo", Type: uint8(N_SECT | N_EXT), Sect: 2, Value: 0x20})
	f := mustOpen(t, b)

	assert.Equal(t, []relocRow{
		{0x0, "ARM_RELOC_HALF", ":lower16:(_foo)", false},
		{0x1234, "ARM_RELOC_PAIR", "", true},
		{0x4, "ARM_RELOC_HALF_SECTDIFF", ":upper16:(_foo-__text)", false},
		{0x0, "ARM_RELOC_PAIR", "", true},
		{0x8, "ARM_RELOC_PB_LA_PTR", "_foo", false},
		{0xc, "ARM_RELOC_BR24", "_foo", false},
		{0x10, "ARM_RELOC_HALF", "!", false},
	}, relocRows(t, f, f.SectionBegin()))
}

func TestPlainRelocationByteOrder(t *testing.T) {
	want := Reloc{Addr: 0x10, Value: 1, Type: uint8(GENERIC_RELOC_TLV), Len: 2, Pcrel: true, Extern: true}

	for _, be := range []bool{false, true} {
		f := genericFixture(t, be)
		r := object.RelocationRef{A: 0, B: 5}

		// re-encode the sixth record in place
		b := machotest.New(false, be, 0)
		rec := b.Plain(0x10, 1, true, 2, true, uint8(GENERIC_RELOC_TLV))
		img := append([]byte(nil), f.Data()...)
		f.ByteOrder().PutUint32(img[f.relocOffset(r):], rec.W0)
		f.ByteOrder().PutUint32(img[f.relocOffset(r)+4:], rec.W1)
		g, err := NewFile(img)
		require.NoError(t, err)

		got, err := g.Relocation(r)
		require.NoError(t, err)
		assert.Equal(t, want, got, "big endian %v", be)

		sym, err := g.RelocationSymbol(r)
		require.NoError(t, err)
		name, _ := g.SymbolName(sym)
		assert.Equal(t, "_b", name)
	}
}

func TestRelocTypeName(t *testing.T) {
	tests := []struct {
		arch object.Arch
		typ  uint8
		want string
	}{
		{object.ArchX86, 1, "GENERIC_RELOC_PAIR"},
		{object.ArchX86, 6, "Unknown"},
		{object.ArchX86_64, 9, "X86_64_RELOC_TLV"},
		{object.ArchX86_64, 10, "Unknown"},
		{object.ArchARM, 9, "ARM_RELOC_HALF_SECTDIFF"},
		{object.ArchARM64, 10, "ARM64_RELOC_ADDEND"},
		{object.ArchPPC, 15, "PPC_RELOC_LOCAL_SECTDIFF"},
		{object.ArchPPC64, 0, "Unknown"},
		{object.ArchUnknown, 0, "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relocTypeName(tt.arch, tt.typ), "%s %d", tt.arch, tt.typ)
	}
}
