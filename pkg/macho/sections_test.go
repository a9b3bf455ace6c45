package macho

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blacktop/machobj/internal/machotest"
	"github.com/blacktop/machobj/pkg/object"
)

func TestSectionNames(t *testing.T) {
	full := machotest.Name16("__objc_classlist")
	padded := machotest.Name16("__const")
	b := machotest.New(true, false, machotest.CPUArm64)
	b.AddSegment("__DATA",
		machotest.Section{RawName: &full, Data: []byte{0}},
		machotest.Section{RawName: &padded, Seg: "__DATA_CONST", Data: []byte{0}},
	)
	f := mustOpen(t, b)

	s0, _ := f.SectionByIndex(0)
	name, err := f.SectionName(s0)
	require.NoError(t, err)
	assert.Equal(t, "__objc_classlist", name)
	assert.Len(t, name, 16)
	assert.Equal(t, full, f.SectionRawName(s0))
	assert.Equal(t, "__DATA", f.SectionFinalSegmentName(s0))

	s1, _ := f.SectionByIndex(1)
	name, _ = f.SectionName(s1)
	assert.Equal(t, "__const", name)
	assert.Equal(t, padded, f.SectionRawName(s1))
	assert.Equal(t, "__DATA_CONST", f.SectionFinalSegmentName(s1))

	_, ok := f.SectionByIndex(2)
	assert.False(t, ok)
	_, ok = f.SectionByIndex(-1)
	assert.False(t, ok)
}

func TestSectionClassifiers(t *testing.T) {
	b := machotest.New(false, true, machotest.CPUPpc)
	b.AddSegment("__TEXT",
		machotest.Section{Name: "__text", Addr: 0x100, Align: 2, Data: []byte{0x4e, 0x80, 0x00, 0x20},
			Flags: uint32(S_REGULAR | S_ATTR_PURE_INSTRUCTIONS | S_ATTR_SOME_INSTRUCTIONS)},
		machotest.Section{Name: "__cstring", Addr: 0x104, Data: []byte("a\x00"), Flags: uint32(S_CSTRING_LITERALS)},
	)
	b.AddSegment("__DATA",
		machotest.Section{Name: "__bss", Addr: 0x200, Size: 0x40, Align: 4, Flags: uint32(S_ZEROFILL)},
		machotest.Section{Name: "__huge", Addr: 0x240, Size: 0x10, Flags: uint32(S_GB_ZEROFILL)},
	)
	f := mustOpen(t, b)

	type class struct{ text, data, bss bool }
	want := []class{
		{text: true},
		{data: true},
		{bss: true},
		{bss: true},
	}
	i := 0
	for s := range object.Sections(f) {
		text, _ := f.IsSectionText(s)
		data, _ := f.IsSectionData(s)
		bss, _ := f.IsSectionBSS(s)
		zero, _ := f.IsSectionZeroInit(s)
		assert.Equal(t, want[i], class{text, data, bss}, "section %d", i)
		assert.Equal(t, bss, zero)

		req, _ := f.IsSectionRequiredForExecution(s)
		virt, _ := f.IsSectionVirtual(s)
		ro, _ := f.IsSectionReadOnlyData(s)
		assert.True(t, req)
		assert.False(t, virt)
		assert.False(t, ro)
		i++
	}
	assert.Equal(t, 4, i)

	text := f.SectionBegin()
	align, _ := f.SectionAlignment(text)
	assert.Equal(t, uint64(4), align)
	data, _ := f.SectionContents(text)
	assert.Equal(t, []byte{0x4e, 0x80, 0x00, 0x20}, data)
	addr, _ := f.SectionAddress(text)
	assert.Equal(t, uint64(0x100), addr)

	bss, _ := f.SectionByIndex(2)
	align, _ = f.SectionAlignment(bss)
	assert.Equal(t, uint64(16), align)
	size, _ := f.SectionSize(bss)
	assert.Equal(t, uint64(0x40), size)
	assert.Equal(t, "Zerofill", f.SectionHeader(bss).Flags.String())
}

func TestSectionContentsClamped(t *testing.T) {
	b := machotest.New(true, false, machotest.CPUAmd64)
	b.AddSegment("__TEXT", machotest.Section{Name: "__text", Size: 1 << 16, Data: []byte{0xde, 0xad, 0xbe, 0xef}})
	f := mustOpen(t, b)

	data, err := f.SectionContents(f.SectionBegin())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xde, 0xad, 0xbe, 0xef}))
	assert.Less(t, len(data), 1<<16)
	assert.Equal(t, len(f.Data())-int(f.SectionFileOffset(f.SectionBegin())), len(data))
}

func TestSectionContainsSymbol(t *testing.T) {
	b := machotest.New(true, false, machotest.CPUAmd64)
	b.AddSegment("__TEXT",
		machotest.Section{Name: "__text", Addr: 0x1000, Data: make([]byte, 0x20)},
		machotest.Section{Name: "__const", Addr: 0x1020, Data: make([]byte, 0x10)},
	)
	b.AddSymtab(
		machotest.Symbol{Name: "_first", Type: uint8(N_SECT | N_EXT), Sect: 1, Value: 0x1000},
		machotest.Symbol{Name: "_last", Type: uint8(N_SECT), Sect: 1, Value: 0x101f},
		machotest.Symbol{Name: "_table", Type: uint8(N_SECT), Sect: 2, Value: 0x1020},
		machotest.Symbol{Name: "_printf", Type: uint8(N_UNDF | N_EXT)},
		machotest.Symbol{Name: "_abs", Type: uint8(N_ABS), Value: 0x1004},
	)
	f := mustOpen(t, b)

	text, _ := f.SectionByIndex(0)
	want := map[string]bool{
		"_first":  true,
		"_last":   true,
		"_table":  false,
		"_printf": false,
		"_abs":    true,
	}
	for sym := range object.Symbols(f) {
		name, err := f.SymbolName(sym)
		require.NoError(t, err)
		in, err := f.SectionContainsSymbol(text, sym)
		require.NoError(t, err)
		assert.Equal(t, want[name], in, name)
	}
}
