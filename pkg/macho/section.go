package macho

import "strings"

// A Section32 is a 32-bit Mach-O section header.
type Section32 struct {
	Name     [16]byte
	Seg      [16]byte
	Addr     uint32
	Size     uint32
	Offset   uint32
	Align    uint32
	Reloff   uint32
	Nreloc   uint32
	Flags    SectionFlag
	Reserve1 uint32
	Reserve2 uint32
}

// A Section64 is a 64-bit Mach-O section header.
type Section64 struct {
	Name     [16]byte
	Seg      [16]byte
	Addr     uint64
	Size     uint64
	Offset   uint32
	Align    uint32
	Reloff   uint32
	Nreloc   uint32
	Flags    SectionFlag
	Reserve1 uint32
	Reserve2 uint32
	Reserve3 uint32
}

// A Section is a section header widened to 64 bits. Name fields keep their
// on-disk bytes so they can be reproduced exactly.
type Section struct {
	RawName  [16]byte
	RawSeg   [16]byte
	Addr     uint64
	Size     uint64
	Offset   uint32
	Align    uint32
	Reloff   uint32
	Nreloc   uint32
	Flags    SectionFlag
	Reserve1 uint32
	Reserve2 uint32
	// HeaderOffset is where the section record starts in the file.
	HeaderOffset uint64
}

func (s *Section) Name() string    { return fixedName(s.RawName) }
func (s *Section) SegName() string { return fixedName(s.RawSeg) }

func (s Section32) widen(off uint64) Section {
	return Section{
		RawName: s.Name, RawSeg: s.Seg,
		Addr: uint64(s.Addr), Size: uint64(s.Size),
		Offset: s.Offset, Align: s.Align,
		Reloff: s.Reloff, Nreloc: s.Nreloc,
		Flags: s.Flags, Reserve1: s.Reserve1, Reserve2: s.Reserve2,
		HeaderOffset: off,
	}
}

func (s Section64) widen(off uint64) Section {
	return Section{
		RawName: s.Name, RawSeg: s.Seg,
		Addr: s.Addr, Size: s.Size,
		Offset: s.Offset, Align: s.Align,
		Reloff: s.Reloff, Nreloc: s.Nreloc,
		Flags: s.Flags, Reserve1: s.Reserve1, Reserve2: s.Reserve2,
		HeaderOffset: off,
	}
}

// fixedName decodes a 16 byte name field. A name that fills the field has no
// terminating NUL.
func fixedName(b [16]byte) string {
	if b[15] != 0 {
		return string(b[:])
	}
	return cstring(b[:])
}

type SectionFlag uint32

const (
	SECTION_TYPE       SectionFlag = 0x000000ff
	SECTION_ATTRIBUTES SectionFlag = 0xffffff00

	S_REGULAR                  SectionFlag = 0x0
	S_ZEROFILL                 SectionFlag = 0x1 // zero fill on demand section
	S_CSTRING_LITERALS         SectionFlag = 0x2
	S_4BYTE_LITERALS           SectionFlag = 0x3
	S_8BYTE_LITERALS           SectionFlag = 0x4
	S_LITERAL_POINTERS         SectionFlag = 0x5
	S_NON_LAZY_SYMBOL_POINTERS SectionFlag = 0x6
	S_LAZY_SYMBOL_POINTERS     SectionFlag = 0x7
	S_SYMBOL_STUBS             SectionFlag = 0x8
	S_MOD_INIT_FUNC_POINTERS   SectionFlag = 0x9
	S_MOD_TERM_FUNC_POINTERS   SectionFlag = 0xa
	S_COALESCED                SectionFlag = 0xb
	S_GB_ZEROFILL              SectionFlag = 0xc // zero fill on demand section (that can be larger than 4 gigabytes)
	S_INTERPOSING              SectionFlag = 0xd
	S_16BYTE_LITERALS          SectionFlag = 0xe
	S_DTRACE_DOF               SectionFlag = 0xf
	S_THREAD_LOCAL_REGULAR     SectionFlag = 0x11
	S_THREAD_LOCAL_ZEROFILL    SectionFlag = 0x12
	S_THREAD_LOCAL_VARIABLES   SectionFlag = 0x13

	S_ATTR_PURE_INSTRUCTIONS SectionFlag = 0x80000000 // section contains only true machine instructions
	S_ATTR_NO_DEAD_STRIP     SectionFlag = 0x10000000
	S_ATTR_DEBUG             SectionFlag = 0x02000000
	S_ATTR_SOME_INSTRUCTIONS SectionFlag = 0x00000400
	S_ATTR_EXT_RELOC         SectionFlag = 0x00000200
	S_ATTR_LOC_RELOC         SectionFlag = 0x00000100
)

var sectionTypeStrings = []intName{
	{uint32(S_REGULAR), "Regular"},
	{uint32(S_ZEROFILL), "Zerofill"},
	{uint32(S_CSTRING_LITERALS), "CstringLiterals"},
	{uint32(S_4BYTE_LITERALS), "4ByteLiterals"},
	{uint32(S_8BYTE_LITERALS), "8ByteLiterals"},
	{uint32(S_LITERAL_POINTERS), "LiteralPointers"},
	{uint32(S_NON_LAZY_SYMBOL_POINTERS), "NonLazySymbolPointers"},
	{uint32(S_LAZY_SYMBOL_POINTERS), "LazySymbolPointers"},
	{uint32(S_SYMBOL_STUBS), "SymbolStubs"},
	{uint32(S_MOD_INIT_FUNC_POINTERS), "ModInitFuncPointers"},
	{uint32(S_MOD_TERM_FUNC_POINTERS), "ModTermFuncPointers"},
	{uint32(S_COALESCED), "Coalesced"},
	{uint32(S_GB_ZEROFILL), "GbZerofill"},
	{uint32(S_INTERPOSING), "Interposing"},
	{uint32(S_16BYTE_LITERALS), "16ByteLiterals"},
	{uint32(S_DTRACE_DOF), "DtraceDOF"},
	{uint32(S_THREAD_LOCAL_REGULAR), "ThreadLocalRegular"},
	{uint32(S_THREAD_LOCAL_ZEROFILL), "ThreadLocalZerofill"},
	{uint32(S_THREAD_LOCAL_VARIABLES), "ThreadLocalVariables"},
}

var sectionAttrStrings = []intName{
	{uint32(S_ATTR_PURE_INSTRUCTIONS), "PureInstructions"},
	{uint32(S_ATTR_NO_DEAD_STRIP), "NoDeadStrip"},
	{uint32(S_ATTR_DEBUG), "Debug"},
	{uint32(S_ATTR_SOME_INSTRUCTIONS), "SomeInstructions"},
	{uint32(S_ATTR_EXT_RELOC), "ExtReloc"},
	{uint32(S_ATTR_LOC_RELOC), "LocReloc"},
}

func (t SectionFlag) Type() SectionFlag       { return t & SECTION_TYPE }
func (t SectionFlag) Attributes() SectionFlag { return t & SECTION_ATTRIBUTES }

func (t SectionFlag) IsZerofill() bool   { return t.Type() == S_ZEROFILL }
func (t SectionFlag) IsGbZerofill() bool { return t.Type() == S_GB_ZEROFILL }

func (t SectionFlag) IsPureInstructions() bool {
	return t.Attributes()&S_ATTR_PURE_INSTRUCTIONS != 0
}

// AttributesList returns the names of the known attribute bits that are set.
func (t SectionFlag) AttributesList() []string {
	var attrs []string
	for _, n := range sectionAttrStrings {
		if uint32(t)&n.i != 0 {
			attrs = append(attrs, n.s)
		}
	}
	return attrs
}

func (t SectionFlag) String() string {
	s := stringName(uint32(t.Type()), sectionTypeStrings, false)
	if attrs := t.AttributesList(); len(attrs) > 0 {
		s += "(" + strings.Join(attrs, "|") + ")"
	}
	return s
}
