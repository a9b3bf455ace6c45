package macho

// An Nlist32 is a Mach-O 32-bit symbol table entry.
type Nlist32 struct {
	Name  uint32
	Type  NType
	Sect  uint8
	Desc  NDesc
	Value uint32
}

// An Nlist64 is a Mach-O 64-bit symbol table entry. 32-bit entries are
// widened into this shape.
type Nlist64 struct {
	Name  uint32
	Type  NType
	Sect  uint8
	Desc  NDesc
	Value uint64
}

// NType is the n_type byte of a symbol table entry.
type NType uint8

const (
	N_STAB NType = 0xe0 // if any of these bits set, a symbolic debugging entry
	N_PEXT NType = 0x10 // private external symbol bit
	N_TYPE NType = 0x0e // mask for the type bits
	N_EXT  NType = 0x01 // external symbol bit, set for external symbols
)

// Values of the N_TYPE bits.
const (
	N_UNDF NType = 0x0 // undefined, n_sect == NO_SECT
	N_ABS  NType = 0x2 // absolute, n_sect == NO_SECT
	N_INDR NType = 0xa // indirect
	N_PBUD NType = 0xc // prebound undefined (defined in a dylib)
	N_SECT NType = 0xe // defined in section number n_sect
)

func (t NType) IsDebugSym() bool         { return t&N_STAB != 0 }
func (t NType) IsPrivateExternal() bool  { return t&N_PEXT != 0 }
func (t NType) IsExternal() bool         { return t&N_EXT != 0 }
func (t NType) Kind() NType              { return t & N_TYPE }
func (t NType) IsUndefined() bool        { return t.Kind() == N_UNDF }
func (t NType) IsAbsolute() bool         { return t.Kind() == N_ABS }
func (t NType) IsIndirect() bool         { return t.Kind() == N_INDR }
func (t NType) IsDefinedInSection() bool { return t.Kind() == N_SECT }

func (t NType) String() string {
	if t.IsDebugSym() {
		return "stab"
	}
	var s string
	switch t.Kind() {
	case N_UNDF:
		s = "undf"
	case N_ABS:
		s = "abs"
	case N_INDR:
		s = "indr"
	case N_PBUD:
		s = "pbud"
	case N_SECT:
		s = "sect"
	default:
		s = "?"
	}
	if t.IsPrivateExternal() {
		s += "|pext"
	}
	if t.IsExternal() {
		s += "|ext"
	}
	return s
}

// NDesc is the n_desc word of a symbol table entry.
type NDesc uint16

const (
	N_WEAK_REF NDesc = 0x0040 // symbol is weak referenced
	N_WEAK_DEF NDesc = 0x0080 // coalesced symbol is a weak definition
)

// CommAlign is the log2 alignment of a common symbol.
func (d NDesc) CommAlign() uint8 { return uint8((d >> 8) & 0x0f) }

func (d NDesc) IsWeak() bool { return d&(N_WEAK_REF|N_WEAK_DEF) != 0 }

// noSect is the n_sect value of symbols not in any section.
const noSect = 0
