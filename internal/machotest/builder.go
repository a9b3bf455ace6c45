// Package machotest assembles small Mach-O images in memory for tests.
//
// A Builder lays an image out as header, load commands, then a data region
// holding section contents, relocations, the symbol and string tables, the
// indirect symbol table and the data-in-code table, in that order.
package machotest

// Load command tags used by the builder.
const (
	LC_SEGMENT           uint32 = 0x1
	LC_SYMTAB            uint32 = 0x2
	LC_DYSYMTAB          uint32 = 0xb
	LC_LOAD_DYLIB        uint32 = 0xc
	LC_ID_DYLIB          uint32 = 0xd
	LC_SEGMENT_64        uint32 = 0x19
	LC_UUID              uint32 = 0x1b
	LC_LOAD_WEAK_DYLIB   uint32 = 0x80000018
	LC_REEXPORT_DYLIB    uint32 = 0x8000001f
	LC_LAZY_LOAD_DYLIB   uint32 = 0x20
	LC_LOAD_UPWARD_DYLIB uint32 = 0x80000023
	LC_DATA_IN_CODE      uint32 = 0x29
)

// CPU types.
const (
	CPU386   uint32 = 7
	CPUAmd64 uint32 = 7 | 0x01000000
	CPUArm   uint32 = 12
	CPUArm64 uint32 = 12 | 0x01000000
	CPUPpc   uint32 = 18
	CPUPpc64 uint32 = 18 | 0x01000000
)

// Builder describes an image. The zero value is a little-endian 32-bit
// MH_OBJECT for i386.
type Builder struct {
	Is64      bool
	BigEndian bool
	CPU       uint32
	FileType  uint32
	Flags     uint32

	// SizeCommandsDelta is added to the computed sizeofcmds.
	SizeCommandsDelta int32
	// NCommands, when non-zero, replaces the computed command count.
	NCommands uint32

	cmds []command
}

// New returns a Builder for an image with the given layout and cpu.
func New(is64, bigEndian bool, cpu uint32) *Builder {
	return &Builder{Is64: is64, BigEndian: bigEndian, CPU: cpu, FileType: 1}
}

// A Section is one section of a segment. Data is copied into the data
// region; a section without Data gets file offset 0.
type Section struct {
	Name    string
	RawName *[16]byte // replaces Name when set
	Seg     string
	Addr    uint64
	Size    uint64 // defaults to len(Data)
	Align   uint32
	Flags   uint32
	Data    []byte
	Relocs  []Reloc
	// Nreloc, when non-zero, replaces len(Relocs).
	Nreloc uint32
}

// A Reloc is a raw relocation record.
type Reloc struct {
	W0, W1 uint32
}

// A Symbol is one symbol table entry. Name is interned in the string table
// unless RawStrx is set, in which case Strx is written as is. IndirectName,
// when set, is interned and its offset written to the value field.
type Symbol struct {
	Name         string
	Type         uint8
	Sect         uint8
	Desc         uint16
	Value        uint64
	IndirectName string
	Strx         uint32
	RawStrx      bool
}

// A Dice is one data-in-code entry.
type Dice struct {
	Offset uint32
	Length uint16
	Kind   uint16
}

type commandKind int

const (
	kindSegment commandKind = iota
	kindSymtab
	kindDysymtab
	kindDylib
	kindDice
	kindRaw
)

type command struct {
	kind commandKind
	cmd  uint32

	segName  string
	seg32    bool
	sections []Section

	symbols []Symbol

	indirect []uint32

	path string

	dice          []Dice
	diceSizeDelta int32

	payload []byte
	lenOver uint32
}

// AddSegment appends a segment command in the image's native width.
func (b *Builder) AddSegment(name string, sections ...Section) *Builder {
	b.cmds = append(b.cmds, command{kind: kindSegment, segName: name, seg32: !b.Is64, sections: sections})
	return b
}

// AddSegment32 appends an LC_SEGMENT regardless of the image width.
func (b *Builder) AddSegment32(name string, sections ...Section) *Builder {
	b.cmds = append(b.cmds, command{kind: kindSegment, segName: name, seg32: true, sections: sections})
	return b
}

// AddSymtab appends an LC_SYMTAB command describing syms.
func (b *Builder) AddSymtab(syms ...Symbol) *Builder {
	b.cmds = append(b.cmds, command{kind: kindSymtab, cmd: LC_SYMTAB, symbols: syms})
	return b
}

// AddDysymtab appends an LC_DYSYMTAB command with the given indirect table.
func (b *Builder) AddDysymtab(indirect ...uint32) *Builder {
	b.cmds = append(b.cmds, command{kind: kindDysymtab, cmd: LC_DYSYMTAB, indirect: indirect})
	return b
}

// AddDylib appends a dylib command of type cmd naming path.
func (b *Builder) AddDylib(cmd uint32, path string) *Builder {
	b.cmds = append(b.cmds, command{kind: kindDylib, cmd: cmd, path: path})
	return b
}

// AddDataInCode appends an LC_DATA_IN_CODE command.
func (b *Builder) AddDataInCode(entries ...Dice) *Builder {
	b.cmds = append(b.cmds, command{kind: kindDice, cmd: LC_DATA_IN_CODE, dice: entries})
	return b
}

// AddDataInCodeSized is AddDataInCode with sizeDelta added to datasize.
func (b *Builder) AddDataInCodeSized(sizeDelta int32, entries ...Dice) *Builder {
	b.cmds = append(b.cmds, command{kind: kindDice, cmd: LC_DATA_IN_CODE, dice: entries, diceSizeDelta: sizeDelta})
	return b
}

// AddRaw appends a command with an arbitrary tag and body. cmdsize is
// 8+len(payload) unless lenOverride is non-zero.
func (b *Builder) AddRaw(cmd uint32, payload []byte, lenOverride uint32) *Builder {
	b.cmds = append(b.cmds, command{kind: kindRaw, cmd: cmd, payload: payload, lenOver: lenOverride})
	return b
}

// Plain encodes a non-scattered relocation using the bit layout selected by
// the builder's byte order.
func (b *Builder) Plain(addr, symnum uint32, pcrel bool, length uint8, extern bool, typ uint8) Reloc {
	var w1 uint32
	if b.BigEndian {
		w1 = symnum<<8 | uint32(typ&0xf)
		if pcrel {
			w1 |= 1 << 7
		}
		w1 |= uint32(length&3) << 5
		if extern {
			w1 |= 1 << 4
		}
	} else {
		w1 = symnum&0xffffff | uint32(typ&0xf)<<28
		if pcrel {
			w1 |= 1 << 24
		}
		w1 |= uint32(length&3) << 25
		if extern {
			w1 |= 1 << 27
		}
	}
	return Reloc{W0: addr, W1: w1}
}

// Scattered encodes a scattered relocation.
func Scattered(addr uint32, typ, length uint8, pcrel bool, value uint32) Reloc {
	w0 := uint32(1)<<31 | addr&0xffffff | uint32(typ&0xf)<<24 | uint32(length&3)<<28
	if pcrel {
		w0 |= 1 << 30
	}
	return Reloc{W0: w0, W1: value}
}

// Name16 returns s as a raw 16 byte name field.
func Name16(s string) [16]byte {
	var n [16]byte
	copy(n[:], s)
	return n
}

func (b *Builder) headerSize() uint32 {
	if b.Is64 {
		return 32
	}
	return 28
}

func align(n, a uint32) uint32 { return (n + a - 1) &^ (a - 1) }

func (b *Builder) cmdSize(c command) uint32 {
	switch c.kind {
	case kindSegment:
		if c.seg32 {
			return 56 + uint32(len(c.sections))*68
		}
		return 72 + uint32(len(c.sections))*80
	case kindSymtab:
		return 24
	case kindDysymtab:
		return 80
	case kindDylib:
		return align(24+uint32(len(c.path))+1, 8)
	case kindDice:
		return 16
	}
	if c.lenOver != 0 {
		return c.lenOver
	}
	return 8 + uint32(len(c.payload))
}
