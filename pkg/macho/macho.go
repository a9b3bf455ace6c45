// Mach-O header data structures
// Originally at:
// http://developer.apple.com/mac/library/documentation/DeveloperTools/Conceptual/MachORuntime/Reference/reference.html (since deleted by Apple)
// Archived copy at:
// https://web.archive.org/web/20090819232456/http://developer.apple.com/documentation/DeveloperTools/Conceptual/MachORuntime/index.html

// Package macho is a read-only Mach-O object reader. A File decodes the
// header and load commands of an in-memory image once and then answers
// handle-based queries about its sections, symbols, relocations,
// dynamic-library dependencies and data-in-code entries.
package macho

import (
	"bytes"
	"strconv"
)

// A FileHeader represents a Mach-O file header.
type FileHeader struct {
	Magic        uint32
	CPU          CPU
	SubCPU       uint32
	Type         Type
	NCommands    uint32
	SizeCommands uint32
	Flags        HeaderFlag
}

const (
	fileHeaderSize32 = 7 * 4
	fileHeaderSize64 = 8 * 4
)

const (
	Magic32  uint32 = 0xfeedface
	Magic64  uint32 = 0xfeedfacf
	MagicFat uint32 = 0xcafebabe
)

// A LoadCmdHeader is the generic prefix of every load command.
type LoadCmdHeader struct {
	Cmd LoadCmd
	Len uint32
}

const loadCmdHeaderSize = 8

type (
	// A Segment32 is a 32-bit Mach-O segment load command.
	Segment32 struct {
		Cmd     LoadCmd
		Len     uint32
		Name    [16]byte
		Addr    uint32
		Memsz   uint32
		Offset  uint32
		Filesz  uint32
		Maxprot uint32
		Prot    uint32
		Nsect   uint32
		Flag    uint32
	}

	// A Segment64 is a 64-bit Mach-O segment load command.
	Segment64 struct {
		Cmd     LoadCmd
		Len     uint32
		Name    [16]byte
		Addr    uint64
		Memsz   uint64
		Offset  uint64
		Filesz  uint64
		Maxprot uint32
		Prot    uint32
		Nsect   uint32
		Flag    uint32
	}

	// A SymtabCmd is a Mach-O symbol table command.
	SymtabCmd struct {
		Cmd     LoadCmd
		Len     uint32
		Symoff  uint32
		Nsyms   uint32
		Stroff  uint32
		Strsize uint32
	}

	// A DysymtabCmd is a Mach-O dynamic symbol table command.
	DysymtabCmd struct {
		Cmd            LoadCmd
		Len            uint32
		Ilocalsym      uint32
		Nlocalsym      uint32
		Iextdefsym     uint32
		Nextdefsym     uint32
		Iundefsym      uint32
		Nundefsym      uint32
		Tocoffset      uint32
		Ntoc           uint32
		Modtaboff      uint32
		Nmodtab        uint32
		Extrefsymoff   uint32
		Nextrefsyms    uint32
		Indirectsymoff uint32
		Nindirectsyms  uint32
		Extreloff      uint32
		Nextrel        uint32
		Locreloff      uint32
		Nlocrel        uint32
	}

	// A DylibCmd is a Mach-O load dynamic library command. Name is the
	// offset of the path string from the start of the command.
	DylibCmd struct {
		Cmd            LoadCmd
		Len            uint32
		Name           uint32
		Time           uint32
		CurrentVersion Version
		CompatVersion  Version
	}

	// A LinkEditDataCmd locates a blob in the __LINKEDIT segment, such as
	// the data-in-code table.
	LinkEditDataCmd struct {
		Cmd      LoadCmd
		Len      uint32
		Dataoff  uint32
		Datasize uint32
	}
)

const (
	segmentSize32  = 56
	segmentSize64  = 72
	sectionSize32  = 68
	sectionSize64  = 80
	nlistSize32    = 12
	nlistSize64    = 16
	relocationSize = 8
	diceSize       = 8
	symtabSize     = 24
	dysymtabSize   = 80
	dylibSize      = 24
	linkEditSize   = 16
)

// Version is a packed xxxx.yy.zz version number.
type Version uint32

func (v Version) String() string {
	return strconv.Itoa(int(v>>16)) + "." + strconv.Itoa(int((v>>8)&0xff)) + "." + strconv.Itoa(int(v&0xff))
}

type intName struct {
	i uint32
	s string
}

func stringName(i uint32, names []intName, goSyntax bool) string {
	for _, n := range names {
		if n.i == i {
			if goSyntax {
				return "macho." + n.s
			}
			return n.s
		}
	}
	return strconv.FormatUint(uint64(i), 10)
}

// cstring returns the bytes before the first NUL.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i != -1 {
		return string(b[:i])
	}
	return string(b)
}
