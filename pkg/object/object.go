// Package object defines a format-neutral view of a relocatable object or
// linked image: iteration handles for symbols, sections, relocations and
// dynamic-library references, and the File interface a concrete format reader
// implements.
//
// Handles are small value types. They stay valid as long as the File that
// produced them and carry no pointers into it, so they may be copied, stored
// in maps and compared freely. Passing a handle to a File other than the one
// that produced it, or a handle that was never obtained from iteration, is a
// programming error and may panic.
package object

import "fmt"

// UnknownAddressOrSize is returned for addresses and sizes that cannot be
// determined from the file alone.
const UnknownAddressOrSize = ^uint64(0)

// DataRef is the raw payload of every handle kind. Its meaning is owned by
// the format that produced it.
type DataRef struct {
	A uint64
	B uint64
}

// A SymbolRef identifies one symbol table entry.
type SymbolRef DataRef

// A SectionRef identifies one section.
type SectionRef DataRef

// A RelocationRef identifies one relocation record within a section.
type RelocationRef DataRef

// A LibraryRef identifies one dynamic-library dependency.
type LibraryRef DataRef

func (r SymbolRef) String() string     { return fmt.Sprintf("sym(%#x)", r.A) }
func (r SectionRef) String() string    { return fmt.Sprintf("sect(%d)", r.A) }
func (r RelocationRef) String() string { return fmt.Sprintf("reloc(%d:%d)", r.A, r.B) }
func (r LibraryRef) String() string    { return fmt.Sprintf("lib(%d)", r.B) }

// SymbolFlags is a bitmask of symbol properties.
type SymbolFlags uint32

const (
	SymbolFlagNone       SymbolFlags = 0
	SymbolUndefined      SymbolFlags = 1 << 0 // not defined in this file
	SymbolGlobal         SymbolFlags = 1 << 1 // visible to other files
	SymbolWeak           SymbolFlags = 1 << 2 // weak reference or weak definition
	SymbolAbsolute       SymbolFlags = 1 << 3 // value is not section relative
	SymbolCommon         SymbolFlags = 1 << 4 // tentative definition
	SymbolIndirect       SymbolFlags = 1 << 5 // alias of another symbol
	SymbolFormatSpecific SymbolFlags = 1 << 6 // debugging or other format-private entry
)

var symbolFlagNames = []struct {
	f SymbolFlags
	s string
}{
	{SymbolUndefined, "undefined"},
	{SymbolGlobal, "global"},
	{SymbolWeak, "weak"},
	{SymbolAbsolute, "absolute"},
	{SymbolCommon, "common"},
	{SymbolIndirect, "indirect"},
	{SymbolFormatSpecific, "format-specific"},
}

// Has reports whether every bit of want is set in f.
func (f SymbolFlags) Has(want SymbolFlags) bool { return f&want == want }

func (f SymbolFlags) String() string {
	var out string
	for _, n := range symbolFlagNames {
		if f&n.f != 0 {
			if len(out) > 0 {
				out += "|"
			}
			out += n.s
		}
	}
	if len(out) == 0 {
		return "none"
	}
	return out
}

// SymbolType is the coarse kind of a symbol.
type SymbolType uint8

const (
	SymbolTypeUnknown SymbolType = iota
	SymbolTypeDebug
	SymbolTypeFunction
	SymbolTypeOther
)

func (t SymbolType) String() string {
	switch t {
	case SymbolTypeUnknown:
		return "unknown"
	case SymbolTypeDebug:
		return "debug"
	case SymbolTypeFunction:
		return "function"
	case SymbolTypeOther:
		return "other"
	}
	return fmt.Sprintf("SymbolType(%d)", uint8(t))
}

// Arch is a target architecture.
type Arch uint8

const (
	ArchUnknown Arch = iota
	ArchX86
	ArchX86_64
	ArchARM
	ArchARM64
	ArchPPC
	ArchPPC64
)

var archNames = map[Arch]string{
	ArchUnknown: "unknown",
	ArchX86:     "i386",
	ArchX86_64:  "x86_64",
	ArchARM:     "arm",
	ArchARM64:   "arm64",
	ArchPPC:     "ppc",
	ArchPPC64:   "ppc64",
}

func (a Arch) String() string {
	if s, ok := archNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Arch(%d)", uint8(a))
}

// ParseArch returns the Arch named s, as printed by Arch.String.
func ParseArch(s string) (Arch, bool) {
	for a, n := range archNames {
		if n == s {
			return a, true
		}
	}
	return ArchUnknown, false
}
