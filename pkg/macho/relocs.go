package macho

import (
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/blacktop/machobj/pkg/object"
)

// relocInfo is the raw 8 byte relocation record.
type relocInfo struct {
	Addr   uint32
	Symnum uint32
}

// A Reloc is a decoded relocation record.
type Reloc struct {
	Addr  uint32
	Value uint32
	// when Scattered == false && Extern == true, Value is the symbol number.
	// when Scattered == false && Extern == false, Value is the section number.
	// when Scattered == true, Value is the value that this reloc refers to.
	Type      uint8
	Len       uint8 // 0=byte, 1=word, 2=long, 3=quad
	Pcrel     bool
	Extern    bool // valid if Scattered == false
	Scattered bool
}

const relocScattered = 1 << 31

// decodeReloc unpacks ri. The plain layout depends on the declared byte order
// of the image, not only on how the words are stored. x86_64 has no scattered
// form.
func (f *File) decodeReloc(ri relocInfo) Reloc {
	var rel Reloc
	if f.CPU != CPUAmd64 && ri.Addr&relocScattered != 0 {
		rel.Addr = ri.Addr & (1<<24 - 1)
		rel.Type = uint8((ri.Addr >> 24) & (1<<4 - 1))
		rel.Len = uint8((ri.Addr >> 28) & (1<<2 - 1))
		rel.Pcrel = ri.Addr&(1<<30) != 0
		rel.Value = ri.Symnum
		rel.Scattered = true
		return rel
	}
	rel.Addr = ri.Addr
	if f.IsLittleEndian() {
		rel.Value = ri.Symnum & (1<<24 - 1)
		rel.Pcrel = ri.Symnum&(1<<24) != 0
		rel.Len = uint8((ri.Symnum >> 25) & (1<<2 - 1))
		rel.Extern = ri.Symnum&(1<<27) != 0
		rel.Type = uint8((ri.Symnum >> 28) & (1<<4 - 1))
	} else {
		rel.Value = ri.Symnum >> 8
		rel.Pcrel = ri.Symnum&(1<<7) != 0
		rel.Len = uint8((ri.Symnum >> 5) & (1<<2 - 1))
		rel.Extern = ri.Symnum&(1<<4) != 0
		rel.Type = uint8(ri.Symnum & (1<<4 - 1))
	}
	return rel
}

// relocOffset is the file offset of record r.
func (f *File) relocOffset(r object.RelocationRef) uint64 {
	return uint64(f.SectionHeader(object.SectionRef{A: r.A}).Reloff) + r.B*relocationSize
}

func (f *File) NextRelocation(r object.RelocationRef) object.RelocationRef {
	return object.RelocationRef{A: r.A, B: r.B + 1}
}

// Relocation decodes the record r.
func (f *File) Relocation(r object.RelocationRef) (Reloc, error) {
	sh := f.SectionHeader(object.SectionRef{A: r.A})
	if r.B >= uint64(sh.Nreloc) {
		return Reloc{}, formatErr(sh.HeaderOffset, "relocation index out of range", r.B)
	}
	var ri relocInfo
	if err := f.c.read(f.relocOffset(r), &ri); err != nil {
		return Reloc{}, err
	}
	return f.decodeReloc(ri), nil
}

// RelocationOffset is the address field of r, relative to its section.
func (f *File) RelocationOffset(r object.RelocationRef) (uint64, error) {
	rel, err := f.Relocation(r)
	if err != nil {
		return 0, err
	}
	return uint64(rel.Addr), nil
}

// RelocationAddress is the section address plus the offset of r.
func (f *File) RelocationAddress(r object.RelocationRef) (uint64, error) {
	off, err := f.RelocationOffset(r)
	if err != nil {
		return 0, err
	}
	return f.SectionHeader(object.SectionRef{A: r.A}).Addr + off, nil
}

func (f *File) RelocationType(r object.RelocationRef) (uint64, error) {
	rel, err := f.Relocation(r)
	if err != nil {
		return 0, err
	}
	return uint64(rel.Type), nil
}

func (f *File) RelocationTypeName(r object.RelocationRef) (string, error) {
	rel, err := f.Relocation(r)
	if err != nil {
		return "", err
	}
	return relocTypeName(f.Arch(), rel.Type), nil
}

// RelocationSymbol returns the symbol an external plain relocation refers
// to, or SymbolEnd.
func (f *File) RelocationSymbol(r object.RelocationRef) (object.SymbolRef, error) {
	rel, err := f.Relocation(r)
	if err != nil {
		return f.SymbolEnd(), err
	}
	if rel.Scattered || !rel.Extern {
		return f.SymbolEnd(), nil
	}
	sym, ok := f.SymbolByIndex(int(rel.Value))
	if !ok {
		return f.SymbolEnd(), formatErr(f.relocOffset(r), "relocation symbol index out of range", rel.Value)
	}
	return sym, nil
}

// RelocationHidden reports whether r is the second record of a pair: PAIR on
// the generic architectures, or an x86_64 UNSIGNED following a SUBTRACTOR.
func (f *File) RelocationHidden(r object.RelocationRef) (bool, error) {
	rel, err := f.Relocation(r)
	if err != nil {
		return false, err
	}
	arch := f.Arch()
	switch {
	case usesGenericRelocs(arch):
		return RelocTypeGeneric(rel.Type) == GENERIC_RELOC_PAIR, nil
	case arch == object.ArchX86_64:
		if RelocTypeX86_64(rel.Type) != X86_64_RELOC_UNSIGNED || r.B == 0 {
			return false, nil
		}
		prev, err := f.Relocation(object.RelocationRef{A: r.A, B: r.B - 1})
		if err != nil {
			return false, err
		}
		return RelocTypeX86_64(prev.Type) == X86_64_RELOC_SUBTRACTOR, nil
	}
	return false, nil
}

// pairOf returns the record following r, which must have type want.
func (f *File) pairOf(r object.RelocationRef, want uint8, what string) (object.RelocationRef, Reloc, error) {
	ref := f.NextRelocation(r)
	if ref == f.SectionRelocationEnd(object.SectionRef{A: r.A}) {
		return ref, Reloc{}, formatErr(f.relocOffset(r), fmt.Sprintf("%s is the last relocation of its section", what), nil)
	}
	next, err := f.Relocation(ref)
	if err != nil {
		return ref, Reloc{}, err
	}
	if next.Type != want {
		return ref, Reloc{}, formatErr(f.relocOffset(ref), fmt.Sprintf("expected %s after %s", relocTypeName(f.Arch(), want), what), next.Type)
	}
	return ref, next, nil
}

var signedAddends = map[RelocTypeX86_64]string{
	X86_64_RELOC_SIGNED_1: "-1",
	X86_64_RELOC_SIGNED_2: "-2",
	X86_64_RELOC_SIGNED_4: "-4",
}

// RelocationValueString renders the target of r the way a disassembler
// listing would, folding in the addend implied by its type and the operand
// carried by a following pair record.
func (f *File) RelocationValueString(r object.RelocationRef) (string, error) {
	rel, err := f.Relocation(r)
	if err != nil {
		return "", err
	}
	arch := f.Arch()
	var sb strings.Builder

	target := func(r object.RelocationRef, rel Reloc) error {
		name, err := f.relocTargetName(r, rel)
		if err != nil {
			return err
		}
		sb.WriteString(name)
		return nil
	}

	switch {
	case arch == object.ArchX86_64:
		switch RelocTypeX86_64(rel.Type) {
		case X86_64_RELOC_GOT_LOAD, X86_64_RELOC_GOT:
			if err := target(r, rel); err != nil {
				return "", err
			}
			sb.WriteString("@GOT")
			if rel.Pcrel {
				sb.WriteString("PCREL")
			}
		case X86_64_RELOC_SUBTRACTOR:
			nref, next, err := f.pairOf(r, uint8(X86_64_RELOC_UNSIGNED), "X86_64_RELOC_SUBTRACTOR")
			if err != nil {
				return "", err
			}
			// the UNSIGNED record holds the minuend
			if err := target(nref, next); err != nil {
				return "", err
			}
			sb.WriteByte('-')
			if err := target(r, rel); err != nil {
				return "", err
			}
		case X86_64_RELOC_TLV:
			if err := target(r, rel); err != nil {
				return "", err
			}
			sb.WriteString("@TLV")
			if rel.Pcrel {
				sb.WriteByte('P')
			}
		case X86_64_RELOC_SIGNED_1, X86_64_RELOC_SIGNED_2, X86_64_RELOC_SIGNED_4:
			if err := target(r, rel); err != nil {
				return "", err
			}
			sb.WriteString(signedAddends[RelocTypeX86_64(rel.Type)])
		default:
			if err := target(r, rel); err != nil {
				return "", err
			}
		}

	case usesGenericRelocs(arch):
		typ := RelocTypeGeneric(rel.Type)
		switch {
		case typ == GENERIC_RELOC_PAIR:
			return "", nil
		case typ == GENERIC_RELOC_SECTDIFF,
			typ == GENERIC_RELOC_LOCAL_SECTDIFF && arch != object.ArchARM:
			nref, next, err := f.pairOf(r, uint8(GENERIC_RELOC_PAIR), relocTypeName(arch, rel.Type))
			if err != nil {
				return "", err
			}
			if err := target(r, rel); err != nil {
				return "", err
			}
			sb.WriteByte('-')
			if err := target(nref, next); err != nil {
				return "", err
			}
		case typ == GENERIC_RELOC_TLV && arch != object.ArchARM:
			if err := target(r, rel); err != nil {
				return "", err
			}
			sb.WriteString("@TLV")
			if rel.Pcrel {
				sb.WriteByte('P')
			}
		case arch == object.ArchARM && (RelocTypeARM(rel.Type) == ARM_RELOC_HALF ||
			RelocTypeARM(rel.Type) == ARM_RELOC_HALF_SECTDIFF):
			// the upper bit of the length field picks the half
			if rel.Len>>1 != 0 {
				sb.WriteString(":upper16:(")
			} else {
				sb.WriteString(":lower16:(")
			}
			if err := target(r, rel); err != nil {
				return "", err
			}
			nref, next, err := f.pairOf(r, uint8(ARM_RELOC_PAIR), relocTypeName(arch, rel.Type))
			if err != nil {
				return "", err
			}
			if RelocTypeARM(rel.Type) == ARM_RELOC_HALF_SECTDIFF {
				sb.WriteByte('-')
				if err := target(nref, next); err != nil {
					return "", err
				}
			}
			sb.WriteByte(')')
		default:
			if err := target(r, rel); err != nil {
				return "", err
			}
		}

	default:
		if err := target(r, rel); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// relocTargetName names what rel points at. Scattered relocations carry an
// address, matched first against symbols and then against section starts.
func (f *File) relocTargetName(r object.RelocationRef, rel Reloc) (string, error) {
	if rel.Scattered {
		if name, ok := f.targets.Get(rel.Value); ok {
			return name, nil
		}
		name := f.scatteredTargetName(rel.Value)
		f.targets.Add(rel.Value, name)
		return name, nil
	}
	if rel.Extern {
		sym, ok := f.SymbolByIndex(int(rel.Value))
		if !ok {
			return "", formatErr(f.relocOffset(r), "relocation symbol index out of range", rel.Value)
		}
		return f.SymbolName(sym)
	}
	// sections are numbered from 1
	sec, ok := f.SectionByIndex(int(rel.Value) - 1)
	if !ok {
		return "", formatErr(f.relocOffset(r), "relocation section index out of range", rel.Value)
	}
	return f.SectionName(sec)
}

func (f *File) scatteredTargetName(addr uint32) string {
	for s, end := f.SymbolBegin(), f.SymbolEnd(); s != end; s = f.NextSymbol(s) {
		a, err := f.SymbolAddress(s)
		if err != nil || a != uint64(addr) {
			continue
		}
		name, err := f.SymbolName(s)
		if err != nil {
			log.Debugf("skipping symbol at %#x: %v", s.A, err)
			continue
		}
		return name
	}
	for i := range f.sections {
		if f.sections[i].Addr == uint64(addr) {
			return f.sections[i].Name()
		}
	}
	return fmt.Sprintf("0x%x", addr)
}
