package macho

import "github.com/blacktop/machobj/pkg/object"

// SectionCount is the number of sections across all segment commands.
func (f *File) SectionCount() int { return len(f.sections) }

func (f *File) SectionBegin() object.SectionRef { return object.SectionRef{} }

func (f *File) SectionEnd() object.SectionRef {
	return object.SectionRef{A: uint64(len(f.sections))}
}

func (f *File) NextSection(s object.SectionRef) object.SectionRef {
	return object.SectionRef{A: s.A + 1}
}

// SectionHeader returns the decoded header of s. It panics if s is not a
// section of f.
func (f *File) SectionHeader(s object.SectionRef) *Section {
	return &f.sections[s.A]
}

// SectionByIndex returns the handle of the i'th section, counting from 0.
func (f *File) SectionByIndex(i int) (object.SectionRef, bool) {
	if i < 0 || i >= len(f.sections) {
		return f.SectionEnd(), false
	}
	return object.SectionRef{A: uint64(i)}, true
}

func (f *File) SectionName(s object.SectionRef) (string, error) {
	return f.SectionHeader(s).Name(), nil
}

// SectionRawName returns the on-disk 16 byte name field of s.
func (f *File) SectionRawName(s object.SectionRef) [16]byte {
	return f.SectionHeader(s).RawName
}

// SectionFinalSegmentName returns the segment name recorded in the section
// header of s.
func (f *File) SectionFinalSegmentName(s object.SectionRef) string {
	return f.SectionHeader(s).SegName()
}

func (f *File) SectionAddress(s object.SectionRef) (uint64, error) {
	return f.SectionHeader(s).Addr, nil
}

func (f *File) SectionSize(s object.SectionRef) (uint64, error) {
	return f.SectionHeader(s).Size, nil
}

func (f *File) SectionFileOffset(s object.SectionRef) uint64 {
	return uint64(f.SectionHeader(s).Offset)
}

// SectionContents returns the bytes of s, clamped to the end of the image.
// The slice aliases the image.
func (f *File) SectionContents(s object.SectionRef) ([]byte, error) {
	sh := f.SectionHeader(s)
	return f.c.slice(uint64(sh.Offset), sh.Size), nil
}

func (f *File) SectionAlignment(s object.SectionRef) (uint64, error) {
	return uint64(1) << (f.SectionHeader(s).Align & 63), nil
}

func (f *File) IsSectionText(s object.SectionRef) (bool, error) {
	return f.SectionHeader(s).Flags.IsPureInstructions(), nil
}

func (f *File) IsSectionData(s object.SectionRef) (bool, error) {
	flags := f.SectionHeader(s).Flags
	return !flags.IsPureInstructions() && !flags.IsZerofill() && !flags.IsGbZerofill(), nil
}

func (f *File) IsSectionBSS(s object.SectionRef) (bool, error) {
	flags := f.SectionHeader(s).Flags
	return flags.IsZerofill() || flags.IsGbZerofill(), nil
}

func (f *File) IsSectionZeroInit(s object.SectionRef) (bool, error) {
	return f.IsSectionBSS(s)
}

// IsSectionRequiredForExecution always reports true; the header carries no
// such information.
func (f *File) IsSectionRequiredForExecution(object.SectionRef) (bool, error) {
	return true, nil
}

// IsSectionVirtual always reports false.
func (f *File) IsSectionVirtual(object.SectionRef) (bool, error) {
	return false, nil
}

// IsSectionReadOnlyData always reports false.
func (f *File) IsSectionReadOnlyData(object.SectionRef) (bool, error) {
	return false, nil
}

// SectionContainsSymbol reports whether the address of sym falls inside s.
// Symbols of unknown type are never contained.
func (f *File) SectionContainsSymbol(s object.SectionRef, sym object.SymbolRef) (bool, error) {
	typ, err := f.SymbolType(sym)
	if err != nil {
		return false, err
	}
	if typ == object.SymbolTypeUnknown {
		return false, nil
	}
	addr, err := f.SymbolAddress(sym)
	if err != nil {
		return false, err
	}
	sh := f.SectionHeader(s)
	return addr >= sh.Addr && addr-sh.Addr < sh.Size, nil
}

func (f *File) SectionRelocationBegin(s object.SectionRef) object.RelocationRef {
	return object.RelocationRef{A: s.A}
}

func (f *File) SectionRelocationEnd(s object.SectionRef) object.RelocationRef {
	return object.RelocationRef{A: s.A, B: uint64(f.SectionHeader(s).Nreloc)}
}
