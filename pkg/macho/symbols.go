package macho

import (
	"cmp"

	"golang.org/x/exp/slices"

	"github.com/blacktop/machobj/pkg/object"
)

func (f *File) symbolBounds() (begin, end uint64) {
	if f.symtab == nil {
		return 0, 0
	}
	begin = uint64(f.symtab.Symoff)
	return begin, begin + uint64(f.symtab.Nsyms)*f.nlistSize()
}

func (f *File) SymbolBegin() object.SymbolRef {
	begin, _ := f.symbolBounds()
	return object.SymbolRef{A: begin}
}

func (f *File) SymbolEnd() object.SymbolRef {
	_, end := f.symbolBounds()
	return object.SymbolRef{A: end}
}

func (f *File) NextSymbol(s object.SymbolRef) object.SymbolRef {
	return object.SymbolRef{A: s.A + f.nlistSize()}
}

// SymbolCount is the number of entries in the symbol table.
func (f *File) SymbolCount() int {
	if f.symtab == nil {
		return 0
	}
	return int(f.symtab.Nsyms)
}

// SymbolIndex returns the table index of s.
func (f *File) SymbolIndex(s object.SymbolRef) int {
	begin, _ := f.symbolBounds()
	return int((s.A - begin) / f.nlistSize())
}

// SymbolByIndex returns the handle of symbol table entry i.
func (f *File) SymbolByIndex(i int) (object.SymbolRef, bool) {
	if i < 0 || i >= f.SymbolCount() {
		return f.SymbolEnd(), false
	}
	begin, _ := f.symbolBounds()
	return object.SymbolRef{A: begin + uint64(i)*f.nlistSize()}, true
}

// SymbolEntry decodes the symbol table entry of s, widening 32-bit entries.
func (f *File) SymbolEntry(s object.SymbolRef) (Nlist64, error) {
	if f.c.is64 {
		var n Nlist64
		err := f.c.read(s.A, &n)
		return n, err
	}
	var n Nlist32
	if err := f.c.read(s.A, &n); err != nil {
		return Nlist64{}, err
	}
	return Nlist64{Name: n.Name, Type: n.Type, Sect: n.Sect, Desc: n.Desc, Value: uint64(n.Value)}, nil
}

// stringAt returns the string table entry at strx.
func (f *File) stringAt(ref uint64, strx uint64) (string, error) {
	if f.symtab == nil || strx >= uint64(f.symtab.Strsize) {
		return "", formatErr(ref, "string table offset out of range", strx)
	}
	base := uint64(f.symtab.Stroff)
	return f.c.cstring(base+strx, base+uint64(f.symtab.Strsize)), nil
}

func (f *File) SymbolName(s object.SymbolRef) (string, error) {
	e, err := f.SymbolEntry(s)
	if err != nil {
		return "", err
	}
	return f.stringAt(s.A, uint64(e.Name))
}

// SymbolIndirectName returns the name an N_INDR symbol aliases. The value
// field of such an entry is a string table offset.
func (f *File) SymbolIndirectName(s object.SymbolRef) (string, error) {
	e, err := f.SymbolEntry(s)
	if err != nil {
		return "", err
	}
	if !e.Type.IsIndirect() {
		return "", formatErr(s.A, "symbol is not indirect", e.Type)
	}
	return f.stringAt(s.A, e.Value)
}

func (f *File) SymbolAddress(s object.SymbolRef) (uint64, error) {
	e, err := f.SymbolEntry(s)
	if err != nil {
		return 0, err
	}
	return entryAddress(e), nil
}

func entryAddress(e Nlist64) uint64 {
	if e.Type.IsUndefined() && e.Value == 0 {
		return object.UnknownAddressOrSize
	}
	return e.Value
}

func entryFlags(e Nlist64) object.SymbolFlags {
	var flags object.SymbolFlags
	if e.Type.IsUndefined() {
		flags |= object.SymbolUndefined
	}
	if e.Type.IsIndirect() {
		flags |= object.SymbolIndirect
	}
	if e.Type.IsDebugSym() {
		flags |= object.SymbolFormatSpecific
	}
	if e.Type.IsExternal() {
		flags |= object.SymbolGlobal
		if addr := entryAddress(e); e.Type.IsUndefined() && addr != 0 && addr != object.UnknownAddressOrSize {
			flags |= object.SymbolCommon
		}
	}
	if e.Desc.IsWeak() {
		flags |= object.SymbolWeak
	}
	if e.Type.IsAbsolute() {
		flags |= object.SymbolAbsolute
	}
	return flags
}

func (f *File) SymbolFlags(s object.SymbolRef) (object.SymbolFlags, error) {
	e, err := f.SymbolEntry(s)
	if err != nil {
		return object.SymbolFlagNone, err
	}
	return entryFlags(e), nil
}

func (f *File) SymbolType(s object.SymbolRef) (object.SymbolType, error) {
	e, err := f.SymbolEntry(s)
	if err != nil {
		return object.SymbolTypeUnknown, err
	}
	switch {
	case e.Type.IsDebugSym():
		return object.SymbolTypeDebug, nil
	case e.Type.IsUndefined():
		return object.SymbolTypeUnknown, nil
	case e.Type.IsDefinedInSection():
		return object.SymbolTypeFunction, nil
	}
	return object.SymbolTypeOther, nil
}

// SymbolAlignment is the alignment of a common symbol, or 0.
func (f *File) SymbolAlignment(s object.SymbolRef) (uint32, error) {
	e, err := f.SymbolEntry(s)
	if err != nil {
		return 0, err
	}
	if entryFlags(e)&object.SymbolCommon != 0 {
		return uint32(1) << e.Desc.CommAlign(), nil
	}
	return 0, nil
}

// SymbolSection returns the section s is defined in, or SectionEnd.
func (f *File) SymbolSection(s object.SymbolRef) (object.SectionRef, error) {
	e, err := f.SymbolEntry(s)
	if err != nil {
		return f.SectionEnd(), err
	}
	if e.Sect == noSect {
		return f.SectionEnd(), nil
	}
	sec, ok := f.SectionByIndex(int(e.Sect) - 1)
	if !ok {
		return f.SectionEnd(), formatErr(s.A, "symbol section index out of range", e.Sect)
	}
	return sec, nil
}

// symbolAddr is one entry of the size index.
type symbolAddr struct {
	sect uint8
	addr uint64
}

func compareSymbolAddr(a, b symbolAddr) int {
	if c := cmp.Compare(a.sect, b.sect); c != 0 {
		return c
	}
	return cmp.Compare(a.addr, b.addr)
}

// buildSizeIndex sorts every symbol by section then address.
func (f *File) buildSizeIndex() {
	idx := make([]symbolAddr, 0, f.SymbolCount())
	for s, end := f.SymbolBegin(), f.SymbolEnd(); s != end; s = f.NextSymbol(s) {
		e, err := f.SymbolEntry(s)
		if err != nil {
			continue
		}
		idx = append(idx, symbolAddr{sect: e.Sect, addr: entryAddress(e)})
	}
	slices.SortFunc(idx, compareSymbolAddr)
	f.sizeIndex = idx
}

// nextAddress returns the smallest address greater than addr among symbols of
// section sect.
func (f *File) nextAddress(sect uint8, addr uint64) (uint64, bool) {
	f.sizeOnce.Do(f.buildSizeIndex)
	key := symbolAddr{sect: sect, addr: addr}
	i, found := slices.BinarySearchFunc(f.sizeIndex, key, compareSymbolAddr)
	for found && i < len(f.sizeIndex) && f.sizeIndex[i] == key {
		i++
	}
	if i < len(f.sizeIndex) && f.sizeIndex[i].sect == sect {
		return f.sizeIndex[i].addr, true
	}
	return 0, false
}

// SymbolSize derives the size of s from the next symbol in the same section,
// or from the end of that section when s is the last one.
func (f *File) SymbolSize(s object.SymbolRef) (uint64, error) {
	e, err := f.SymbolEntry(s)
	if err != nil {
		return 0, err
	}
	begin := entryAddress(e)
	if begin == object.UnknownAddressOrSize {
		return object.UnknownAddressOrSize, nil
	}
	if e.Sect == noSect {
		if entryFlags(e)&object.SymbolCommon != 0 {
			return begin, nil
		}
		return object.UnknownAddressOrSize, nil
	}
	end, ok := f.nextAddress(e.Sect, begin)
	if !ok {
		sec, ok := f.SectionByIndex(int(e.Sect) - 1)
		if !ok {
			return 0, formatErr(s.A, "symbol section index out of range", e.Sect)
		}
		sh := f.SectionHeader(sec)
		end = sh.Addr + sh.Size
	}
	return end - begin, nil
}
