package object

import "iter"

// Symbols yields every symbol of f in table order.
func Symbols(f File) iter.Seq[SymbolRef] {
	return func(yield func(SymbolRef) bool) {
		for s, end := f.SymbolBegin(), f.SymbolEnd(); s != end; s = f.NextSymbol(s) {
			if !yield(s) {
				return
			}
		}
	}
}

// Sections yields every section of f in header order.
func Sections(f File) iter.Seq[SectionRef] {
	return func(yield func(SectionRef) bool) {
		for s, end := f.SectionBegin(), f.SectionEnd(); s != end; s = f.NextSection(s) {
			if !yield(s) {
				return
			}
		}
	}
}

// Relocations yields the relocation records of section s.
func Relocations(f File, s SectionRef) iter.Seq[RelocationRef] {
	return func(yield func(RelocationRef) bool) {
		for r, end := f.SectionRelocationBegin(s), f.SectionRelocationEnd(s); r != end; r = f.NextRelocation(r) {
			if !yield(r) {
				return
			}
		}
	}
}

// Libraries yields the dynamic-library dependencies of f in load order.
func Libraries(f File) iter.Seq[LibraryRef] {
	return func(yield func(LibraryRef) bool) {
		for l, end := f.LibraryBegin(), f.LibraryEnd(); l != end; l = f.NextLibrary(l) {
			if !yield(l) {
				return
			}
		}
	}
}
