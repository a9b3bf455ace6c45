package object

// File is implemented by every object-format reader.
//
// Iteration follows a begin/end/next shape: Begin returns the first handle,
// End the terminal handle, and Next advances by one. Handles compare with ==.
type File interface {
	// FileFormatName is a human readable name such as "Mach-O 64-bit x86-64".
	FileFormatName() string
	Arch() Arch
	// BytesInAddress is 4 or 8.
	BytesInAddress() int

	SymbolBegin() SymbolRef
	SymbolEnd() SymbolRef
	NextSymbol(SymbolRef) SymbolRef
	SymbolName(SymbolRef) (string, error)
	SymbolAddress(SymbolRef) (uint64, error)
	SymbolSize(SymbolRef) (uint64, error)
	SymbolAlignment(SymbolRef) (uint32, error)
	SymbolFlags(SymbolRef) (SymbolFlags, error)
	SymbolType(SymbolRef) (SymbolType, error)
	// SymbolSection returns SectionEnd for symbols that belong to no section.
	SymbolSection(SymbolRef) (SectionRef, error)

	SectionBegin() SectionRef
	SectionEnd() SectionRef
	NextSection(SectionRef) SectionRef
	SectionName(SectionRef) (string, error)
	SectionAddress(SectionRef) (uint64, error)
	SectionSize(SectionRef) (uint64, error)
	SectionContents(SectionRef) ([]byte, error)
	SectionAlignment(SectionRef) (uint64, error)
	IsSectionText(SectionRef) (bool, error)
	IsSectionData(SectionRef) (bool, error)
	IsSectionBSS(SectionRef) (bool, error)
	IsSectionRequiredForExecution(SectionRef) (bool, error)
	IsSectionVirtual(SectionRef) (bool, error)
	IsSectionZeroInit(SectionRef) (bool, error)
	IsSectionReadOnlyData(SectionRef) (bool, error)
	SectionContainsSymbol(SectionRef, SymbolRef) (bool, error)
	SectionRelocationBegin(SectionRef) RelocationRef
	SectionRelocationEnd(SectionRef) RelocationRef

	NextRelocation(RelocationRef) RelocationRef
	RelocationAddress(RelocationRef) (uint64, error)
	RelocationOffset(RelocationRef) (uint64, error)
	// RelocationSymbol returns SymbolEnd when the relocation does not refer
	// to a symbol.
	RelocationSymbol(RelocationRef) (SymbolRef, error)
	RelocationType(RelocationRef) (uint64, error)
	RelocationTypeName(RelocationRef) (string, error)
	RelocationValueString(RelocationRef) (string, error)
	// RelocationHidden reports whether the record only makes sense as the
	// second half of a pair and should not be listed on its own.
	RelocationHidden(RelocationRef) (bool, error)

	LibraryBegin() LibraryRef
	LibraryEnd() LibraryRef
	NextLibrary(LibraryRef) LibraryRef
	LibraryPath(LibraryRef) (string, error)
	LibraryShortName(LibraryRef) (string, error)
}
