package macho

import "strings"

// A Type is the Mach-O file type, e.g. an object file, executable, or dynamic library.
type Type uint32

const (
	TypeObj        Type = 1
	TypeExec       Type = 2
	TypeFVMLib     Type = 3
	TypeCore       Type = 4
	TypePreload    Type = 5 // preloaded executable file
	TypeDylib      Type = 6 // dynamically bound shared library
	TypeDylinker   Type = 7 // dynamic link editor
	TypeBundle     Type = 8
	TypeDylibStub  Type = 9 // shared library stub for static linking
	TypeDsym       Type = 10
	TypeKextBundle Type = 11
)

var typeStrings = []intName{
	{uint32(TypeObj), "MH_OBJECT"},
	{uint32(TypeExec), "MH_EXECUTE"},
	{uint32(TypeFVMLib), "MH_FVMLIB"},
	{uint32(TypeCore), "MH_CORE"},
	{uint32(TypePreload), "MH_PRELOAD"},
	{uint32(TypeDylib), "MH_DYLIB"},
	{uint32(TypeDylinker), "MH_DYLINKER"},
	{uint32(TypeBundle), "MH_BUNDLE"},
	{uint32(TypeDylibStub), "MH_DYLIB_STUB"},
	{uint32(TypeDsym), "MH_DSYM"},
	{uint32(TypeKextBundle), "MH_KEXT_BUNDLE"},
}

func (t Type) String() string   { return stringName(uint32(t), typeStrings, false) }
func (t Type) GoString() string { return stringName(uint32(t), typeStrings, true) }

// HeaderFlag is the flags word of the file header.
type HeaderFlag uint32

const (
	FlagNoUndefs              HeaderFlag = 0x1
	FlagIncrLink              HeaderFlag = 0x2
	FlagDyldLink              HeaderFlag = 0x4
	FlagBindAtLoad            HeaderFlag = 0x8
	FlagPrebound              HeaderFlag = 0x10
	FlagSplitSegs             HeaderFlag = 0x20
	FlagTwoLevel              HeaderFlag = 0x80
	FlagForceFlat             HeaderFlag = 0x100
	FlagSubsectionsViaSymbols HeaderFlag = 0x2000
	FlagWeakDefines           HeaderFlag = 0x8000
	FlagBindsToWeak           HeaderFlag = 0x10000
	FlagPIE                   HeaderFlag = 0x200000
	FlagHasTLVDescriptors     HeaderFlag = 0x800000
)

var headerFlagStrings = []intName{
	{uint32(FlagNoUndefs), "NoUndefs"},
	{uint32(FlagIncrLink), "IncrLink"},
	{uint32(FlagDyldLink), "DyldLink"},
	{uint32(FlagBindAtLoad), "BindAtLoad"},
	{uint32(FlagPrebound), "Prebound"},
	{uint32(FlagSplitSegs), "SplitSegs"},
	{uint32(FlagTwoLevel), "TwoLevel"},
	{uint32(FlagForceFlat), "ForceFlat"},
	{uint32(FlagSubsectionsViaSymbols), "SubsectionsViaSymbols"},
	{uint32(FlagWeakDefines), "WeakDefines"},
	{uint32(FlagBindsToWeak), "BindsToWeak"},
	{uint32(FlagPIE), "PIE"},
	{uint32(FlagHasTLVDescriptors), "HasTLVDescriptors"},
}

// Has reports whether every bit of want is set.
func (f HeaderFlag) Has(want HeaderFlag) bool { return f&want == want }

// List returns the names of the known bits that are set.
func (f HeaderFlag) List() []string {
	var out []string
	for _, n := range headerFlagStrings {
		if uint32(f)&n.i != 0 {
			out = append(out, n.s)
		}
	}
	return out
}

func (f HeaderFlag) String() string { return strings.Join(f.List(), "|") }
