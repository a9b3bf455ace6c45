package macho

// A LoadCmd is a Mach-O load command.
type LoadCmd uint32

const (
	LoadCmdReqDyld            LoadCmd = 0x80000000
	LoadCmdSegment            LoadCmd = 0x1  // segment of this file to be mapped
	LoadCmdSymtab             LoadCmd = 0x2  // link-edit stab symbol table info
	LoadCmdThread             LoadCmd = 0x4  // thread
	LoadCmdUnixThread         LoadCmd = 0x5  // thread+stack
	LoadCmdDysymtab           LoadCmd = 0xb  // dynamic link-edit symbol table info
	LoadCmdDylib              LoadCmd = 0xc  // load dylib command
	LoadCmdDylibID            LoadCmd = 0xd  // id dylib command
	LoadCmdLoadDylinker       LoadCmd = 0xe  // load a dynamic linker
	LoadCmdDylinker           LoadCmd = 0xf  // id dylinker command
	LoadCmdSubFramework       LoadCmd = 0x12 // sub framework
	LoadCmdLoadWeakDylib      LoadCmd = 0x18 | LoadCmdReqDyld
	LoadCmdSegment64          LoadCmd = 0x19 // 64-bit segment of this file to be mapped
	LoadCmdUUID               LoadCmd = 0x1b
	LoadCmdRpath              LoadCmd = 0x1c | LoadCmdReqDyld
	LoadCmdCodeSignature      LoadCmd = 0x1d
	LoadCmdReexportDylib      LoadCmd = 0x1f | LoadCmdReqDyld
	LoadCmdLazyLoadDylib      LoadCmd = 0x20 // delay load of dylib until first use
	LoadCmdDyldInfo           LoadCmd = 0x22
	LoadCmdDyldInfoOnly       LoadCmd = 0x22 | LoadCmdReqDyld
	LoadCmdLoadUpwardDylib    LoadCmd = 0x23 | LoadCmdReqDyld
	LoadCmdVersionMinMacosx   LoadCmd = 0x24
	LoadCmdVersionMinIphoneos LoadCmd = 0x25
	LoadCmdFunctionStarts     LoadCmd = 0x26
	LoadCmdMain               LoadCmd = 0x28 | LoadCmdReqDyld
	LoadCmdDataInCode         LoadCmd = 0x29 // table of non-instructions in __text
	LoadCmdSourceVersion      LoadCmd = 0x2a
	LoadCmdLinkerOption       LoadCmd = 0x2d
	LoadCmdBuildVersion       LoadCmd = 0x32
)

var cmdStrings = []intName{
	{uint32(LoadCmdSegment), "LC_SEGMENT"},
	{uint32(LoadCmdSymtab), "LC_SYMTAB"},
	{uint32(LoadCmdThread), "LC_THREAD"},
	{uint32(LoadCmdUnixThread), "LC_UNIXTHREAD"},
	{uint32(LoadCmdDysymtab), "LC_DYSYMTAB"},
	{uint32(LoadCmdDylib), "LC_LOAD_DYLIB"},
	{uint32(LoadCmdDylibID), "LC_ID_DYLIB"},
	{uint32(LoadCmdLoadDylinker), "LC_LOAD_DYLINKER"},
	{uint32(LoadCmdDylinker), "LC_ID_DYLINKER"},
	{uint32(LoadCmdSubFramework), "LC_SUB_FRAMEWORK"},
	{uint32(LoadCmdLoadWeakDylib), "LC_LOAD_WEAK_DYLIB"},
	{uint32(LoadCmdSegment64), "LC_SEGMENT_64"},
	{uint32(LoadCmdUUID), "LC_UUID"},
	{uint32(LoadCmdRpath), "LC_RPATH"},
	{uint32(LoadCmdCodeSignature), "LC_CODE_SIGNATURE"},
	{uint32(LoadCmdReexportDylib), "LC_REEXPORT_DYLIB"},
	{uint32(LoadCmdLazyLoadDylib), "LC_LAZY_LOAD_DYLIB"},
	{uint32(LoadCmdDyldInfo), "LC_DYLD_INFO"},
	{uint32(LoadCmdDyldInfoOnly), "LC_DYLD_INFO_ONLY"},
	{uint32(LoadCmdLoadUpwardDylib), "LC_LOAD_UPWARD_DYLIB"},
	{uint32(LoadCmdVersionMinMacosx), "LC_VERSION_MIN_MACOSX"},
	{uint32(LoadCmdVersionMinIphoneos), "LC_VERSION_MIN_IPHONEOS"},
	{uint32(LoadCmdFunctionStarts), "LC_FUNCTION_STARTS"},
	{uint32(LoadCmdMain), "LC_MAIN"},
	{uint32(LoadCmdDataInCode), "LC_DATA_IN_CODE"},
	{uint32(LoadCmdSourceVersion), "LC_SOURCE_VERSION"},
	{uint32(LoadCmdLinkerOption), "LC_LINKER_OPTION"},
	{uint32(LoadCmdBuildVersion), "LC_BUILD_VERSION"},
}

func (i LoadCmd) String() string   { return stringName(uint32(i), cmdStrings, false) }
func (i LoadCmd) GoString() string { return stringName(uint32(i), cmdStrings, true) }

// IsDylibLoad reports whether the command records a dependency on a dynamic
// library.
func (i LoadCmd) IsDylibLoad() bool {
	switch i {
	case LoadCmdDylib, LoadCmdLoadWeakDylib, LoadCmdLazyLoadDylib,
		LoadCmdReexportDylib, LoadCmdLoadUpwardDylib:
		return true
	}
	return false
}

// LoadCommandInfo is one load command as visited by the header walk.
type LoadCommandInfo struct {
	Offset uint64
	LoadCmdHeader
}

// Next is the offset of the following command.
func (l LoadCommandInfo) Next() uint64 { return l.Offset + uint64(l.Len) }
