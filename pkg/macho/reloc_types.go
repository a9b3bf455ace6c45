package macho

import "github.com/blacktop/machobj/pkg/object"

// RelocTypeGeneric is a relocation type shared by i386, arm and ppc.
type RelocTypeGeneric uint8

const (
	GENERIC_RELOC_VANILLA        RelocTypeGeneric = 0 // generic relocation as described above
	GENERIC_RELOC_PAIR           RelocTypeGeneric = 1 // Only follows a GENERIC_RELOC_SECTDIFF
	GENERIC_RELOC_SECTDIFF       RelocTypeGeneric = 2
	GENERIC_RELOC_PB_LA_PTR      RelocTypeGeneric = 3 // prebound lazy pointer
	GENERIC_RELOC_LOCAL_SECTDIFF RelocTypeGeneric = 4
	GENERIC_RELOC_TLV            RelocTypeGeneric = 5 // thread local variables
)

// RelocTypeX86_64 is an x86_64 relocation type.
type RelocTypeX86_64 uint8

const (
	X86_64_RELOC_UNSIGNED   RelocTypeX86_64 = 0 // for absolute addresses
	X86_64_RELOC_SIGNED     RelocTypeX86_64 = 1 // for signed 32-bit displacement
	X86_64_RELOC_BRANCH     RelocTypeX86_64 = 2 // a CALL/JMP instruction with 32-bit displacement
	X86_64_RELOC_GOT_LOAD   RelocTypeX86_64 = 3 // a MOVQ load of a GOT entry
	X86_64_RELOC_GOT        RelocTypeX86_64 = 4 // other GOT references
	X86_64_RELOC_SUBTRACTOR RelocTypeX86_64 = 5 // must be followed by a X86_64_RELOC_UNSIGNED
	X86_64_RELOC_SIGNED_1   RelocTypeX86_64 = 6 // for signed 32-bit displacement with a -1 addend
	X86_64_RELOC_SIGNED_2   RelocTypeX86_64 = 7 // for signed 32-bit displacement with a -2 addend
	X86_64_RELOC_SIGNED_4   RelocTypeX86_64 = 8 // for signed 32-bit displacement with a -4 addend
	X86_64_RELOC_TLV        RelocTypeX86_64 = 9 // for thread local variables
)

// RelocTypeARM is an arm relocation type.
type RelocTypeARM uint8

const (
	ARM_RELOC_VANILLA        RelocTypeARM = 0
	ARM_RELOC_PAIR           RelocTypeARM = 1
	ARM_RELOC_SECTDIFF       RelocTypeARM = 2
	ARM_RELOC_LOCAL_SECTDIFF RelocTypeARM = 3
	ARM_RELOC_PB_LA_PTR      RelocTypeARM = 4
	ARM_RELOC_BR24           RelocTypeARM = 5
	ARM_THUMB_RELOC_BR22     RelocTypeARM = 6
	ARM_THUMB_32BIT_BRANCH   RelocTypeARM = 7 // obsolete
	ARM_RELOC_HALF           RelocTypeARM = 8
	ARM_RELOC_HALF_SECTDIFF  RelocTypeARM = 9
)

var relocTypeNames = map[object.Arch][]string{
	object.ArchX86: {
		"GENERIC_RELOC_VANILLA",
		"GENERIC_RELOC_PAIR",
		"GENERIC_RELOC_SECTDIFF",
		"GENERIC_RELOC_PB_LA_PTR",
		"GENERIC_RELOC_LOCAL_SECTDIFF",
		"GENERIC_RELOC_TLV",
	},
	object.ArchX86_64: {
		"X86_64_RELOC_UNSIGNED",
		"X86_64_RELOC_SIGNED",
		"X86_64_RELOC_BRANCH",
		"X86_64_RELOC_GOT_LOAD",
		"X86_64_RELOC_GOT",
		"X86_64_RELOC_SUBTRACTOR",
		"X86_64_RELOC_SIGNED_1",
		"X86_64_RELOC_SIGNED_2",
		"X86_64_RELOC_SIGNED_4",
		"X86_64_RELOC_TLV",
	},
	object.ArchARM: {
		"ARM_RELOC_VANILLA",
		"ARM_RELOC_PAIR",
		"ARM_RELOC_SECTDIFF",
		"ARM_RELOC_LOCAL_SECTDIFF",
		"ARM_RELOC_PB_LA_PTR",
		"ARM_RELOC_BR24",
		"ARM_THUMB_RELOC_BR22",
		"ARM_THUMB_32BIT_BRANCH",
		"ARM_RELOC_HALF",
		"ARM_RELOC_HALF_SECTDIFF",
	},
	object.ArchARM64: {
		"ARM64_RELOC_UNSIGNED",
		"ARM64_RELOC_SUBTRACTOR",
		"ARM64_RELOC_BRANCH26",
		"ARM64_RELOC_PAGE21",
		"ARM64_RELOC_PAGEOFF12",
		"ARM64_RELOC_GOT_LOAD_PAGE21",
		"ARM64_RELOC_GOT_LOAD_PAGEOFF12",
		"ARM64_RELOC_POINTER_TO_GOT",
		"ARM64_RELOC_TLVP_LOAD_PAGE21",
		"ARM64_RELOC_TLVP_LOAD_PAGEOFF12",
		"ARM64_RELOC_ADDEND",
	},
	object.ArchPPC: {
		"PPC_RELOC_VANILLA",
		"PPC_RELOC_PAIR",
		"PPC_RELOC_BR14",
		"PPC_RELOC_BR24",
		"PPC_RELOC_HI16",
		"PPC_RELOC_LO16",
		"PPC_RELOC_HA16",
		"PPC_RELOC_LO14",
		"PPC_RELOC_SECTDIFF",
		"PPC_RELOC_PB_LA_PTR",
		"PPC_RELOC_HI16_SECTDIFF",
		"PPC_RELOC_LO16_SECTDIFF",
		"PPC_RELOC_HA16_SECTDIFF",
		"PPC_RELOC_JBSR",
		"PPC_RELOC_LO14_SECTDIFF",
		"PPC_RELOC_LOCAL_SECTDIFF",
	},
}

// relocTypeName returns the mnemonic of typ on arch, or "Unknown".
func relocTypeName(arch object.Arch, typ uint8) string {
	names := relocTypeNames[arch]
	if int(typ) < len(names) {
		return names[typ]
	}
	return "Unknown"
}

// usesGenericRelocs reports whether arch shares the GENERIC_RELOC scheme.
func usesGenericRelocs(arch object.Arch) bool {
	switch arch {
	case object.ArchX86, object.ArchARM, object.ArchPPC:
		return true
	}
	return false
}
