package macho

import "github.com/blacktop/machobj/pkg/object"

// A CPU is a Mach-O cpu type.
type CPU uint32

const cpuArch64 = 0x01000000 // 64 bit ABI

const (
	CPU386   CPU = 7
	CPUAmd64 CPU = CPU386 | cpuArch64
	CPUArm   CPU = 12
	CPUArm64 CPU = CPUArm | cpuArch64
	CPUPpc   CPU = 18
	CPUPpc64 CPU = CPUPpc | cpuArch64
)

var cpuStrings = []intName{
	{uint32(CPU386), "CPU386"},
	{uint32(CPUAmd64), "CPUAmd64"},
	{uint32(CPUArm), "CPUArm"},
	{uint32(CPUArm64), "CPUArm64"},
	{uint32(CPUPpc), "CPUPpc"},
	{uint32(CPUPpc64), "CPUPpc64"},
}

func (i CPU) String() string   { return stringName(uint32(i), cpuStrings, false) }
func (i CPU) GoString() string { return stringName(uint32(i), cpuStrings, true) }

// Arch maps the cpu type onto the format-neutral architecture.
func (i CPU) Arch() object.Arch {
	switch i {
	case CPU386:
		return object.ArchX86
	case CPUAmd64:
		return object.ArchX86_64
	case CPUArm:
		return object.ArchARM
	case CPUArm64:
		return object.ArchARM64
	case CPUPpc:
		return object.ArchPPC
	case CPUPpc64:
		return object.ArchPPC64
	}
	return object.ArchUnknown
}

// formatName returns the display name used by FileFormatName.
func formatName(cpu CPU, is64 bool) string {
	if is64 {
		switch cpu {
		case CPUAmd64:
			return "Mach-O 64-bit x86-64"
		case CPUArm64:
			return "Mach-O arm64"
		case CPUPpc64:
			return "Mach-O 64-bit ppc64"
		}
		return "Mach-O 64-bit unknown"
	}
	switch cpu {
	case CPU386:
		return "Mach-O 32-bit i386"
	case CPUArm:
		return "Mach-O arm"
	case CPUPpc:
		return "Mach-O 32-bit ppc"
	}
	return "Mach-O 32-bit unknown"
}
