// Package magic sniffs the leading magic number of Mach-O images.
package magic

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Magic is the first four bytes of a file read as a little-endian word.
type Magic uint32

const (
	MagicLE32  Magic = 0xfeedface // ce fa ed fe
	MagicBE32  Magic = 0xcefaedfe // fe ed fa ce
	MagicLE64  Magic = 0xfeedfacf // cf fa ed fe
	MagicBE64  Magic = 0xcffaedfe // fe ed fa cf
	MagicFat   Magic = 0xbebafeca // ca fe ba be
	MagicFat64 Magic = 0xbfbafeca // ca fe ba bf
)

// Size is the number of bytes Identify looks at.
const Size = 4

// Layout is the word size and byte order selected by a thin magic.
type Layout struct {
	Is64         bool
	LittleEndian bool
}

func (l Layout) String() string {
	bits, order := 32, "big"
	if l.Is64 {
		bits = 64
	}
	if l.LittleEndian {
		order = "little"
	}
	return fmt.Sprintf("%d-bit %s-endian", bits, order)
}

func read(head []byte) (Magic, bool) {
	if len(head) < Size {
		return 0, false
	}
	return Magic(binary.LittleEndian.Uint32(head)), true
}

// Identify returns the layout selected by a thin Mach-O magic at the start of
// head. Universal headers are not thin and report false.
func Identify(head []byte) (Layout, bool) {
	m, ok := read(head)
	if !ok {
		return Layout{}, false
	}
	switch m {
	case MagicLE32:
		return Layout{Is64: false, LittleEndian: true}, true
	case MagicBE32:
		return Layout{Is64: false, LittleEndian: false}, true
	case MagicLE64:
		return Layout{Is64: true, LittleEndian: true}, true
	case MagicBE64:
		return Layout{Is64: true, LittleEndian: false}, true
	}
	return Layout{}, false
}

// IsFat reports whether head starts with a universal (fat) header.
func IsFat(head []byte) bool {
	m, ok := read(head)
	return ok && (m == MagicFat || m == MagicFat64)
}

// IsMachO reports whether the file at filePath is a thin or universal Mach-O.
func IsMachO(filePath string) (bool, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return false, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer f.Close()

	var head [Size]byte
	if _, err = f.Read(head[:]); err != nil {
		return false, fmt.Errorf("failed to read magic: %w", err)
	}
	if _, ok := Identify(head[:]); ok || IsFat(head[:]) {
		return true, nil
	}
	return false, fmt.Errorf("not a macho file")
}
