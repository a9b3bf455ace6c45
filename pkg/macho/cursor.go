package macho

import (
	"bytes"
	"encoding/binary"
)

// cursor is raw, bounds checked access to the image.
type cursor struct {
	data []byte
	bo   binary.ByteOrder
	is64 bool
}

func (c cursor) size() uint64 { return uint64(len(c.data)) }

// inBounds reports whether [off, off+n) lies inside the image.
func (c cursor) inBounds(off, n uint64) bool {
	return off <= c.size() && n <= c.size()-off
}

// read decodes the fixed-layout record v at off in the image's byte order.
func (c cursor) read(off uint64, v any) error {
	n := binary.Size(v)
	if n < 0 {
		panic("macho: read of variable sized record")
	}
	if !c.inBounds(off, uint64(n)) {
		return formatErr(off, "record extends past end of file", n)
	}
	return binary.Read(bytes.NewReader(c.data[off:off+uint64(n)]), c.bo, v)
}

func (c cursor) uint32(off uint64) (uint32, error) {
	if !c.inBounds(off, 4) {
		return 0, formatErr(off, "word extends past end of file", nil)
	}
	return c.bo.Uint32(c.data[off:]), nil
}

// slice returns [off, off+n) clamped to the image.
func (c cursor) slice(off, n uint64) []byte {
	if off > c.size() {
		return nil
	}
	if n > c.size()-off {
		n = c.size() - off
	}
	return c.data[off : off+n]
}

// cstring reads a NUL terminated string starting at off, stopping at limit.
func (c cursor) cstring(off, limit uint64) string {
	if limit > c.size() {
		limit = c.size()
	}
	if off >= limit {
		return ""
	}
	return cstring(c.data[off:limit])
}
