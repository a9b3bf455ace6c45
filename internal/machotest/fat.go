package machotest

import "encoding/binary"

const (
	fatMagic    = 0xcafebabe
	fatAlign    = 12 // log2 of the slice alignment
	fatArchSize = 20
)

// Fat wraps thin images in a universal header. Each image starts on a
// 1<<12 boundary; the cpu fields are copied from the image headers.
func Fat(images ...[]byte) []byte {
	out := binary.BigEndian.AppendUint32(nil, fatMagic)
	out = binary.BigEndian.AppendUint32(out, uint32(len(images)))

	off := align(uint32(8+fatArchSize*len(images)), 1<<fatAlign)
	offsets := make([]uint32, len(images))
	for i, img := range images {
		offsets[i] = off
		off = align(off+uint32(len(img)), 1<<fatAlign)

		var bo binary.ByteOrder = binary.BigEndian
		if img[0] == 0xce || img[0] == 0xcf {
			bo = binary.LittleEndian
		}
		out = binary.BigEndian.AppendUint32(out, bo.Uint32(img[4:]))
		out = binary.BigEndian.AppendUint32(out, bo.Uint32(img[8:]))
		out = binary.BigEndian.AppendUint32(out, offsets[i])
		out = binary.BigEndian.AppendUint32(out, uint32(len(img)))
		out = binary.BigEndian.AppendUint32(out, fatAlign)
	}
	for i, img := range images {
		for len(out) < int(offsets[i]) {
			out = append(out, 0)
		}
		out = append(out, img...)
	}
	return out
}

// FatOffset returns where Fat places image i, given the sizes of all images.
func FatOffset(sizes []int, i int) uint64 {
	off := align(uint32(8+fatArchSize*len(sizes)), 1<<fatAlign)
	for j := 0; j < i; j++ {
		off = align(off+uint32(sizes[j]), 1<<fatAlign)
	}
	return uint64(off)
}
