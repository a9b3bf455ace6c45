package machotest

import "encoding/binary"

type writer struct {
	b  []byte
	bo binary.AppendByteOrder
}

func (w *writer) u8(v uint8)   { w.b = append(w.b, v) }
func (w *writer) u16(v uint16) { w.b = w.bo.AppendUint16(w.b, v) }
func (w *writer) u32(v uint32) { w.b = w.bo.AppendUint32(w.b, v) }
func (w *writer) u64(v uint64) { w.b = w.bo.AppendUint64(w.b, v) }
func (w *writer) raw(p []byte) { w.b = append(w.b, p...) }

// word writes v as 32 or 64 bits.
func (w *writer) word(is64 bool, v uint64) {
	if is64 {
		w.u64(v)
	} else {
		w.u32(uint32(v))
	}
}

func (w *writer) name(s string) {
	n := Name16(s)
	w.raw(n[:])
}

func (w *writer) padTo(n int) {
	for len(w.b) < n {
		w.b = append(w.b, 0)
	}
}

type sectLayout struct {
	offset, reloff, nreloc uint32
}

type cmdLayout struct {
	sects                []sectLayout
	symoff, nsyms        uint32
	stroff, strsize      uint32
	tableoff, tablecount uint32
}

func (b *Builder) byteOrder() binary.AppendByteOrder {
	if b.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Build lays the image out and returns it.
func (b *Builder) Build() []byte {
	hdr := b.headerSize()
	var sizeofcmds uint32
	for _, c := range b.cmds {
		sizeofcmds += b.cmdSize(c)
	}
	dataStart := align(hdr+sizeofcmds, 8)

	data := &writer{bo: b.byteOrder()}
	place := func(p []byte) uint32 {
		off := dataStart + uint32(len(data.b))
		data.raw(p)
		data.padTo(int(align(uint32(len(data.b)), 8)))
		return off
	}

	layouts := make([]cmdLayout, len(b.cmds))
	for i, c := range b.cmds {
		l := &layouts[i]
		switch c.kind {
		case kindSegment:
			for _, s := range c.sections {
				var sl sectLayout
				if len(s.Data) > 0 {
					sl.offset = place(s.Data)
				}
				if len(s.Relocs) > 0 {
					rw := &writer{bo: b.byteOrder()}
					for _, r := range s.Relocs {
						rw.u32(r.W0)
						rw.u32(r.W1)
					}
					sl.reloff = place(rw.b)
				}
				sl.nreloc = uint32(len(s.Relocs))
				if s.Nreloc != 0 {
					sl.nreloc = s.Nreloc
				}
				l.sects = append(l.sects, sl)
			}
		case kindSymtab:
			strtab := []byte{0}
			intern := func(s string) uint32 {
				if s == "" {
					return 0
				}
				off := uint32(len(strtab))
				strtab = append(append(strtab, s...), 0)
				return off
			}
			nw := &writer{bo: b.byteOrder()}
			for _, s := range c.symbols {
				strx := s.Strx
				if !s.RawStrx {
					strx = intern(s.Name)
				}
				value := s.Value
				if s.IndirectName != "" {
					value = uint64(intern(s.IndirectName))
				}
				nw.u32(strx)
				nw.u8(s.Type)
				nw.u8(s.Sect)
				nw.u16(s.Desc)
				nw.word(b.Is64, value)
			}
			l.symoff = place(nw.b)
			l.nsyms = uint32(len(c.symbols))
			l.strsize = uint32(len(strtab))
			l.stroff = place(strtab)
		case kindDysymtab:
			iw := &writer{bo: b.byteOrder()}
			for _, v := range c.indirect {
				iw.u32(v)
			}
			l.tableoff = place(iw.b)
			l.tablecount = uint32(len(c.indirect))
		case kindDice:
			dw := &writer{bo: b.byteOrder()}
			for _, d := range c.dice {
				dw.u32(d.Offset)
				dw.u16(d.Length)
				dw.u16(d.Kind)
			}
			l.tableoff = place(dw.b)
			l.tablecount = uint32(int32(len(dw.b)) + c.diceSizeDelta)
		}
	}

	w := &writer{bo: b.byteOrder()}
	magic, cpuSub := uint32(0xfeedface), uint32(3)
	if b.Is64 {
		magic = 0xfeedfacf
	}
	ncmds := uint32(len(b.cmds))
	if b.NCommands != 0 {
		ncmds = b.NCommands
	}
	w.u32(magic)
	w.u32(b.CPU)
	w.u32(cpuSub)
	w.u32(b.FileType)
	w.u32(ncmds)
	w.u32(uint32(int32(sizeofcmds) + b.SizeCommandsDelta))
	w.u32(b.Flags)
	if b.Is64 {
		w.u32(0)
	}

	for i, c := range b.cmds {
		start := len(w.b)
		size := b.cmdSize(c)
		l := layouts[i]
		switch c.kind {
		case kindSegment:
			b.writeSegment(w, c, l, size)
		case kindSymtab:
			w.u32(LC_SYMTAB)
			w.u32(size)
			w.u32(l.symoff)
			w.u32(l.nsyms)
			w.u32(l.stroff)
			w.u32(l.strsize)
		case kindDysymtab:
			w.u32(LC_DYSYMTAB)
			w.u32(size)
			for f := 0; f < 18; f++ {
				switch f {
				case 12:
					w.u32(l.tableoff)
				case 13:
					w.u32(l.tablecount)
				default:
					w.u32(0)
				}
			}
		case kindDylib:
			w.u32(c.cmd)
			w.u32(size)
			w.u32(24) // name offset
			w.u32(2)
			w.u32(0x10000)
			w.u32(0x10000)
			w.raw([]byte(c.path))
		case kindDice:
			w.u32(LC_DATA_IN_CODE)
			w.u32(size)
			w.u32(l.tableoff)
			w.u32(l.tablecount)
		case kindRaw:
			w.u32(c.cmd)
			w.u32(size)
			w.raw(c.payload)
		}
		end := start + int(size)
		w.padTo(end)
		w.b = w.b[:end]
	}

	w.padTo(int(dataStart))
	w.raw(data.b)
	return w.b
}

func (b *Builder) writeSegment(w *writer, c command, l cmdLayout, size uint32) {
	is64 := !c.seg32
	var vmaddr, vmsize uint64
	for i, s := range c.sections {
		if i == 0 {
			vmaddr = s.Addr
		}
		vmsize += sectionSize(s)
	}
	if is64 {
		w.u32(LC_SEGMENT_64)
	} else {
		w.u32(LC_SEGMENT)
	}
	w.u32(size)
	w.name(c.segName)
	w.word(is64, vmaddr)
	w.word(is64, vmsize)
	w.word(is64, 0) // fileoff
	w.word(is64, 0) // filesize
	w.u32(7)        // maxprot
	w.u32(5)        // initprot
	w.u32(uint32(len(c.sections)))
	w.u32(0)

	for i, s := range c.sections {
		sl := l.sects[i]
		if s.RawName != nil {
			w.raw(s.RawName[:])
		} else {
			w.name(s.Name)
		}
		seg := s.Seg
		if seg == "" {
			seg = c.segName
		}
		w.name(seg)
		w.word(is64, s.Addr)
		w.word(is64, sectionSize(s))
		w.u32(sl.offset)
		w.u32(s.Align)
		w.u32(sl.reloff)
		w.u32(sl.nreloc)
		w.u32(s.Flags)
		w.u32(0)
		w.u32(0)
		if is64 {
			w.u32(0)
		}
	}
}

func sectionSize(s Section) uint64 {
	if s.Size != 0 {
		return s.Size
	}
	return uint64(len(s.Data))
}
