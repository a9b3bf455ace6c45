package macho

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/blacktop/machobj/internal/magic"
	"github.com/blacktop/machobj/pkg/object"
)

// targetCacheSize bounds the scattered relocation target cache.
const targetCacheSize = 512

// A File is a parsed thin Mach-O image. It is immutable once NewFile returns
// and safe for concurrent use.
type File struct {
	FileHeader

	c cursor

	loads     []LoadCommandInfo
	sections  []Section
	libraries []uint64 // dylib command offsets, in load order
	symtab    *SymtabCmd
	dysymtab  *DysymtabCmd
	dice      *LinkEditDataCmd

	libOnce  sync.Once
	libNames []string

	sizeOnce  sync.Once
	sizeIndex []symbolAddr

	targets *lru.Cache[uint32, string]
}

var _ object.File = (*File)(nil)

func init() {
	object.RegisterFormat("macho", func(data []byte) bool {
		_, ok := magic.Identify(data)
		return ok
	}, func(data []byte) (object.File, error) {
		f, err := NewFile(data)
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

// Open reads the named file and parses it with NewFile.
func Open(name string) (*File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	f, err := NewFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// NewFile parses the Mach-O image held in data. data is not copied and must
// not be modified while the File is in use. Either the whole header area and
// every table it references is well formed, or NewFile returns an error.
func NewFile(data []byte) (*File, error) {
	layout, ok := magic.Identify(data)
	if !ok {
		return nil, ErrUnrecognizedFormat
	}

	f := &File{c: cursor{data: data, is64: layout.Is64, bo: binary.BigEndian}}
	if layout.LittleEndian {
		f.c.bo = binary.LittleEndian
	}

	if err := f.c.read(0, &f.FileHeader); err != nil {
		return nil, err
	}
	hdrSize := uint64(fileHeaderSize32)
	if f.c.is64 {
		hdrSize = fileHeaderSize64
	}
	if !f.c.inBounds(hdrSize, uint64(f.SizeCommands)) {
		return nil, formatErr(hdrSize, "load commands extend past end of file", f.SizeCommands)
	}

	targets, err := lru.New[uint32, string](targetCacheSize)
	if err != nil {
		return nil, err
	}
	f.targets = targets

	if err := f.walk(hdrSize, hdrSize+uint64(f.SizeCommands)); err != nil {
		return nil, err
	}
	if err := f.checkTables(); err != nil {
		return nil, err
	}
	return f, nil
}

// walk visits every load command in [off, end).
func (f *File) walk(off, end uint64) error {
	for i := uint32(0); i < f.NCommands; i++ {
		if end-off < loadCmdHeaderSize {
			return formatErr(off, "command block too small", nil)
		}
		var lc LoadCommandInfo
		lc.Offset = off
		if err := f.c.read(off, &lc.LoadCmdHeader); err != nil {
			return err
		}
		if lc.Len < loadCmdHeaderSize {
			return formatErr(off, "invalid command size", lc.Len)
		}
		if uint64(lc.Len) > end-off {
			return formatErr(off, "command extends past load command area", lc.Len)
		}
		if err := f.classify(lc); err != nil {
			return err
		}
		f.loads = append(f.loads, lc)
		off = lc.Next()
	}
	if off != end {
		return formatErr(off, "load commands do not fill their declared size", end-off)
	}
	return nil
}

// readCmd decodes a command body of fixed size into v.
func (f *File) readCmd(lc LoadCommandInfo, size uint32, v any) error {
	if lc.Len < size {
		return formatErr(lc.Offset, fmt.Sprintf("%s command too small", lc.Cmd), lc.Len)
	}
	return f.c.read(lc.Offset, v)
}

func (f *File) classify(lc LoadCommandInfo) error {
	switch {
	case lc.Cmd == LoadCmdSegment:
		return f.addSegment32(lc)
	case lc.Cmd == LoadCmdSegment64:
		return f.addSegment64(lc)
	case lc.Cmd == LoadCmdSymtab:
		if f.symtab != nil {
			return formatErr(lc.Offset, "multiple symbol tables", nil)
		}
		var st SymtabCmd
		if err := f.readCmd(lc, symtabSize, &st); err != nil {
			return err
		}
		f.symtab = &st
	case lc.Cmd == LoadCmdDysymtab:
		if f.dysymtab != nil {
			return formatErr(lc.Offset, "multiple dynamic symbol tables", nil)
		}
		var dt DysymtabCmd
		if err := f.readCmd(lc, dysymtabSize, &dt); err != nil {
			return err
		}
		f.dysymtab = &dt
	case lc.Cmd == LoadCmdDataInCode:
		if f.dice != nil {
			return formatErr(lc.Offset, "multiple data-in-code tables", nil)
		}
		var led LinkEditDataCmd
		if err := f.readCmd(lc, linkEditSize, &led); err != nil {
			return err
		}
		f.dice = &led
	case lc.Cmd.IsDylibLoad():
		var dl DylibCmd
		if err := f.readCmd(lc, dylibSize, &dl); err != nil {
			return err
		}
		if dl.Name < dylibSize || dl.Name >= lc.Len {
			return formatErr(lc.Offset, "invalid dylib name offset", dl.Name)
		}
		f.libraries = append(f.libraries, lc.Offset)
	default:
		log.Debugf("skipping %s load command at %#x", lc.Cmd, lc.Offset)
	}
	return nil
}

func (f *File) addSegment32(lc LoadCommandInfo) error {
	var seg Segment32
	if err := f.readCmd(lc, segmentSize32, &seg); err != nil {
		return err
	}
	if uint64(lc.Len) < segmentSize32+uint64(seg.Nsect)*sectionSize32 {
		return formatErr(lc.Offset, "segment sections extend past command", seg.Nsect)
	}
	for i := uint64(0); i < uint64(seg.Nsect); i++ {
		off := lc.Offset + segmentSize32 + i*sectionSize32
		var sh Section32
		if err := f.c.read(off, &sh); err != nil {
			return err
		}
		f.sections = append(f.sections, sh.widen(off))
	}
	return nil
}

func (f *File) addSegment64(lc LoadCommandInfo) error {
	var seg Segment64
	if err := f.readCmd(lc, segmentSize64, &seg); err != nil {
		return err
	}
	if uint64(lc.Len) < segmentSize64+uint64(seg.Nsect)*sectionSize64 {
		return formatErr(lc.Offset, "segment sections extend past command", seg.Nsect)
	}
	for i := uint64(0); i < uint64(seg.Nsect); i++ {
		off := lc.Offset + segmentSize64 + i*sectionSize64
		var sh Section64
		if err := f.c.read(off, &sh); err != nil {
			return err
		}
		f.sections = append(f.sections, sh.widen(off))
	}
	return nil
}

// checkTables verifies that every table referenced from the load commands
// lies inside the image.
func (f *File) checkTables() error {
	if st := f.symtab; st != nil {
		if !f.c.inBounds(uint64(st.Symoff), uint64(st.Nsyms)*f.nlistSize()) {
			return formatErr(st.Symoff, "symbol table extends past end of file", st.Nsyms)
		}
		if !f.c.inBounds(uint64(st.Stroff), uint64(st.Strsize)) {
			return formatErr(st.Stroff, "string table extends past end of file", st.Strsize)
		}
	}
	if dt := f.dysymtab; dt != nil {
		if !f.c.inBounds(uint64(dt.Indirectsymoff), uint64(dt.Nindirectsyms)*4) {
			return formatErr(dt.Indirectsymoff, "indirect symbol table extends past end of file", dt.Nindirectsyms)
		}
	}
	for i := range f.sections {
		s := &f.sections[i]
		if !f.c.inBounds(uint64(s.Reloff), uint64(s.Nreloc)*relocationSize) {
			return formatErr(s.Reloff, "relocations extend past end of file", s.Name())
		}
	}
	if d := f.dice; d != nil {
		if d.Datasize%diceSize != 0 {
			return formatErr(d.Dataoff, "data-in-code size is not a multiple of the entry size", d.Datasize)
		}
		if !f.c.inBounds(uint64(d.Dataoff), uint64(d.Datasize)) {
			return formatErr(d.Dataoff, "data-in-code table extends past end of file", d.Datasize)
		}
	}
	return nil
}

func (f *File) nlistSize() uint64 {
	if f.c.is64 {
		return nlistSize64
	}
	return nlistSize32
}

// Is64Bit reports whether the image uses the 64-bit header and symbol layouts.
func (f *File) Is64Bit() bool { return f.c.is64 }

func (f *File) IsLittleEndian() bool { return f.c.bo == binary.LittleEndian }

func (f *File) ByteOrder() binary.ByteOrder { return f.c.bo }

// Data returns the image the File was parsed from.
func (f *File) Data() []byte { return f.c.data }

// LoadCommands returns every load command in file order.
func (f *File) LoadCommands() []LoadCommandInfo { return f.loads }

func (f *File) FileFormatName() string { return formatName(f.CPU, f.c.is64) }

func (f *File) Arch() object.Arch { return f.CPU.Arch() }

func (f *File) BytesInAddress() int {
	if f.c.is64 {
		return 8
	}
	return 4
}

// UUID returns the identifier stored in LC_UUID, if the image has one.
func (f *File) UUID() (uuid.UUID, bool) {
	for _, lc := range f.loads {
		if lc.Cmd != LoadCmdUUID || lc.Len < 24 {
			continue
		}
		id, err := uuid.FromBytes(f.c.slice(lc.Offset+8, 16))
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	}
	return uuid.Nil, false
}

// Symtab returns the symbol table command, or nil.
func (f *File) Symtab() *SymtabCmd { return f.symtab }

// Dysymtab returns the dynamic symbol table command, or nil.
func (f *File) Dysymtab() *DysymtabCmd { return f.dysymtab }

// IndirectSymbol returns entry i of the indirect symbol table.
func (f *File) IndirectSymbol(i uint32) (uint32, error) {
	dt := f.dysymtab
	if dt == nil {
		return 0, fmt.Errorf("macho: no dynamic symbol table")
	}
	if i >= dt.Nindirectsyms {
		return 0, fmt.Errorf("macho: indirect symbol %d out of range [0,%d)", i, dt.Nindirectsyms)
	}
	return f.c.uint32(uint64(dt.Indirectsymoff) + uint64(i)*4)
}
