package dump

import (
	"cmp"
	"encoding/json"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/blacktop/machobj/internal/colors"
	"github.com/blacktop/machobj/pkg/macho"
	"github.com/blacktop/machobj/pkg/object"
)

type SectionSummary struct {
	Segment string   `json:"segment"`
	Name    string   `json:"name"`
	Addr    uint64   `json:"addr"`
	Size    uint64   `json:"size"`
	Align   uint64   `json:"align"`
	Kinds   []string `json:"kinds,omitempty"`
}

type SymbolSummary struct {
	Name    string `json:"name"`
	Addr    uint64 `json:"addr"`
	Size    uint64 `json:"size"`
	Type    string `json:"type"`
	Flags   string `json:"flags"`
	Section string `json:"section,omitempty"`
}

type RelocSummary struct {
	Section string `json:"section"`
	Offset  uint64 `json:"offset"`
	Type    string `json:"type"`
	Value   string `json:"value,omitempty"`
	Hidden  bool   `json:"hidden,omitempty"`
	Error   string `json:"error,omitempty"`
}

type LibrarySummary struct {
	Path      string `json:"path"`
	ShortName string `json:"short_name"`
	Command   string `json:"command"`
}

// Summary is the JSON form of one slice.
type Summary struct {
	Path         string                  `json:"path"`
	Offset       uint64                  `json:"offset,omitempty"`
	Format       string                  `json:"format"`
	Arch         string                  `json:"arch"`
	Type         string                  `json:"type"`
	Flags        []string                `json:"flags,omitempty"`
	UUID         string                  `json:"uuid,omitempty"`
	LoadCommands int                     `json:"load_commands"`
	Sections     []SectionSummary        `json:"sections,omitempty"`
	Symbols      []SymbolSummary         `json:"symbols,omitempty"`
	Relocations  []RelocSummary          `json:"relocations,omitempty"`
	Libraries    []LibrarySummary        `json:"libraries,omitempty"`
	DataInCode   []macho.DataInCodeEntry `json:"data_in_code,omitempty"`
}

// Summarize collects the parts of s selected by conf. Symbols are ordered by
// address, then name.
func Summarize(s Slice, conf *Config) (*Summary, error) {
	f := s.File
	sum := &Summary{
		Path:         s.Path,
		Offset:       s.Offset,
		Format:       f.FileFormatName(),
		Arch:         f.Arch().String(),
		Type:         f.Type.String(),
		Flags:        f.Flags.List(),
		LoadCommands: len(f.LoadCommands()),
	}
	if id, ok := f.UUID(); ok {
		sum.UUID = id.String()
	}

	if conf.Sections {
		for sec := range object.Sections(f) {
			sh := f.SectionHeader(sec)
			align, _ := f.SectionAlignment(sec)
			ss := SectionSummary{Segment: sh.SegName(), Name: sh.Name(), Addr: sh.Addr, Size: sh.Size, Align: align}
			if kind := sectionKind(f, sec); kind != "" {
				ss.Kinds = strings.Split(kind, "|")
			}
			sum.Sections = append(sum.Sections, ss)
		}
	}

	if conf.Symbols {
		for sym := range object.Symbols(f) {
			name, err := f.SymbolName(sym)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read symbol at %#x", sym.A)
			}
			var ss SymbolSummary
			ss.Name = conf.symbolName(name)
			ss.Addr, _ = f.SymbolAddress(sym)
			ss.Size, _ = f.SymbolSize(sym)
			typ, _ := f.SymbolType(sym)
			ss.Type = typ.String()
			flags, _ := f.SymbolFlags(sym)
			ss.Flags = flags.String()
			if sec, err := f.SymbolSection(sym); err == nil && sec != f.SectionEnd() {
				ss.Section = sectionLabel(f, sec)
			}
			sum.Symbols = append(sum.Symbols, ss)
		}
		slices.SortStableFunc(sum.Symbols, func(a, b SymbolSummary) int {
			if c := cmp.Compare(a.Addr, b.Addr); c != 0 {
				return c
			}
			return cmp.Compare(a.Name, b.Name)
		})
	}

	if conf.Relocs {
		for sec := range object.Sections(f) {
			for r := range object.Relocations(f, sec) {
				rs := RelocSummary{Section: sectionLabel(f, sec)}
				var err error
				if rs.Offset, err = f.RelocationOffset(r); err != nil {
					return nil, errors.Wrap(err, "failed to read relocation")
				}
				rs.Type, _ = f.RelocationTypeName(r)
				rs.Hidden, _ = f.RelocationHidden(r)
				if val, err := f.RelocationValueString(r); err != nil {
					rs.Error = err.Error()
				} else {
					rs.Value = conf.symbolName(val)
				}
				sum.Relocations = append(sum.Relocations, rs)
			}
		}
	}

	if conf.Libs {
		for l := range object.Libraries(f) {
			var ls LibrarySummary
			var err error
			if ls.Path, err = f.LibraryPath(l); err != nil {
				return nil, errors.Wrap(err, "failed to read library path")
			}
			ls.ShortName, _ = f.LibraryShortName(l)
			if dl, err := f.Dylib(l); err == nil {
				ls.Command = dl.Cmd.String()
			}
			sum.Libraries = append(sum.Libraries, ls)
		}
	}

	if conf.Dice {
		entries, err := f.DataInCodeEntries()
		if err != nil {
			return nil, errors.Wrap(err, "failed to read data-in-code entries")
		}
		sum.DataInCode = entries
	}

	return sum, nil
}

// JSON writes summaries as an indented JSON array, highlighted when colors
// are on.
func JSON(w io.Writer, sums []*Summary) error {
	dat, err := json.MarshalIndent(sums, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal summary")
	}
	if colors.Active() {
		if err := quick.Highlight(w, string(dat)+"\n", "json", "terminal256", "nord"); err == nil {
			return nil
		}
	}
	_, err = w.Write(append(dat, '\n'))
	return err
}
