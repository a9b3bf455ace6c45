package dump

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/blacktop/machobj/internal/colors"
	"github.com/blacktop/machobj/internal/demangle"
	"github.com/blacktop/machobj/pkg/macho"
	"github.com/blacktop/machobj/pkg/object"
)

// Config selects what Text and Summarize include.
type Config struct {
	Header   bool
	Loads    bool
	Sections bool
	Symbols  bool
	Relocs   bool
	Libs     bool
	Dice     bool
	Demangle bool
}

var (
	colorTitle   = colors.Title().SprintFunc()
	colorHeading = colors.Heading().SprintFunc()
	colorField   = colors.Field().SprintFunc()
	colorAddr    = colors.Address().SprintfFunc()
	colorSection = colors.Section().SprintFunc()
	colorSymbol  = colors.Symbol().SprintFunc()
	colorKind    = colors.Kind().SprintFunc()
	colorLib     = colors.Library().SprintFunc()
	colorValue   = colors.Value().SprintFunc()
	colorHidden  = colors.Hidden().SprintFunc()
	colorWarn    = colors.Warning().SprintFunc()
	colorErr     = colors.Error().SprintFunc()
)

func (c *Config) symbolName(name string) string {
	if c.Demangle {
		return demangle.Do(name, false, false)
	}
	return name
}

// addr formats an address in the width of the image. The zero padding of
// %#0*x does not count the 0x prefix.
func addr(f *macho.File, v uint64) string {
	if v == object.UnknownAddressOrSize {
		return colorAddr("%*s", 2+2*f.BytesInAddress(), "-")
	}
	return colorAddr("%#0*x", 2*f.BytesInAddress(), v)
}

// Text writes the sections of s selected by conf.
func Text(w io.Writer, s Slice, universal bool, conf *Config) error {
	fmt.Fprintln(w, colorTitle(s.Name(universal)))
	if conf.Header {
		printHeader(w, s)
	}
	if conf.Loads {
		printLoads(w, s.File)
	}
	if conf.Sections {
		printSections(w, s.File)
	}
	if conf.Symbols {
		if err := printSymbols(w, s.File, conf); err != nil {
			return err
		}
	}
	if conf.Relocs {
		if err := printRelocs(w, s.File, conf); err != nil {
			return err
		}
	}
	if conf.Libs {
		if err := printLibs(w, s.File); err != nil {
			return err
		}
	}
	if conf.Dice {
		if err := printDice(w, s.File); err != nil {
			return err
		}
	}
	return nil
}

func printHeader(w io.Writer, s Slice) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", colorField("Format:"), s.FileFormatName())
	fmt.Fprintf(tw, "%s\t%s\n", colorField("Arch:"), s.Arch())
	fmt.Fprintf(tw, "%s\t%s\n", colorField("Type:"), s.Type)
	if s.Flags != 0 {
		fmt.Fprintf(tw, "%s\t%s\n", colorField("Flags:"), s.Flags)
	}
	fmt.Fprintf(tw, "%s\t%d (%s)\n", colorField("Commands:"), s.NCommands, humanize.Bytes(uint64(s.SizeCommands)))
	if s.Offset != 0 {
		fmt.Fprintf(tw, "%s\t%#x\n", colorField("Offset:"), s.Offset)
	}
	tw.Flush()
}

func printLoads(w io.Writer, f *macho.File) {
	fmt.Fprintln(w, colorHeading("Load Commands:"))
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for i, lc := range f.LoadCommands() {
		fmt.Fprintf(tw, "%03d:\t%s\t%s\t%d\n", i, colorAddr("%#08x", lc.Offset), lc.Cmd, lc.Len)
	}
	if id, ok := f.UUID(); ok {
		fmt.Fprintf(tw, "\t%s\t%s\n", colorField("UUID:"), id)
	}
	tw.Flush()
}

func sectionKind(f *macho.File, s object.SectionRef) string {
	var kinds []string
	if ok, _ := f.IsSectionText(s); ok {
		kinds = append(kinds, "TEXT")
	}
	if ok, _ := f.IsSectionData(s); ok {
		kinds = append(kinds, "DATA")
	}
	if ok, _ := f.IsSectionBSS(s); ok {
		kinds = append(kinds, "BSS")
	}
	return strings.Join(kinds, "|")
}

func printSections(w io.Writer, f *macho.File) {
	fmt.Fprintln(w, colorHeading("Sections:"))
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for s := range object.Sections(f) {
		sh := f.SectionHeader(s)
		align, _ := f.SectionAlignment(s)
		fmt.Fprintf(tw, "%3d:\t%s\t%s\t%s\t%s\talign=%d\t%s\n",
			s.A,
			colorSection(sh.SegName()+","+sh.Name()),
			addr(f, sh.Addr),
			addr(f, sh.Addr+sh.Size),
			humanize.Bytes(sh.Size),
			align,
			colorKind(sectionKind(f, s)),
		)
	}
	tw.Flush()
}

func sectionLabel(f *macho.File, s object.SectionRef) string {
	if s == f.SectionEnd() {
		return "-"
	}
	sh := f.SectionHeader(s)
	return sh.SegName() + "," + sh.Name()
}

func printSymbols(w io.Writer, f *macho.File, conf *Config) error {
	fmt.Fprintln(w, colorHeading("Symbols:"))
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for sym := range object.Symbols(f) {
		name, err := f.SymbolName(sym)
		if err != nil {
			fmt.Fprintf(tw, "%s\t%s\n", addr(f, sym.A), colorErr(err.Error()))
			continue
		}
		a, _ := f.SymbolAddress(sym)
		size, _ := f.SymbolSize(sym)
		typ, _ := f.SymbolType(sym)
		flags, _ := f.SymbolFlags(sym)
		sec, err := f.SymbolSection(sym)
		if err != nil {
			sec = f.SectionEnd()
		}
		sizeStr := "-"
		if size != object.UnknownAddressOrSize {
			sizeStr = fmt.Sprintf("%#x", size)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			addr(f, a),
			sizeStr,
			colorKind(typ),
			colorKind(flags),
			colorSection(sectionLabel(f, sec)),
			colorSymbol(conf.symbolName(name)),
		)
	}
	return tw.Flush()
}

func printRelocs(w io.Writer, f *macho.File, conf *Config) error {
	for s := range object.Sections(f) {
		if f.SectionRelocationBegin(s) == f.SectionRelocationEnd(s) {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", colorHeading("Relocations:"), colorSection(sectionLabel(f, s)))
		tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
		for r := range object.Relocations(f, s) {
			off, err := f.RelocationOffset(r)
			if err != nil {
				return err
			}
			typ, _ := f.RelocationTypeName(r)
			hidden, _ := f.RelocationHidden(r)
			val, err := f.RelocationValueString(r)
			if err != nil {
				val = colorWarn(err.Error())
			} else {
				val = colorValue(conf.symbolName(val))
			}
			if hidden {
				fmt.Fprintf(tw, "%#08x\t%s\t%s\n", off, colorHidden(typ), colorHidden("(pair)"))
				continue
			}
			fmt.Fprintf(tw, "%#08x\t%s\t%s\n", off, colorKind(typ), val)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func printLibs(w io.Writer, f *macho.File) error {
	fmt.Fprintln(w, colorHeading("Libraries:"))
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for l := range object.Libraries(f) {
		path, err := f.LibraryPath(l)
		if err != nil {
			return err
		}
		short, err := f.LibraryShortName(l)
		if err != nil {
			return err
		}
		dl, err := f.Dylib(l)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t(%s)\n", colorLib(short), path, colorKind(dl.Cmd), dl.CurrentVersion)
	}
	return tw.Flush()
}

func printDice(w io.Writer, f *macho.File) error {
	entries, err := f.DataInCodeEntries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	fmt.Fprintln(w, colorHeading("Data in Code:"))
	for _, e := range entries {
		fmt.Fprintln(w, e)
	}
	return nil
}
