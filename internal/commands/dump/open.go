// Package dump renders Mach-O objects for the machobj CLI.
package dump

import (
	"os"

	gomacho "github.com/blacktop/go-macho"
	"github.com/pkg/errors"

	"github.com/blacktop/machobj/internal/magic"
	"github.com/blacktop/machobj/pkg/macho"
	"github.com/blacktop/machobj/pkg/object"
)

// A Slice is one thin image of a file. Universal files yield one Slice per
// architecture.
type Slice struct {
	Path   string
	Offset uint64 // of the image within the file
	*macho.File
}

// Name is Path, qualified with the architecture for universal slices.
func (s Slice) Name(universal bool) string {
	if !universal {
		return s.Path
	}
	return s.Path + " (" + s.Arch().String() + ")"
}

// OpenSlices reads path and parses every thin image in it.
func OpenSlices(path string) ([]Slice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	if !magic.IsFat(data) {
		m, err := macho.NewFile(data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}
		return []Slice{{Path: path, File: m}}, nil
	}

	fat, err := gomacho.OpenFat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open universal file %s", path)
	}
	defer fat.Close()

	slices := make([]Slice, 0, len(fat.Arches))
	for _, arch := range fat.Arches {
		start := uint64(arch.Offset)
		end := start + uint64(arch.Size)
		if end > uint64(len(data)) {
			return nil, errors.Errorf("%s: %s slice extends past end of file", path, arch.CPU)
		}
		m, err := macho.NewFile(data[start:end])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s slice of %s", arch.CPU, path)
		}
		slices = append(slices, Slice{Path: path, Offset: start, File: m})
	}
	return slices, nil
}

// FilterArch keeps the slices built for arch. An empty arch keeps every
// slice.
func FilterArch(slices []Slice, arch string) ([]Slice, error) {
	if arch == "" {
		return slices, nil
	}
	want, ok := object.ParseArch(arch)
	if !ok {
		return nil, errors.Errorf("unknown architecture %q", arch)
	}
	var out []Slice
	for _, s := range slices {
		if s.Arch() == want {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(slices) > 0 {
		return nil, errors.Errorf("%s: no %s slice", slices[0].Path, want)
	}
	return out, nil
}
