package macho

import (
	"strings"

	"github.com/blacktop/machobj/pkg/object"
)

// LibraryCount is the number of dynamic-library load commands.
func (f *File) LibraryCount() int { return len(f.libraries) }

func (f *File) LibraryBegin() object.LibraryRef {
	if len(f.libraries) == 0 {
		return f.LibraryEnd()
	}
	return object.LibraryRef{A: f.libraries[0]}
}

func (f *File) LibraryEnd() object.LibraryRef {
	return object.LibraryRef{B: uint64(len(f.libraries))}
}

func (f *File) NextLibrary(l object.LibraryRef) object.LibraryRef {
	i := l.B + 1
	if i >= uint64(len(f.libraries)) {
		return f.LibraryEnd()
	}
	return object.LibraryRef{A: f.libraries[i], B: i}
}

// Dylib decodes the load command behind l.
func (f *File) Dylib(l object.LibraryRef) (DylibCmd, error) {
	var dl DylibCmd
	err := f.c.read(l.A, &dl)
	return dl, err
}

// LibraryPath is the install name recorded in the load command.
func (f *File) LibraryPath(l object.LibraryRef) (string, error) {
	dl, err := f.Dylib(l)
	if err != nil {
		return "", err
	}
	return f.c.cstring(l.A+uint64(dl.Name), l.A+uint64(dl.Len)), nil
}

// LibraryShortName returns the guessed short name of l, or its full path when
// the path does not follow a known layout. Names are computed once per File.
func (f *File) LibraryShortName(l object.LibraryRef) (string, error) {
	f.libOnce.Do(func() {
		f.libNames = make([]string, len(f.libraries))
		for i, off := range f.libraries {
			path, err := f.LibraryPath(object.LibraryRef{A: off, B: uint64(i)})
			if err != nil {
				continue
			}
			if short, ok := GuessLibraryShortName(path); ok {
				f.libNames[i] = short.Name
			} else {
				f.libNames[i] = path
			}
		}
	})
	if l.B >= uint64(len(f.libNames)) {
		return "", formatErr(l.A, "library index out of range", l.B)
	}
	return f.libNames[l.B], nil
}

// LibraryShortName is the result of GuessLibraryShortName.
type LibraryShortName struct {
	Name        string
	Suffix      string // e.g. "_debug" or "_profile"
	IsFramework bool
}

// substr clamps start and end to s.
func substr(s string, start, end int) string {
	start = min(start, len(s))
	end = min(max(start, end), len(s))
	return s[start:end]
}

// lastSlashBefore returns the index of the last '/' in s[:i], or -1.
func lastSlashBefore(s string, i int) int {
	return strings.LastIndexByte(s[:min(i, len(s))], '/')
}

const dotFramework = ".framework/"

// GuessLibraryShortName derives a short name from an install name. It
// recognises
//
//	Foo.framework/Foo
//	Foo.framework/Versions/A/Foo
//	libFoo.dylib, libFoo.A.dylib, libFoo_suffix.dylib, libFoo_suffix.A.dylib
//	Foo.qtx, Foo.A.qtx
//
// and reports false for anything else.
func GuessLibraryShortName(name string) (LibraryShortName, bool) {
	var out LibraryShortName

	if a := strings.LastIndexByte(name, '/'); a > 0 {
		foo := name[a+1:]
		if idx := strings.LastIndexByte(foo, '_'); idx != -1 && len(foo) >= 2 {
			out.Suffix = foo[idx:]
			foo = foo[:idx]
		}

		isFramework := func(start int) bool {
			return substr(name, start, start+len(foo)) == foo &&
				substr(name, start+len(foo), start+len(foo)+len(dotFramework)) == dotFramework
		}

		// Foo.framework/Foo
		b := lastSlashBefore(name, a)
		if isFramework(b + 1) {
			out.Name, out.IsFramework = foo, true
			return out, true
		}

		// Foo.framework/Versions/A/Foo
		if b != -1 {
			if c := lastSlashBefore(name, b); c > 0 && strings.HasPrefix(name[c+1:], "Versions/") {
				d := lastSlashBefore(name, c)
				if isFramework(d + 1) {
					out.Name, out.IsFramework = foo, true
					return out, true
				}
			}
		}
	}

	out = LibraryShortName{}
	a := strings.LastIndexByte(name, '.')
	if a <= 0 {
		return out, false
	}
	switch name[a:] {
	case ".dylib":
		// version letter, as in Foo.A.dylib
		if a >= 3 && name[a-2] == '.' {
			a -= 2
		}
		b := lastSlashBefore(name, a) + 1
		var lib string
		// suffix after an underbar, as in Foo_profile.A.dylib
		if idx := strings.IndexByte(name[b:], '_'); idx > 0 {
			lib = name[b : b+idx]
			out.Suffix = substr(name, b+idx, a)
		} else {
			lib = substr(name, b, a)
		}
		// misnamed libraries like libATS.A_profile.dylib
		lib = trimVersionLetter(lib)
		if len(lib) > len("lib") {
			lib = strings.TrimPrefix(lib, "lib")
		}
		out.Name = lib
	case ".qtx":
		out.Name = trimVersionLetter(name[lastSlashBefore(name, a)+1 : a])
	default:
		return out, false
	}
	return out, out.Name != ""
}

// trimVersionLetter drops a trailing ".X".
func trimVersionLetter(lib string) string {
	if len(lib) >= 3 && lib[len(lib)-2] == '.' {
		return lib[:len(lib)-2]
	}
	return lib
}
