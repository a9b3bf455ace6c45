package object

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrUnknownFormat is returned by NewFile when no registered format
// recognises the data.
var ErrUnknownFormat = errors.New("object: unknown format")

// A format holds a format's name, how to recognise it and how to open it.
type format struct {
	name    string
	match   func(data []byte) bool
	newFile func(data []byte) (File, error)
}

var (
	formatsMu sync.RWMutex
	formats   []format
)

// RegisterFormat registers an object format for use by NewFile. Format
// packages call it from init. match receives the whole buffer and must not
// retain it.
func RegisterFormat(name string, match func(data []byte) bool, newFile func(data []byte) (File, error)) {
	formatsMu.Lock()
	defer formatsMu.Unlock()
	for _, f := range formats {
		if f.name == name {
			panic(fmt.Sprintf("object: format %q registered twice", name))
		}
	}
	formats = append(formats, format{name: name, match: match, newFile: newFile})
}

// Formats returns the registered format names in registration order.
func Formats() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, f.name)
	}
	return names
}

// NewFile opens data with the first registered format that recognises it.
func NewFile(data []byte) (File, error) {
	formatsMu.RLock()
	fs := formats
	formatsMu.RUnlock()
	for _, f := range fs {
		if f.match(data) {
			return f.newFile(data)
		}
	}
	return nil, ErrUnknownFormat
}

// Open reads the named file and passes its contents to NewFile.
func Open(name string) (File, error) {
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
