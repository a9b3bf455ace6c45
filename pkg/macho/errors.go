package macho

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedFormat is returned when the buffer does not start with
	// one of the four thin Mach-O magic numbers.
	ErrUnrecognizedFormat = errors.New("macho: unrecognized file format")
	// ErrParseFailed matches every *FormatError via errors.Is.
	ErrParseFailed = errors.New("macho: parse failed")
)

// FormatError is returned by some operations if the data does
// not have the correct format for an object file.
type FormatError struct {
	Off int64
	Msg string
	Val any
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Val != nil {
		msg += fmt.Sprintf(" '%v'", e.Val)
	}
	msg += fmt.Sprintf(" in record at byte %#x", e.Off)
	return msg
}

func (e *FormatError) Is(target error) bool { return target == ErrParseFailed }

func formatErr[T ~uint32 | ~uint64 | ~int | ~int64](off T, msg string, val any) error {
	return &FormatError{Off: int64(off), Msg: msg, Val: val}
}
