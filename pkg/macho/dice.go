package macho

import (
	"fmt"

	"github.com/blacktop/machobj/pkg/object"
)

// DiceRef is a byte offset into the data-in-code table.
type DiceRef object.DataRef

type DiceKind uint16

const (
	DiceKindData           DiceKind = 0x0001
	DiceKindJumpTable8     DiceKind = 0x0002
	DiceKindJumpTable16    DiceKind = 0x0003
	DiceKindJumpTable32    DiceKind = 0x0004
	DiceKindAbsJumpTable32 DiceKind = 0x0005
)

var diceKindStrings = []intName{
	{uint32(DiceKindData), "DATA"},
	{uint32(DiceKindJumpTable8), "JUMP_TABLE8"},
	{uint32(DiceKindJumpTable16), "JUMP_TABLE16"},
	{uint32(DiceKindJumpTable32), "JUMP_TABLE32"},
	{uint32(DiceKindAbsJumpTable32), "ABS_JUMP_TABLE32"},
}

func (k DiceKind) String() string { return stringName(uint32(k), diceKindStrings, false) }

// A DataInCodeEntry marks a range of non-instruction bytes inside a text
// section. Offset is a file offset.
type DataInCodeEntry struct {
	Offset uint32
	Length uint16
	Kind   DiceKind
}

func (e DataInCodeEntry) String() string {
	return fmt.Sprintf("%#08x %4d %s", e.Offset, e.Length, e.Kind)
}

func (f *File) diceBounds() (begin, end uint64) {
	if f.dice == nil {
		return 0, 0
	}
	begin = uint64(f.dice.Dataoff)
	return begin, begin + uint64(f.dice.Datasize)
}

// DiceBegin and DiceEnd bracket the data-in-code table. Both are zero when
// the image has no LC_DATA_IN_CODE command.
func (f *File) DiceBegin() DiceRef {
	begin, _ := f.diceBounds()
	return DiceRef{A: begin}
}

func (f *File) DiceEnd() DiceRef {
	_, end := f.diceBounds()
	return DiceRef{A: end}
}

func (f *File) NextDice(d DiceRef) DiceRef { return DiceRef{A: d.A + diceSize} }

// DataInCode decodes the entry at d.
func (f *File) DataInCode(d DiceRef) (DataInCodeEntry, error) {
	var e DataInCodeEntry
	err := f.c.read(d.A, &e)
	return e, err
}

// DataInCodeEntries decodes the whole table.
func (f *File) DataInCodeEntries() ([]DataInCodeEntry, error) {
	var out []DataInCodeEntry
	for d, end := f.DiceBegin(), f.DiceEnd(); d != end; d = f.NextDice(d) {
		e, err := f.DataInCode(d)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
