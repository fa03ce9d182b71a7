// Package bitfield provides dense, bit-addressable storage. No other
// package in this module imports it; bitstream keeps frame words in a map
// of uint32 values and tilemap reads mux bits through that map.
package bitfield

import (
	"fmt"
	"log"

	"gopkg.in/mgo.v2/bson"
)

// BitField is a packed array of bits addressed by a flat integer position.
type BitField struct {
	Fields []byte
}

// New allocates a BitField able to address positions [0, size).
func New(size int) *BitField {
	if size == 0 {
		panic("seeking a zero-size bitfield")
	}

	numbytes := (size-1)/8 + 1

	return &BitField{
		Fields: make([]byte, numbytes),
	}
}

func (f BitField) String() string {
	return fmt.Sprintf("%x", f.Fields)
}

func (f BitField) length() int {
	return len(f.Fields)
}

func (f BitField) locate(pos int) (byt int, bit uint8) {
	byt = pos >> 3
	bit = uint8(pos & 0x7)
	return
}

func posof(byt int, bit uint8) int {
	return (byt << 3) | int(bit)
}

// Set turns on the bits at the given positions.
func (f *BitField) Set(positions ...int) {
	for _, pos := range positions {
		byt, bit := f.locate(pos)
		if byt > f.length()-1 {
			log.Panicf("BitField can set max pos %d. Attempting %d.",
				f.length()*8-1, pos)
		}
		f.Fields[byt] |= 1 << bit
	}
}

// SetBitsOf ORs every bit of b into f. Both fields must have equal length.
func (f *BitField) SetBitsOf(b BitField) {
	if f.length() != b.length() {
		log.Panic("SetBitsOf: mismatch in lengths")
	}
	for i := range f.Fields {
		f.Fields[i] |= b.Fields[i]
	}
}

// Unset turns off the bits at the given positions.
func (f *BitField) Unset(positions ...int) {
	for _, pos := range positions {
		byt, bit := f.locate(pos)
		if byt > f.length()-1 {
			log.Panicf("BitField can unset max pos %d. Attempting %d.",
				f.length()*8-1, pos)
		}
		f.Fields[byt] &= ^(1 << bit)
	}
}

// Test reports every position currently set, ascending.
func (f BitField) Test() (setpositions []int) {
	for i := range f.Fields {
		for j := uint8(0); j < 8; j++ {
			mask := uint8(1) << j
			if f.Fields[i]&mask != 0 {
				setpositions = append(setpositions, posof(i, j))
			}
		}
	}
	return
}

// IsSet reports whether a single position is currently set.
func (f BitField) IsSet(pos int) bool {
	byt, bit := f.locate(pos)
	if byt > f.length()-1 {
		return false
	}
	return f.Fields[byt]&(1<<bit) != 0
}

// AllUnset reports whether every bit in the field is 0.
func (f BitField) AllUnset() bool {
	var acc byte
	for _, b := range f.Fields {
		acc |= b
	}
	return acc == 0
}

// GetBSON makes BitField implement bson.Getter, storing it as a hex string.
func (f BitField) GetBSON() (interface{}, error) {
	return f.String(), nil
}

// SetBSON makes BitField implement bson.Setter, the inverse of GetBSON.
func (f *BitField) SetBSON(raw bson.Raw) error {
	var str string
	err := raw.Unmarshal(&str)
	if err != nil {
		return err
	}
	_, err = fmt.Sscanf(str, "%x", &f.Fields)
	return err
}
