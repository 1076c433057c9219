// Package seq carries the position/interval descriptor vocabulary shared
// by the ordered containers: an offset into a sequence counted either from
// the front or from the end, and a half-open pair of such offsets. A
// descriptor is resolved against the sequence's current length at use
// time, so the same descriptor stays meaningful while the sequence grows
// or shrinks.
package seq

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrSeqOutOfRange        = errors.New("[seq] resolved offset out of range")
	ErrSeqInvalidDescriptor = errors.New("[seq] invalid descriptor")
)

// Position is an offset into a sequence, counted from the front by
// default or from the end when built with FromEnd. The zero value is the
// front of the sequence.
type Position struct {
	offset  int64
	fromEnd bool
}

func FromStart(offset int64) Position {
	return Position{offset: offset}
}

func FromEnd(offset int64) Position {
	return Position{offset: offset, fromEnd: true}
}

func (pos Position) Offset() int64 {
	return pos.offset
}

func (pos Position) IsFromEnd() bool {
	return pos.fromEnd
}

// Resolve maps the position to an absolute offset for a sequence of count
// elements. The full closed range [0, count] is accepted so that interval
// end bounds may point one past the last element; element accessors must
// reject offset == count themselves.
func (pos Position) Resolve(count int64) (int64, error) {
	if pos.offset < 0 || count < 0 {
		return 0, ErrSeqOutOfRange
	}
	abs := pos.offset
	if pos.fromEnd {
		abs = count - pos.offset
	}
	if abs < 0 || abs > count {
		return 0, ErrSeqOutOfRange
	}
	return abs, nil
}

func (pos Position) String() string {
	if pos.fromEnd {
		return "^" + strconv.FormatInt(pos.offset, 10)
	}
	return strconv.FormatInt(pos.offset, 10)
}

// ParsePosition accepts "3" (from the front) or "^3" (from the end).
func ParsePosition(s string) (Position, error) {
	fromEnd := false
	if strings.HasPrefix(s, "^") {
		fromEnd = true
		s = s[1:]
	}
	offset, err := strconv.ParseInt(s, 10, 64)
	if err != nil || offset < 0 {
		return Position{}, ErrSeqInvalidDescriptor
	}
	return Position{offset: offset, fromEnd: fromEnd}, nil
}
