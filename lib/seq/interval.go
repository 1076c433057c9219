package seq

import "strings"

// Interval is a half-open [Start, End) slice of a sequence. Either bound
// may be counted from the end. An interval whose resolved bounds invert
// describes an empty extraction, not an error.
type Interval struct {
	Start Position
	End   Position
}

func NewInterval(start, end Position) Interval {
	return Interval{Start: start, End: end}
}

// All spans the whole sequence regardless of its current length.
func All() Interval {
	return Interval{End: FromEnd(0)}
}

// Resolve maps the interval to (offset, length) against a sequence of
// count elements. Bounds outside [0, count] fail with ErrSeqOutOfRange;
// inverted or zero-length bounds resolve to length 0.
func (ival Interval) Resolve(count int64) (offset int64, length int64, err error) {
	start, err := ival.Start.Resolve(count)
	if err != nil {
		return 0, 0, err
	}
	end, err := ival.End.Resolve(count)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return start, 0, nil
	}
	return start, end - start, nil
}

func (ival Interval) String() string {
	return ival.Start.String() + ".." + ival.End.String()
}

// ParseInterval accepts "a..b" where a and b are ParsePosition tokens and
// either side may be omitted: "2..", "..^1", "..".
func ParseInterval(s string) (Interval, error) {
	lhs, rhs, found := strings.Cut(s, "..")
	if !found {
		return Interval{}, ErrSeqInvalidDescriptor
	}
	ival := All()
	if lhs != "" {
		start, err := ParsePosition(lhs)
		if err != nil {
			return Interval{}, err
		}
		ival.Start = start
	}
	if rhs != "" {
		end, err := ParsePosition(rhs)
		if err != nil {
			return Interval{}, err
		}
		ival.End = end
	}
	return ival, nil
}
