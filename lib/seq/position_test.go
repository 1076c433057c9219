package seq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionResolve(t *testing.T) {
	testcases := []struct {
		name     string
		pos      Position
		count    int64
		expected int64
		err      error
	}{
		{"front zero", FromStart(0), 4, 0, nil},
		{"front mid", FromStart(2), 4, 2, nil},
		{"front at count", FromStart(4), 4, 4, nil},
		{"front past count", FromStart(5), 4, 0, ErrSeqOutOfRange},
		{"end zero", FromEnd(0), 4, 4, nil},
		{"end mid", FromEnd(1), 4, 3, nil},
		{"end whole", FromEnd(4), 4, 0, nil},
		{"end past front", FromEnd(5), 4, 0, ErrSeqOutOfRange},
		{"empty seq front", FromStart(0), 0, 0, nil},
		{"empty seq end", FromEnd(0), 0, 0, nil},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			abs, err := tc.pos.Resolve(tc.count)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, abs)
		})
	}
}

func TestParsePosition(t *testing.T) {
	pos, err := ParsePosition("3")
	require.NoError(t, err)
	require.Equal(t, int64(3), pos.Offset())
	require.False(t, pos.IsFromEnd())

	pos, err = ParsePosition("^2")
	require.NoError(t, err)
	require.Equal(t, int64(2), pos.Offset())
	require.True(t, pos.IsFromEnd())
	require.Equal(t, "^2", pos.String())

	_, err = ParsePosition("")
	require.ErrorIs(t, err, ErrSeqInvalidDescriptor)
	_, err = ParsePosition("-1")
	require.ErrorIs(t, err, ErrSeqInvalidDescriptor)
	_, err = ParsePosition("^x")
	require.ErrorIs(t, err, ErrSeqInvalidDescriptor)
}

func TestIntervalResolve(t *testing.T) {
	offset, length, err := NewInterval(FromStart(1), FromStart(3)).Resolve(5)
	require.NoError(t, err)
	require.Equal(t, int64(1), offset)
	require.Equal(t, int64(2), length)

	offset, length, err = NewInterval(FromStart(0), FromEnd(1)).Resolve(5)
	require.NoError(t, err)
	require.Equal(t, int64(0), offset)
	require.Equal(t, int64(4), length)

	// Inverted bounds collapse to an empty extraction.
	_, length, err = NewInterval(FromStart(4), FromStart(1)).Resolve(5)
	require.NoError(t, err)
	require.Equal(t, int64(0), length)

	_, _, err = NewInterval(FromStart(0), FromStart(6)).Resolve(5)
	require.ErrorIs(t, err, ErrSeqOutOfRange)

	offset, length, err = All().Resolve(5)
	require.NoError(t, err)
	require.Equal(t, int64(0), offset)
	require.Equal(t, int64(5), length)
}

func TestParseInterval(t *testing.T) {
	ival, err := ParseInterval("2..^1")
	require.NoError(t, err)
	offset, length, resolveErr := ival.Resolve(6)
	require.NoError(t, resolveErr)
	require.Equal(t, int64(2), offset)
	require.Equal(t, int64(3), length)

	ival, err = ParseInterval("..")
	require.NoError(t, err)
	_, length, resolveErr = ival.Resolve(6)
	require.NoError(t, resolveErr)
	require.Equal(t, int64(6), length)

	_, err = ParseInterval("2")
	require.ErrorIs(t, err, ErrSeqInvalidDescriptor)
	_, err = ParseInterval("a..b")
	require.ErrorIs(t, err, ErrSeqInvalidDescriptor)
}
