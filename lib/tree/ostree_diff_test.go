package tree

import (
	randv2 "math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-dsa/xost/lib/kv"
	"github.com/x-dsa/xost/lib/seq"
)

// The tree is checked against the flat-array backend over a randomized
// operation mix: both implement the same contract, so every observable
// result must agree.
func TestOSTreeAgainstSortedArrayMap(t *testing.T) {
	tree := NewOSTree[uint64, uint64]()
	array := kv.NewSortedArrayMap[uint64, uint64]()

	const rounds = 4000
	for i := uint64(0); i < rounds; i++ {
		key := randv2.Uint64() % 512
		switch randv2.Uint32() % 6 {
		case 0, 1:
			treeErr := tree.Add(key, i)
			arrayErr := array.Add(key, i)
			require.Equal(t, arrayErr, treeErr)
		case 2:
			treeErr := tree.Update(key, i)
			arrayErr := array.Update(key, i)
			require.Equal(t, arrayErr, treeErr)
		case 3:
			treeEntry, treeErr := tree.Remove(key)
			arrayEntry, arrayErr := array.Remove(key)
			require.Equal(t, arrayErr, treeErr)
			require.Equal(t, arrayEntry, treeEntry)
		case 4:
			if tree.Len() == 0 {
				continue
			}
			pos := seq.FromStart(int64(randv2.Uint64() % uint64(tree.Len())))
			treeEntry, treeErr := tree.RemoveAt(pos)
			arrayEntry, arrayErr := array.RemoveAt(pos)
			require.Equal(t, arrayErr, treeErr)
			require.Equal(t, arrayEntry, treeEntry)
		case 5:
			treeVal, treeErr := tree.Get(key)
			arrayVal, arrayErr := array.Get(key)
			require.Equal(t, arrayErr, treeErr)
			require.Equal(t, arrayVal, treeVal)
		}
	}

	require.Equal(t, array.Len(), tree.Len())
	require.Equal(t, array.Keys(), tree.Keys())
	require.Equal(t, array.Values(), tree.Values())
	require.NoError(t, Validate[uint64, uint64](tree))

	// Rank queries agree across the whole key space.
	for probe := uint64(0); probe < 512; probe++ {
		treeRank, treeErr := tree.IndexOf(probe)
		arrayRank, arrayErr := array.IndexOf(probe)
		require.Equal(t, arrayErr, treeErr)
		require.Equal(t, arrayRank, treeRank)

		treeFloor, treeOK := tree.Floor(probe)
		arrayFloor, arrayOK := array.Floor(probe)
		require.Equal(t, arrayOK, treeOK)
		require.Equal(t, arrayFloor, treeFloor)

		treeCeiling, treeOK := tree.Ceiling(probe)
		arrayCeiling, arrayOK := array.Ceiling(probe)
		require.Equal(t, arrayOK, treeOK)
		require.Equal(t, arrayCeiling, treeCeiling)

		treeLower, treeOK := tree.Lower(probe)
		arrayLower, arrayOK := array.Lower(probe)
		require.Equal(t, arrayOK, treeOK)
		require.Equal(t, arrayLower, treeLower)

		treeHigher, treeOK := tree.Higher(probe)
		arrayHigher, arrayOK := array.Higher(probe)
		require.Equal(t, arrayOK, treeOK)
		require.Equal(t, arrayHigher, treeHigher)
	}

	for rank := int64(0); rank < tree.Len(); rank++ {
		treeEntry, treeErr := tree.At(seq.FromStart(rank))
		arrayEntry, arrayErr := array.At(seq.FromStart(rank))
		require.NoError(t, treeErr)
		require.NoError(t, arrayErr)
		require.Equal(t, arrayEntry, treeEntry)
	}
}
