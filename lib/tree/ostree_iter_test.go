package tree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/x-dsa/xost/lib/kv"
)

func TestIteratorAscending(t *testing.T) {
	tree := newScenarioTree(t)

	it := tree.Iter()
	collected := make([]kv.Entry[int64, int64], 0, tree.Len())
	for it.Next() {
		collected = append(collected, it.Entry())
	}
	require.NoError(t, it.Err())
	require.Equal(t, []kv.Entry[int64, int64]{
		{Key: 1, Val: 4}, {Key: 2, Val: 2}, {Key: 5, Val: 1}, {Key: 8, Val: 3},
	}, collected)

	// Exhausted, not invalidated; stays exhausted.
	require.False(t, it.Next())
	require.NoError(t, it.Err())
}

func TestIteratorEmptyTree(t *testing.T) {
	tree := NewOSTree[uint64, uint64]()
	it := tree.Iter()
	require.False(t, it.Next())
	require.NoError(t, it.Err())
}

func TestIteratorSeesConcurrentMutation(t *testing.T) {
	tree := NewOSTree[int64, int64]()
	for _, key := range []int64{10, 20, 30} {
		require.NoError(t, tree.Add(key, key))
	}

	it := tree.Iter()
	require.True(t, it.Next())
	require.Equal(t, int64(10), it.Key())

	// Not a snapshot: a key inserted ahead of the cursor is yielded.
	require.NoError(t, tree.Add(25, 25))
	seen := []int64{it.Key()}
	for it.Next() {
		seen = append(seen, it.Key())
	}
	require.NoError(t, it.Err())
	require.Equal(t, []int64{10, 20, 25, 30}, seen)
}

func TestIteratorInvalidatedByRemoval(t *testing.T) {
	tree := NewOSTree[int64, int64]()
	for _, key := range []int64{10, 20, 30, 40} {
		require.NoError(t, tree.Add(key, key))
	}

	it := tree.Iter()
	require.True(t, it.Next())
	require.Equal(t, int64(10), it.Key())

	// Detaching the currently-yielded node poisons the walk.
	_, err := tree.Remove(10)
	require.NoError(t, err)
	require.False(t, it.Next())
	require.ErrorIs(t, it.Err(), kv.ErrIterInvalid)

	// And it stays poisoned.
	require.False(t, it.Next())
	require.ErrorIs(t, it.Err(), kv.ErrIterInvalid)

	// A fresh iteration starts over from the minimum.
	it = tree.Iter()
	require.True(t, it.Next())
	require.Equal(t, int64(20), it.Key())
}

func TestIteratorTwoChildRemovalSwapsSuccessor(t *testing.T) {
	tree := NewOSTree[int64, int64]()
	for _, key := range []int64{10, 20, 30, 40} {
		require.NoError(t, tree.Add(key, key))
	}

	// Removing a two-child key swaps the successor's key/value into the
	// doomed slot and detaches the successor's node, so it is a cursor
	// parked on the successor that gets invalidated.
	it := tree.Iter()
	for it.Next() && it.Key() != 30 {
	}
	require.Equal(t, int64(30), it.Key())

	_, err := tree.Remove(20) // 20 holds two children here; succ is 30
	require.NoError(t, err)
	require.False(t, tree.Contains(20))
	require.True(t, tree.Contains(30))

	require.False(t, it.Next())
	require.ErrorIs(t, it.Err(), kv.ErrIterInvalid)
}

func TestIteratorSurvivesRemovalElsewhere(t *testing.T) {
	tree := NewOSTree[int64, int64]()
	for _, key := range []int64{10, 20, 30, 40, 50} {
		require.NoError(t, tree.Add(key, key))
	}

	it := tree.Iter()
	require.True(t, it.Next())
	require.True(t, it.Next())
	require.Equal(t, int64(20), it.Key())

	// Removing a leaf far from the cursor leaves the walk intact.
	_, err := tree.Remove(50)
	require.NoError(t, err)

	seen := make([]int64, 0, 2)
	for it.Next() {
		seen = append(seen, it.Key())
	}
	require.NoError(t, it.Err())
	require.Equal(t, []int64{30, 40}, seen)
}
