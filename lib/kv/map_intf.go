package kv

import (
	"errors"

	"github.com/x-dsa/xost/lib/infra"
	"github.com/x-dsa/xost/lib/seq"
)

var (
	ErrDuplicateKey    = errors.New("[ordered-map] duplicate key")
	ErrKeyNotFound     = errors.New("[ordered-map] key not found")
	ErrOutOfRange      = errors.New("[ordered-map] position out of range")
	ErrInvalidInterval = errors.New("[ordered-map] invalid interval")
	ErrIterInvalid     = errors.New("[ordered-map] iteration continued past a removed element")
)

// Entry is one key/value pair of an ordered map.
type Entry[K infra.OrderedKey, V any] struct {
	Key K
	Val V
}

// ValueEqualFunc reports whether two values are equal. A nil func falls
// back to reflect.DeepEqual.
type ValueEqualFunc[V any] func(i, j V) bool

// OrderedStorer is the mutable sorted-map contract. Keys are unique and
// iteration is ascending under the store's fixed comparator. Failing
// mutations leave the store unchanged.
type OrderedStorer[K infra.OrderedKey, V any] interface {
	Len() int64
	Purge()
	Contains(key K) bool
	ContainsPair(key K, val V, eq ValueEqualFunc[V]) bool
	Get(key K) (V, error)
	Add(key K, val V) error
	Update(key K, val V) error
	Remove(key K) (Entry[K, V], error)
	RemoveMany(keys ...K) error
	Foreach(action func(idx int64, key K, val V) bool)
	Keys() []K
	Values() []V
}

// RankAccessor is the order-statistics side of the contract: rank and key
// resolve to each other in O(log n), positions and intervals are the seq
// descriptors resolved against the current Len.
type RankAccessor[K infra.OrderedKey, V any] interface {
	IndexOf(key K) (int64, error)
	At(pos seq.Position) (Entry[K, V], error)
	RemoveAt(pos seq.Position) (Entry[K, V], error)
	AtInterval(ival seq.Interval) (OrderedRankStorer[K, V], error)
	Floor(key K) (Entry[K, V], bool)
	Ceiling(key K) (Entry[K, V], bool)
	Lower(key K) (Entry[K, V], bool)
	Higher(key K) (Entry[K, V], bool)
	FloorIndex(key K) (int64, bool)
	CeilingIndex(key K) (int64, bool)
	LowerIndex(key K) (int64, bool)
	HigherIndex(key K) (int64, bool)
}

type OrderedRankStorer[K infra.OrderedKey, V any] interface {
	OrderedStorer[K, V]
	RankAccessor[K, V]
}
