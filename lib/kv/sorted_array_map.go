package kv

import (
	"reflect"
	"slices"
	"sort"

	"github.com/samber/lo"

	"github.com/x-dsa/xost/lib/infra"
	"github.com/x-dsa/xost/lib/seq"
)

// SortedArrayMap is the flat-array backend of the ordered-map contract:
// entries live in one sorted slice, lookups and rank queries are binary
// searches, mutations shift the tail. O(log n) reads, O(n) writes. It is
// the reference implementation the balanced-tree backend is checked
// against.
type SortedArrayMap[K infra.OrderedKey, V any] struct {
	entries []Entry[K, V]
	kcmp    infra.OrderedKeyComparator[K]
}

var (
	_ OrderedRankStorer[uint64, uint64] = (*SortedArrayMap[uint64, uint64])(nil)
)

type SortedArrayMapOpt[K infra.OrderedKey, V any] func(*SortedArrayMap[K, V])

func WithSortedArrayMapComparator[K infra.OrderedKey, V any](kcmp infra.OrderedKeyComparator[K]) SortedArrayMapOpt[K, V] {
	return func(m *SortedArrayMap[K, V]) {
		m.kcmp = kcmp
	}
}

func WithSortedArrayMapDesc[K infra.OrderedKey, V any]() SortedArrayMapOpt[K, V] {
	return func(m *SortedArrayMap[K, V]) {
		m.kcmp = infra.ReverseCompare[K]
	}
}

func NewSortedArrayMap[K infra.OrderedKey, V any](opts ...SortedArrayMapOpt[K, V]) *SortedArrayMap[K, V] {
	m := &SortedArrayMap[K, V]{
		kcmp: infra.OrderedCompare[K],
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// NewSortedArrayMapFromEntries bulk-loads by repeated Add, so a duplicate
// key in entries surfaces as ErrDuplicateKey.
func NewSortedArrayMapFromEntries[K infra.OrderedKey, V any](entries []Entry[K, V], opts ...SortedArrayMapOpt[K, V]) (*SortedArrayMap[K, V], error) {
	m := NewSortedArrayMap[K, V](opts...)
	for _, e := range entries {
		if err := m.Add(e.Key, e.Val); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// search returns the rank of key, or the rank it would be inserted at.
func (m *SortedArrayMap[K, V]) search(key K) (int, bool) {
	idx := sort.Search(len(m.entries), func(i int) bool {
		return m.kcmp(m.entries[i].Key, key) >= 0
	})
	return idx, idx < len(m.entries) && m.kcmp(m.entries[idx].Key, key) == 0
}

func (m *SortedArrayMap[K, V]) Len() int64 {
	return int64(len(m.entries))
}

func (m *SortedArrayMap[K, V]) Purge() {
	m.entries = nil
}

func (m *SortedArrayMap[K, V]) Contains(key K) bool {
	_, found := m.search(key)
	return found
}

func (m *SortedArrayMap[K, V]) ContainsPair(key K, val V, eq ValueEqualFunc[V]) bool {
	idx, found := m.search(key)
	if !found {
		return false
	}
	if eq == nil {
		return reflect.DeepEqual(m.entries[idx].Val, val)
	}
	return eq(m.entries[idx].Val, val)
}

func (m *SortedArrayMap[K, V]) Get(key K) (V, error) {
	idx, found := m.search(key)
	if !found {
		return *new(V), ErrKeyNotFound
	}
	return m.entries[idx].Val, nil
}

func (m *SortedArrayMap[K, V]) Add(key K, val V) error {
	idx, found := m.search(key)
	if found {
		return ErrDuplicateKey
	}
	m.entries = slices.Insert(m.entries, idx, Entry[K, V]{Key: key, Val: val})
	return nil
}

func (m *SortedArrayMap[K, V]) Update(key K, val V) error {
	idx, found := m.search(key)
	if !found {
		return ErrKeyNotFound
	}
	m.entries[idx].Val = val
	return nil
}

func (m *SortedArrayMap[K, V]) Remove(key K) (Entry[K, V], error) {
	idx, found := m.search(key)
	if !found {
		return Entry[K, V]{}, ErrKeyNotFound
	}
	e := m.entries[idx]
	m.entries = slices.Delete(m.entries, idx, idx+1)
	return e, nil
}

// RemoveMany removes every key or none: the whole batch is validated
// before the first removal, so a missing (or twice-listed) key leaves the
// map untouched.
func (m *SortedArrayMap[K, V]) RemoveMany(keys ...K) error {
	seen := make(map[K]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			return ErrKeyNotFound
		}
		seen[key] = struct{}{}
		if _, found := m.search(key); !found {
			return ErrKeyNotFound
		}
	}
	for _, key := range keys {
		idx, _ := m.search(key)
		m.entries = slices.Delete(m.entries, idx, idx+1)
	}
	return nil
}

func (m *SortedArrayMap[K, V]) IndexOf(key K) (int64, error) {
	idx, found := m.search(key)
	if !found {
		return 0, ErrKeyNotFound
	}
	return int64(idx), nil
}

func (m *SortedArrayMap[K, V]) At(pos seq.Position) (Entry[K, V], error) {
	offset, err := pos.Resolve(m.Len())
	if err != nil || offset == m.Len() {
		return Entry[K, V]{}, ErrOutOfRange
	}
	return m.entries[offset], nil
}

func (m *SortedArrayMap[K, V]) RemoveAt(pos seq.Position) (Entry[K, V], error) {
	offset, err := pos.Resolve(m.Len())
	if err != nil || offset == m.Len() {
		return Entry[K, V]{}, ErrOutOfRange
	}
	e := m.entries[offset]
	m.entries = slices.Delete(m.entries, int(offset), int(offset)+1)
	return e, nil
}

func (m *SortedArrayMap[K, V]) AtInterval(ival seq.Interval) (OrderedRankStorer[K, V], error) {
	offset, length, err := ival.Resolve(m.Len())
	if err != nil {
		return nil, ErrOutOfRange
	}
	sub := &SortedArrayMap[K, V]{
		entries: slices.Clone(m.entries[offset : offset+length]),
		kcmp:    m.kcmp,
	}
	return sub, nil
}

func (m *SortedArrayMap[K, V]) Floor(key K) (Entry[K, V], bool) {
	idx, ok := m.FloorIndex(key)
	if !ok {
		return Entry[K, V]{}, false
	}
	return m.entries[idx], true
}

func (m *SortedArrayMap[K, V]) Ceiling(key K) (Entry[K, V], bool) {
	idx, ok := m.CeilingIndex(key)
	if !ok {
		return Entry[K, V]{}, false
	}
	return m.entries[idx], true
}

func (m *SortedArrayMap[K, V]) Lower(key K) (Entry[K, V], bool) {
	idx, ok := m.LowerIndex(key)
	if !ok {
		return Entry[K, V]{}, false
	}
	return m.entries[idx], true
}

func (m *SortedArrayMap[K, V]) Higher(key K) (Entry[K, V], bool) {
	idx, ok := m.HigherIndex(key)
	if !ok {
		return Entry[K, V]{}, false
	}
	return m.entries[idx], true
}

func (m *SortedArrayMap[K, V]) FloorIndex(key K) (int64, bool) {
	idx, found := m.search(key)
	if found {
		return int64(idx), true
	}
	if idx == 0 {
		return 0, false
	}
	return int64(idx - 1), true
}

func (m *SortedArrayMap[K, V]) CeilingIndex(key K) (int64, bool) {
	idx, _ := m.search(key)
	if idx == len(m.entries) {
		return 0, false
	}
	return int64(idx), true
}

func (m *SortedArrayMap[K, V]) LowerIndex(key K) (int64, bool) {
	idx, _ := m.search(key)
	if idx == 0 {
		return 0, false
	}
	return int64(idx - 1), true
}

func (m *SortedArrayMap[K, V]) HigherIndex(key K) (int64, bool) {
	idx, found := m.search(key)
	if found {
		idx++
	}
	if idx >= len(m.entries) {
		return 0, false
	}
	return int64(idx), true
}

func (m *SortedArrayMap[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	for i, e := range m.entries {
		if !action(int64(i), e.Key, e.Val) {
			return
		}
	}
}

func (m *SortedArrayMap[K, V]) Keys() []K {
	return lo.Map(m.entries, func(e Entry[K, V], _ int) K { return e.Key })
}

func (m *SortedArrayMap[K, V]) Values() []V {
	return lo.Map(m.entries, func(e Entry[K, V], _ int) V { return e.Val })
}
