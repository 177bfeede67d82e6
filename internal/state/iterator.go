package state

import (
	"bytes"
	"sort"

	corestore "cosmossdk.io/core/store"
)

type kvPair struct {
	key   []byte
	value []byte
}

// memIterator walks a materialized, sorted slice of pairs.
type memIterator struct {
	start, end []byte
	pairs      []kvPair
	pos        int
	closed     bool
}

var _ corestore.Iterator = (*memIterator)(nil)

func newMemIterator(start, end []byte, pairs []kvPair, reverse bool) *memIterator {
	sort.Slice(pairs, func(i, j int) bool {
		c := bytes.Compare(pairs[i].key, pairs[j].key)
		if reverse {
			return c > 0
		}
		return c < 0
	})
	return &memIterator{start: start, end: end, pairs: pairs}
}

func (it *memIterator) Domain() ([]byte, []byte) { return it.start, it.end }

func (it *memIterator) Valid() bool { return !it.closed && it.pos < len(it.pairs) }

func (it *memIterator) Next() {
	if !it.Valid() {
		panic("state: Next on invalid iterator")
	}
	it.pos++
}

func (it *memIterator) Key() []byte {
	if !it.Valid() {
		panic("state: Key on invalid iterator")
	}
	return it.pairs[it.pos].key
}

func (it *memIterator) Value() []byte {
	if !it.Valid() {
		panic("state: Value on invalid iterator")
	}
	return it.pairs[it.pos].value
}

func (it *memIterator) Error() error { return nil }

func (it *memIterator) Close() error {
	it.closed = true
	return nil
}

func inRange(key, start, end []byte) bool {
	if start != nil && bytes.Compare(key, start) < 0 {
		return false
	}
	if end != nil && bytes.Compare(key, end) >= 0 {
		return false
	}
	return true
}

// prefixEnd returns the exclusive upper bound of all keys starting with prefix, or
// nil when no such bound exists.
func prefixEnd(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	end := bytes.Clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
