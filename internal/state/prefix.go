package state

import (
	"bytes"

	corestore "cosmossdk.io/core/store"
)

// PrefixStore namespaces every key of a parent store under a fixed prefix.
type PrefixStore struct {
	parent corestore.KVStore
	prefix []byte
}

var _ corestore.KVStore = PrefixStore{}

func NewPrefixStore(parent corestore.KVStore, prefix []byte) PrefixStore {
	return PrefixStore{parent: parent, prefix: bytes.Clone(prefix)}
}

func (s PrefixStore) key(k []byte) []byte {
	out := make([]byte, 0, len(s.prefix)+len(k))
	out = append(out, s.prefix...)
	return append(out, k...)
}

func (s PrefixStore) Get(key []byte) ([]byte, error) { return s.parent.Get(s.key(key)) }

func (s PrefixStore) Has(key []byte) (bool, error) { return s.parent.Has(s.key(key)) }

func (s PrefixStore) Set(key, value []byte) error { return s.parent.Set(s.key(key), value) }

func (s PrefixStore) Delete(key []byte) error { return s.parent.Delete(s.key(key)) }

func (s PrefixStore) Iterator(start, end []byte) (corestore.Iterator, error) {
	return s.iterator(start, end, false)
}

func (s PrefixStore) ReverseIterator(start, end []byte) (corestore.Iterator, error) {
	return s.iterator(start, end, true)
}

func (s PrefixStore) iterator(start, end []byte, reverse bool) (corestore.Iterator, error) {
	pstart := s.key(start)
	var pend []byte
	if end == nil {
		pend = prefixEnd(s.prefix)
	} else {
		pend = s.key(end)
	}
	var (
		it  corestore.Iterator
		err error
	)
	if reverse {
		it, err = s.parent.ReverseIterator(pstart, pend)
	} else {
		it, err = s.parent.Iterator(pstart, pend)
	}
	if err != nil {
		return nil, err
	}
	return &prefixIterator{Iterator: it, prefix: s.prefix, start: start, end: end}, nil
}

type prefixIterator struct {
	corestore.Iterator
	prefix     []byte
	start, end []byte
}

func (it *prefixIterator) Domain() ([]byte, []byte) { return it.start, it.end }

func (it *prefixIterator) Key() []byte {
	return bytes.TrimPrefix(it.Iterator.Key(), it.prefix)
}
