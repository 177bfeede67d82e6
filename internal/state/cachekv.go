package state

import (
	"bytes"
	"fmt"
	"sort"

	corestore "cosmossdk.io/core/store"
)

type cacheEntry struct {
	value   []byte
	deleted bool
}

// Change is one buffered write, in key order when returned by Changes.
type Change struct {
	Key     []byte
	Value   []byte
	Deleted bool
}

// CacheKV buffers writes over a parent store. Nothing reaches the parent until
// Write; dropping the CacheKV discards every buffered write.
type CacheKV struct {
	parent  corestore.KVStore
	overlay map[string]cacheEntry
}

var _ corestore.KVStore = (*CacheKV)(nil)

func NewCacheKV(parent corestore.KVStore) *CacheKV {
	return &CacheKV{parent: parent, overlay: make(map[string]cacheEntry)}
}

func (c *CacheKV) Get(key []byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if e, ok := c.overlay[string(key)]; ok {
		if e.deleted {
			return nil, nil
		}
		return bytes.Clone(e.value), nil
	}
	return c.parent.Get(key)
}

func (c *CacheKV) Has(key []byte) (bool, error) {
	v, err := c.Get(key)
	return v != nil, err
}

func (c *CacheKV) Set(key, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("state: nil value for key %x", key)
	}
	c.overlay[string(key)] = cacheEntry{value: bytes.Clone(value)}
	return nil
}

func (c *CacheKV) Delete(key []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	c.overlay[string(key)] = cacheEntry{deleted: true}
	return nil
}

func (c *CacheKV) Iterator(start, end []byte) (corestore.Iterator, error) {
	return c.iterator(start, end, false)
}

func (c *CacheKV) ReverseIterator(start, end []byte) (corestore.Iterator, error) {
	return c.iterator(start, end, true)
}

func (c *CacheKV) iterator(start, end []byte, reverse bool) (corestore.Iterator, error) {
	merged := make(map[string][]byte)
	it, err := c.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	for ; it.Valid(); it.Next() {
		merged[string(it.Key())] = bytes.Clone(it.Value())
	}
	if err := it.Error(); err != nil {
		_ = it.Close()
		return nil, err
	}
	if err := it.Close(); err != nil {
		return nil, err
	}
	for k, e := range c.overlay {
		if !inRange([]byte(k), start, end) {
			continue
		}
		if e.deleted {
			delete(merged, k)
			continue
		}
		merged[k] = bytes.Clone(e.value)
	}
	pairs := make([]kvPair, 0, len(merged))
	for k, v := range merged {
		pairs = append(pairs, kvPair{key: []byte(k), value: v})
	}
	return newMemIterator(start, end, pairs, reverse), nil
}

// Changes lists buffered writes in key order.
func (c *CacheKV) Changes() []Change {
	keys := make([]string, 0, len(c.overlay))
	for k := range c.overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Change, 0, len(keys))
	for _, k := range keys {
		e := c.overlay[k]
		out = append(out, Change{Key: []byte(k), Value: e.value, Deleted: e.deleted})
	}
	return out
}

// Write flushes buffered writes into the parent in key order and resets the cache.
func (c *CacheKV) Write() error {
	for _, ch := range c.Changes() {
		var err error
		if ch.Deleted {
			err = c.parent.Delete(ch.Key)
		} else {
			err = c.parent.Set(ch.Key, ch.Value)
		}
		if err != nil {
			return err
		}
	}
	c.overlay = make(map[string]cacheEntry)
	return nil
}

func validateKey(key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("state: empty key")
	}
	return nil
}
