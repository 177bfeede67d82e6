package state

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"

	corestore "cosmossdk.io/core/store"
	dbm "github.com/cosmos/cosmos-db"
)

var (
	metaHeightKey  = []byte("meta/height")
	metaAppHashKey = []byte("meta/apphash")
)

const appHashDomain = "wager/apphash/v1"

// Store is the committed application state backed by cosmos-db.
type Store struct {
	db      dbm.DB
	height  int64
	appHash []byte
}

// Open loads (or creates) the state database under dir.
func Open(dir string, backend dbm.BackendType) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir state dir: %w", err)
	}
	db, err := dbm.NewDB("state", backend, dir)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	return load(db)
}

// NewMemStore returns an empty, non-persistent Store.
func NewMemStore() *Store {
	s, err := load(dbm.NewMemDB())
	if err != nil {
		// memdb reads cannot fail.
		panic(err)
	}
	return s
}

func load(db dbm.DB) (*Store, error) {
	s := &Store{db: db}
	hb, err := db.Get(metaHeightKey)
	if err != nil {
		return nil, fmt.Errorf("read height: %w", err)
	}
	if len(hb) == 8 {
		s.height = int64(binary.BigEndian.Uint64(hb))
	}
	ah, err := db.Get(metaAppHashKey)
	if err != nil {
		return nil, fmt.Errorf("read app hash: %w", err)
	}
	s.appHash = ah
	return s, nil
}

func (s *Store) Height() int64 { return s.height }

// AppHash is the hash committed at Height, or nil before the first commit.
func (s *Store) AppHash() []byte { return s.appHash }

// KVStore exposes the committed state as a corestore.KVStore. Writes through it
// bypass the app hash; the app only writes through Commit.
func (s *Store) KVStore() corestore.KVStore { return dbKV{db: s.db} }

// NewBlockCache returns a cache over the committed state for one block.
func (s *Store) NewBlockCache() *CacheKV { return NewCacheKV(s.KVStore()) }

// NextAppHash computes the app hash that committing block at height would produce,
// without writing anything.
func (s *Store) NextAppHash(block *CacheKV, height int64) []byte {
	return chainHash(s.appHash, height, block.Changes())
}

// Commit atomically persists the block's writes together with the new height and
// app hash.
func (s *Store) Commit(block *CacheKV, height int64) ([]byte, error) {
	changes := block.Changes()
	hash := chainHash(s.appHash, height, changes)

	batch := s.db.NewBatch()
	defer batch.Close()
	for _, ch := range changes {
		var err error
		if ch.Deleted {
			err = batch.Delete(ch.Key)
		} else {
			err = batch.Set(ch.Key, ch.Value)
		}
		if err != nil {
			return nil, err
		}
	}
	hb := make([]byte, 8)
	binary.BigEndian.PutUint64(hb, uint64(height))
	if err := batch.Set(metaHeightKey, hb); err != nil {
		return nil, err
	}
	if err := batch.Set(metaAppHashKey, hash); err != nil {
		return nil, err
	}
	if err := batch.WriteSync(); err != nil {
		return nil, fmt.Errorf("commit height %d: %w", height, err)
	}
	s.height = height
	s.appHash = hash
	return hash, nil
}

func (s *Store) Close() error { return s.db.Close() }

// chainHash = sha256(domain || prev || height || for each change: len(k) k del len(v) v).
func chainHash(prev []byte, height int64, changes []Change) []byte {
	h := sha256.New()
	var lenBuf [8]byte
	writePart := func(b []byte) {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
		h.Write(lenBuf[:])
		h.Write(b)
	}
	writePart([]byte(appHashDomain))
	writePart(prev)
	binary.BigEndian.PutUint64(lenBuf[:], uint64(height))
	h.Write(lenBuf[:])
	for _, ch := range changes {
		writePart(ch.Key)
		if ch.Deleted {
			h.Write([]byte{1})
			continue
		}
		h.Write([]byte{0})
		writePart(ch.Value)
	}
	return h.Sum(nil)
}

// dbKV adapts a cosmos-db handle to corestore.KVStore.
type dbKV struct {
	db dbm.DB
}

func (d dbKV) Get(key []byte) ([]byte, error) { return d.db.Get(key) }

func (d dbKV) Has(key []byte) (bool, error) { return d.db.Has(key) }

func (d dbKV) Set(key, value []byte) error { return d.db.Set(key, value) }

func (d dbKV) Delete(key []byte) error { return d.db.Delete(key) }

func (d dbKV) Iterator(start, end []byte) (corestore.Iterator, error) {
	return d.db.Iterator(start, end)
}

func (d dbKV) ReverseIterator(start, end []byte) (corestore.Iterator, error) {
	return d.db.ReverseIterator(start, end)
}
