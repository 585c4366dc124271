// Package kv is the durable key/value layer, backed by pebble. It
// holds three key spaces: plugin options (opt/), asset blobs (ast/),
// and the change-event outbox (evt/).
package kv

import (
	"fmt"

	"github.com/cockroachdb/pebble"
)

type Store struct {
	db *pebble.DB
}

func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{
		DisableWAL: false, // options and outbox must survive a crash
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// -------------------- Options --------------------

// SetOption stores one option value for a plugin.
func (s *Store) SetOption(plugin, key string, val []byte) error {
	return s.db.Set(optionKey(plugin, key), val, pebble.Sync)
}

// GetOption returns the stored value, or (nil, false, nil) when the
// option was never saved.
func (s *Store) GetOption(plugin, key string) ([]byte, bool, error) {
	val, closer, err := s.db.Get(optionKey(plugin, key))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

// ScanOptions iterates every stored option of one plugin.
func (s *Store) ScanOptions(plugin string, fn func(key string, val []byte) error) error {
	prefix := []byte("opt/" + plugin + "/")
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: append(append([]byte{}, prefix...), '~'),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		key := string(iter.Key()[len(prefix):])
		val := make([]byte, len(iter.Value()))
		copy(val, iter.Value())
		if err := fn(key, val); err != nil {
			return err
		}
	}
	return iter.Error()
}

// -------------------- Assets --------------------

// PutAsset stores a serialized asset frame.
func (s *Store) PutAsset(id uint64, frame []byte) error {
	return s.db.Set(assetKey(id), frame, pebble.Sync)
}

// GetAsset returns the stored frame, or (nil, false, nil) when the
// asset does not exist.
func (s *Store) GetAsset(id uint64) ([]byte, bool, error) {
	val, closer, err := s.db.Get(assetKey(id))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

// DeleteAsset removes an asset frame.
func (s *Store) DeleteAsset(id uint64) error {
	return s.db.Delete(assetKey(id), pebble.Sync)
}

// -------------------- Keys --------------------

func optionKey(plugin, key string) []byte {
	return []byte("opt/" + plugin + "/" + key)
}

func assetKey(id uint64) []byte {
	return []byte(fmt.Sprintf("ast/%020d", id))
}
