// Animerec - Anime Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package metadata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Ensure BadgerStore implements Store
var _ Store = (*BadgerStore)(nil)

const detailsKeyPrefix = "details:"

// BadgerStore persists fetched details in BadgerDB so a restart does not
// have to re-query the rate limited remote.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadgerStore opens (or creates) a store at dir. Entries expire after
// ttl; zero keeps them forever. An empty dir opens an in-memory store.
func OpenBadgerStore(dir string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func detailsKey(itemID int) []byte {
	return []byte(detailsKeyPrefix + strconv.Itoa(itemID))
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, itemID int) (Details, bool, error) {
	var d Details
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(detailsKey(itemID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &d)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Details{}, false, nil
	}
	if err != nil {
		return Details{}, false, fmt.Errorf("get details %d: %w", itemID, err)
	}
	return d, true, nil
}

// Put implements Store.
func (s *BadgerStore) Put(_ context.Context, d Details) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(detailsKey(d.ItemID), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
