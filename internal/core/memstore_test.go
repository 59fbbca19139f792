package core

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
)

var errInjected = errors.New("injected store failure")

// memStore is a transactional in-memory Store. Writes are staged in the
// transaction and applied on Commit.
type memStore struct {
	mu   sync.Mutex
	rows map[string]PropertyRecord

	failOnBatch int   // 1-indexed batch that fails, 0 for none
	beginErr    error // returned by Begin when set
	commitErr   error // returned by Commit when set

	begins          int
	commits         int
	rollbacks       int
	closedRollbacks int                // Rollback calls on a committed or rolled back tx
	batches         [][]PropertyRecord // every batch received, committed or not
	keys            []string           // uniqueKey passed to each UpsertBatch
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]PropertyRecord)}
}

func (s *memStore) Begin(ctx context.Context) (Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.begins++
	return &memTx{store: s, staged: maps.Clone(s.rows)}, nil
}

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *memStore) get(id string) (PropertyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[id]
	return rec, ok
}

type memTx struct {
	store  *memStore
	staged map[string]PropertyRecord
	batch  int
	done   bool
}

func (tx *memTx) UpsertBatch(ctx context.Context, records []PropertyRecord, uniqueKey string) (int64, error) {
	if tx.done {
		return 0, errors.New("transaction already closed")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	tx.batch++
	tx.store.batches = append(tx.store.batches, records)
	tx.store.keys = append(tx.store.keys, uniqueKey)

	if tx.batch == tx.store.failOnBatch {
		return 0, fmt.Errorf("batch %d: %w", tx.batch, errInjected)
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if seen[rec.ID] {
			return 0, fmt.Errorf("ON CONFLICT DO UPDATE command cannot affect row a second time: id %s", rec.ID)
		}
		seen[rec.ID] = true
	}

	for _, rec := range records {
		tx.staged[rec.ID] = rec
	}
	return int64(len(records)), nil
}

func (tx *memTx) Commit(ctx context.Context) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	if tx.done {
		return errors.New("transaction already closed")
	}
	tx.done = true
	if tx.store.commitErr != nil {
		return tx.store.commitErr
	}
	tx.store.commits++
	tx.store.rows = tx.staged
	return nil
}

func (tx *memTx) Rollback(ctx context.Context) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	if tx.done {
		tx.store.closedRollbacks++
		return errors.New("transaction already closed")
	}
	tx.done = true
	tx.store.rollbacks++
	return nil
}
