package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("staging store is closed")

// writeBatchSize bounds the number of rows per INSERT or DELETE statement.
const writeBatchSize = 400

// entry is the single table backing all partitions.
type entry struct {
	Key   string `gorm:"column:entry_key;primaryKey"`
	Value []byte `gorm:"column:entry_value"`
}

// TableName overrides the table name used by GORM.
func (entry) TableName() string {
	return "staging_entries"
}

// Entry is a key-value pair read from a partition.
// Key does not include the partition prefix.
type Entry struct {
	Key   string
	Value []byte
}

// Decode unmarshals the JSON value into v.
func (e Entry) Decode(v any) error {
	if err := json.Unmarshal(e.Value, v); err != nil {
		return fmt.Errorf("failed to decode staging entry %s: %w", e.Key, err)
	}
	return nil
}

// Item is a value to be written under a key.
type Item struct {
	Key   string
	Value any
}

// Store is the ordered key-value store of a scan session.
type Store struct {
	db      *gorm.DB
	path    string
	release func() error

	mu     sync.RWMutex
	closed bool
}

// New wraps an existing GORM connection. The staging table must already exist.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Path returns the database file of the store, empty for wrapped connections.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.release != nil {
		return s.release()
	}
	return nil
}

// session returns a context-bound handle, or ErrClosed.
// The caller must invoke done once the statement completes.
func (s *Store) session(ctx context.Context) (*gorm.DB, func(), error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, nil, ErrClosed
	}
	return s.db.WithContext(ctx), s.mu.RUnlock, nil
}

// Put writes a single value.
func (s *Store) Put(ctx context.Context, p Partition, key string, value any) error {
	return s.PutBatch(ctx, p, []Item{{Key: key, Value: value}})
}

// PutBatch writes all items atomically, replacing existing values.
func (s *Store) PutBatch(ctx context.Context, p Partition, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([]entry, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item.Value)
		if err != nil {
			return fmt.Errorf("failed to encode %s entry %s: %w", p, item.Key, err)
		}
		rows = append(rows, entry{Key: p.key(item.Key), Value: raw})
	}

	db, done, err := s.session(ctx)
	if err != nil {
		return err
	}
	defer done()

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, writeBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to write %d %s entries: %w", len(rows), p, err)
	}
	return nil
}

// Get reads the value of key into dst. It reports whether the key exists.
func (s *Store) Get(ctx context.Context, p Partition, key string, dst any) (bool, error) {
	db, done, err := s.session(ctx)
	if err != nil {
		return false, err
	}

	var rows []entry
	err = db.Where("entry_key = ?", p.key(key)).Limit(1).Find(&rows).Error
	done()
	if err != nil {
		return false, fmt.Errorf("failed to read %s entry %s: %w", p, key, err)
	}
	if len(rows) == 0 {
		return false, nil
	}

	if dst != nil {
		if err := (Entry{Key: key, Value: rows[0].Value}).Decode(dst); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Delete removes the given keys atomically. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, p Partition, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = p.key(k)
	}

	db, done, err := s.session(ctx)
	if err != nil {
		return err
	}
	defer done()

	err = db.Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(full); start += writeBatchSize {
			end := min(start+writeBatchSize, len(full))
			if err := tx.Where("entry_key IN ?", full[start:end]).Delete(&entry{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete %d %s entries: %w", len(keys), p, err)
	}
	return nil
}

// List returns up to limit entries of the partition in key order,
// starting strictly after the given key (empty for the beginning).
func (s *Store) List(ctx context.Context, p Partition, after string, limit int) ([]Entry, error) {
	lo, hi := p.bounds()
	if after != "" {
		lo = p.key(after)
	}

	db, done, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Where("entry_key < ?", hi)
	if after != "" {
		query = query.Where("entry_key > ?", lo)
	} else {
		query = query.Where("entry_key >= ?", lo)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []entry
	err = query.Order("entry_key").Find(&rows).Error
	done()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entries: %w", p, err)
	}

	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = Entry{Key: p.strip(row.Key), Value: row.Value}
	}
	return entries, nil
}

// Stream calls fn for every entry of the partition in key order.
// Entries are read in pages of pageSize; fn runs between page reads.
func (s *Store) Stream(ctx context.Context, p Partition, pageSize int, fn func(Entry) error) error {
	if pageSize <= 0 {
		pageSize = 500
	}

	after := ""
	for {
		page, err := s.List(ctx, p, after, pageSize)
		if err != nil {
			return err
		}

		for _, e := range page {
			if err := fn(e); err != nil {
				return err
			}
		}

		if len(page) < pageSize {
			return nil
		}
		after = page[len(page)-1].Key
	}
}

// Count returns the number of entries in the partition.
func (s *Store) Count(ctx context.Context, p Partition) (int64, error) {
	lo, hi := p.bounds()

	db, done, err := s.session(ctx)
	if err != nil {
		return 0, err
	}
	defer done()

	var count int64
	if err := db.Model(&entry{}).Where("entry_key >= ? AND entry_key < ?", lo, hi).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s entries: %w", p, err)
	}
	return count, nil
}

// DeleteRange removes every entry of the partition.
func (s *Store) DeleteRange(ctx context.Context, p Partition) error {
	lo, hi := p.bounds()

	db, done, err := s.session(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := db.Where("entry_key >= ? AND entry_key < ?", lo, hi).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("failed to clear %s: %w", p, err)
	}
	return nil
}

// Pair holds the two values of a key matched across partitions.
type Pair struct {
	Left  Entry
	Right Entry
}

// Match atomically removes key from both partitions if it is present in both.
// It returns nil when the key is missing from either side, in which case
// nothing is removed. At most one concurrent caller can match a given key.
func (s *Store) Match(ctx context.Context, key string, left, right Partition) (*Pair, error) {
	keys := []string{left.key(key), right.key(key)}

	db, done, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	var pair *Pair
	err = db.Transaction(func(tx *gorm.DB) error {
		var rows []entry
		if err := tx.Where("entry_key IN ?", keys).Order("entry_key").Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) != 2 {
			return nil
		}

		res := tx.Where("entry_key IN ?", keys).Delete(&entry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 2 {
			return nil
		}

		values := map[string][]byte{rows[0].Key: rows[0].Value, rows[1].Key: rows[1].Value}
		pair = &Pair{
			Left:  Entry{Key: key, Value: values[keys[0]]},
			Right: Entry{Key: key, Value: values[keys[1]]},
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to match %s across %s and %s: %w", key, left, right, err)
	}
	return pair, nil
}

// Keys returns the keys of the given entries.
func Keys(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	sort.Strings(keys)
	return keys
}
