package linmap

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

// FixedTable is a linear probing hash table specialized for integer keys
// and values. Its capacity is fixed when it is created and it never grows:
// once every slot is taken, Put fails with ErrTableFull.
//
// Unlike Table, failures are errors, not return values: Get fails with
// ErrTableEmpty on an empty table and with ErrKeyNotFound for an absent
// key. Callers that cannot handle those errors should check Size first,
// or use MustPut and MustGet.
//
// The zero value is an empty table with a capacity of 16.
//
// A FixedTable must not be used from multiple goroutines without external
// synchronization. It must not be copied after first use.
type FixedTable[K, V constraints.Integer] struct {
	_      noCopy
	table  []*entry[K, V]
	size   int
	logger *zap.Logger
}

// IntTable is the FixedTable for 32-bit keys and 64-bit values.
type IntTable = FixedTable[int32, int64]

// NewFixedTable creates a new FixedTable.
//
// WithCapacity(n) sizes the table to hold max(3n/2, n)+1 entries; without
// it the table holds 16. A negative n fails with ErrInvalidArgument.
// WithLogger is honored; the other options do not apply and are ignored.
func NewFixedTable[K, V constraints.Integer](
	options ...func(*TableConfig),
) (*FixedTable[K, V], error) {
	cfg := newTableConfig(options)
	if cfg.hasCapacity && cfg.capacity < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "illegal initial capacity: %d", cfg.capacity)
	}
	capacity := defaultInitialCapacity
	if cfg.hasCapacity {
		capacity = fixedCapacityFor(cfg.capacity)
	}
	t := &FixedTable[K, V]{}
	t.init(capacity, cfg.logger)
	return t, nil
}

// NewIntTable creates a new IntTable. See NewFixedTable.
func NewIntTable(options ...func(*TableConfig)) (*IntTable, error) {
	return NewFixedTable[int32, int64](options...)
}

func (t *FixedTable[K, V]) init(capacity int, logger *zap.Logger) {
	t.table = make([]*entry[K, V], capacity)
	t.logger = logger
	t.logger.Debug("fixed table allocated", zap.Int("capacity", capacity))
}

func (t *FixedTable[K, V]) lazyInit() {
	if t.table == nil {
		t.init(defaultInitialCapacity, zap.NewNop())
	}
}

// Size returns the number of entries in the table.
func (t *FixedTable[K, V]) Size() int {
	return t.size
}

// Capacity returns the number of entries the table can hold.
func (t *FixedTable[K, V]) Capacity() int {
	t.lazyInit()
	return len(t.table)
}

// Put associates value with key, replacing the value of an existing entry,
// and returns true. It fails with ErrTableFull when the table holds
// Capacity entries, even if key is one of them.
func (t *FixedTable[K, V]) Put(key K, value V) (bool, error) {
	t.lazyInit()
	capacity := len(t.table)
	if t.size == capacity {
		t.logger.Warn("fixed table is full",
			zap.Int("capacity", capacity),
			zap.Int64("key", int64(key)),
		)
		return false, errors.Wrapf(ErrTableFull, "capacity %d", capacity)
	}

	hash := spread(intHashCode(key))
	start := (capacity - 1) & int(hash)
	i := start
	for {
		e := t.table[i]
		if e == nil {
			t.table[i] = &entry[K, V]{hash: hash, key: key, value: value}
			t.size++
			return true, nil
		}
		if e.key == key {
			e.value = value
			return true, nil
		}
		if i++; i == capacity {
			i = 0
		}
		if i == start {
			// unreachable while size < capacity
			return false, errors.Wrapf(ErrTableFull, "capacity %d", capacity)
		}
	}
}

// Get returns the value stored for key. It fails with ErrTableEmpty if
// the table is empty and with ErrKeyNotFound if key is absent.
func (t *FixedTable[K, V]) Get(key K) (V, error) {
	if t.size == 0 {
		return 0, errors.WithStack(ErrTableEmpty)
	}

	capacity := len(t.table)
	hash := spread(intHashCode(key))
	start := (capacity - 1) & int(hash)
	i := start
	for {
		e := t.table[i]
		if e == nil {
			break
		}
		if e.key == key {
			return e.value, nil
		}
		if i++; i == capacity {
			i = 0
		}
		if i == start {
			break
		}
	}
	return 0, errors.Wrapf(ErrKeyNotFound, "key %d", key)
}

// MustPut is like Put but panics instead of returning an error.
func (t *FixedTable[K, V]) MustPut(key K, value V) {
	if _, err := t.Put(key, value); err != nil {
		panic(err)
	}
}

// MustGet is like Get but panics instead of returning an error.
func (t *FixedTable[K, V]) MustGet(key K) V {
	v, err := t.Get(key)
	if err != nil {
		panic(err)
	}
	return v
}
