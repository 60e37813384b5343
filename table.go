package linmap

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Table is a hash table that stores every entry directly in one flat slot
// array and resolves collisions by linear probing.
//
// Insertion scans forward from a key's home slot to the first empty slot,
// so an empty slot met during lookup proves the key is absent. Entries
// are never removed, so there are no tombstones.
//
// The slot array is allocated on the first insertion and doubles when the
// number of entries exceeds capacity*loadFactor, up to 1<<30 slots.
//
// The zero value is an empty table with the default settings.
//
// A Table must not be used from multiple goroutines without external
// synchronization. It must not be copied after first use.
type Table[K comparable, V any] struct {
	_          noCopy
	table      []*entry[K, V]
	size       int
	threshold  int // next size to resize at; before allocation, the initial capacity
	loadFactor float64
	keyHash    func(K) uint32
	keyEqual   func(K, K) bool
	nilableKey bool
	logger     *zap.Logger
	growths    uint32
	inited     bool
}

// NewTable creates a new Table.
//
// Configuration options:
//   - WithCapacity(n): initial capacity, rounded up to a power of 2.
//   - WithLoadFactor(f): growth trigger, 0.75 by default.
//   - WithKeyHasher / WithKeyEqual: custom key capabilities.
//   - WithLogger: resize events at debug level.
//
// It fails with ErrInvalidArgument for a negative capacity, a load factor
// that is not positive or is NaN, or a key function of the wrong type.
//
// Example:
//
//	t, err := NewTable[int, int64](WithCapacity(64))
//	if err != nil {
//		return err
//	}
//	_, _ = t.Put(1, 2)
//	v, ok, _ := t.Get(1)
func NewTable[K comparable, V any](
	options ...func(*TableConfig),
) (*Table[K, V], error) {
	cfg := newTableConfig(options)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	t := &Table[K, V]{}
	if err := t.init(cfg); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table[K, V]) init(cfg *TableConfig) error {
	keyHash, keyEqual, err := parseKeyFuncs[K](cfg)
	if err != nil {
		return err
	}
	t.initWith(cfg, keyHash, keyEqual)
	return nil
}

func (t *Table[K, V]) initWith(
	cfg *TableConfig,
	keyHash func(K) uint32,
	keyEqual func(K, K) bool,
) {
	t.keyHash = keyHash
	t.keyEqual = keyEqual
	t.nilableKey = isNilableKey[K]()
	t.logger = cfg.logger
	t.loadFactor = defaultLoadFactor
	if cfg.hasLoadFactor {
		t.loadFactor = cfg.loadFactor
	}
	// A zero threshold selects the default capacity on first allocation.
	if cfg.hasCapacity && cfg.capacity > 0 {
		t.threshold = tableSizeFor(min(cfg.capacity, maxCapacity))
	}
	t.inited = true
}

func (t *Table[K, V]) lazyInit() {
	if !t.inited {
		keyHash, keyEqual := resolveKeyFuncs[K](nil, nil)
		t.initWith(newTableConfig(nil), keyHash, keyEqual)
	}
}

// Size returns the number of entries in the table.
func (t *Table[K, V]) Size() int {
	return t.size
}

// Capacity returns the number of slots, 0 before the first insertion.
func (t *Table[K, V]) Capacity() int {
	return len(t.table)
}

// Put associates value with key, replacing the value of an existing entry.
// It reports whether the value was stored, which is always the case
// unless the table has reached its maximum capacity and is full.
//
// It fails with ErrNilKey if key is nil.
func (t *Table[K, V]) Put(key K, value V) (bool, error) {
	t.lazyInit()
	hash, err := t.hash(key)
	if err != nil {
		return false, err
	}
	return t.putVal(hash, key, value, false), nil
}

// PutIfAbsent associates value with key only if key is not present yet.
// It reports whether a new entry was created.
//
// It fails with ErrNilKey if key is nil.
func (t *Table[K, V]) PutIfAbsent(key K, value V) (bool, error) {
	t.lazyInit()
	hash, err := t.hash(key)
	if err != nil {
		return false, err
	}
	return t.putVal(hash, key, value, true), nil
}

// Get returns the value stored for key and whether it was found.
// A missing key is not an error. Get never changes the table.
//
// It fails with ErrNilKey if key is nil.
func (t *Table[K, V]) Get(key K) (value V, ok bool, err error) {
	t.lazyInit()
	hash, err := t.hash(key)
	if err != nil {
		return value, false, err
	}
	if e := t.getEntry(hash, key); e != nil {
		return e.value, true, nil
	}
	return value, false, nil
}

func (t *Table[K, V]) hash(key K) (uint32, error) {
	if t.nilableKey && key == *new(K) {
		return 0, errors.WithStack(ErrNilKey)
	}
	return spread(t.keyHash(key)), nil
}

func (t *Table[K, V]) matches(e *entry[K, V], hash uint32, key K) bool {
	if e.hash != hash {
		return false
	}
	return e.key == key || (t.keyEqual != nil && t.keyEqual(e.key, key))
}

func (t *Table[K, V]) putVal(hash uint32, key K, value V, onlyIfAbsent bool) bool {
	if len(t.table) == 0 {
		t.resize()
	}
	stored, full := t.insert(hash, key, value, onlyIfAbsent)
	if full && t.threshold != maxThreshold {
		t.resize()
		stored, _ = t.insert(hash, key, value, onlyIfAbsent)
	}
	if t.size > t.threshold {
		t.resize()
	}
	return stored
}

// insert scans forward from the home slot of hash. It stops at the first empty
// slot, where it creates the entry, or at the entry holding key, where it
// applies the overwrite policy. full reports a complete wraparound that
// met neither.
func (t *Table[K, V]) insert(
	hash uint32,
	key K,
	value V,
	onlyIfAbsent bool,
) (stored, full bool) {
	mask := len(t.table) - 1
	start := mask & int(hash)
	for i := start; ; {
		e := t.table[i]
		if e == nil {
			t.table[i] = &entry[K, V]{hash: hash, key: key, value: value}
			t.size++
			return true, false
		}
		if t.matches(e, hash, key) {
			if onlyIfAbsent {
				return false, false
			}
			e.value = value
			return true, false
		}
		if i = mask & (i + 1); i == start {
			return false, true
		}
	}
}

func (t *Table[K, V]) getEntry(hash uint32, key K) *entry[K, V] {
	if len(t.table) == 0 {
		return nil
	}
	mask := len(t.table) - 1
	start := mask & int(hash)
	for i := start; ; {
		e := t.table[i]
		if e == nil {
			return nil
		}
		if t.matches(e, hash, key) {
			return e
		}
		if i = mask & (i + 1); i == start {
			return nil
		}
	}
}

// resize allocates the slot array on first use and doubles it afterwards.
// Entries are rehomed to hash&(newCap-1). Doubling keeps entries from
// distinct home slots apart, so the home slot is almost always free; if
// it is not, the entry takes the next free slot after it.
func (t *Table[K, V]) resize() {
	oldTable := t.table
	oldCap := len(oldTable)
	oldThr := t.threshold
	var newCap, newThr int
	switch {
	case oldCap > 0:
		if oldCap >= maxCapacity {
			t.threshold = maxThreshold
			t.logger.Debug("table reached maximum capacity",
				zap.Int("capacity", oldCap),
				zap.Int("size", t.size),
			)
			return
		}
		newCap = oldCap << 1
		if newCap < maxCapacity && oldCap >= defaultInitialCapacity {
			newThr = min(oldThr<<1, maxThreshold)
		}
	case oldThr > 0:
		// initial capacity was placed in threshold
		newCap = oldThr
	default:
		newCap = defaultInitialCapacity
	}
	if newThr == 0 {
		newThr = thresholdFor(newCap, t.loadFactor)
	}
	t.threshold = newThr

	newTable := make([]*entry[K, V], newCap)
	mask := newCap - 1
	for _, e := range oldTable {
		if e == nil {
			continue
		}
		i := int(e.hash) & mask
		for newTable[i] != nil {
			i = (i + 1) & mask
		}
		newTable[i] = e
	}
	t.table = newTable

	if oldCap > 0 {
		t.growths++
	}
	t.logger.Debug("table resized",
		zap.Int("oldCapacity", oldCap),
		zap.Int("newCapacity", newCap),
		zap.Int("threshold", newThr),
		zap.Int("size", t.size),
	)
}
