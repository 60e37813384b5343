package linmap

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ============================================================================
// Configuration
// ============================================================================

// TableConfig defines configurable options for Table and FixedTable
// initialization. Options are applied in order; validation happens once,
// in the constructor.
type TableConfig struct {
	// capacity is the requested initial capacity.
	// For Table it is rounded up to the next power of 2 and clamped to
	// maxCapacity; zero selects the default capacity.
	// For FixedTable the real capacity is max(3*capacity/2, capacity)+1.
	capacity    int
	hasCapacity bool

	// loadFactor is the ratio of occupied slots to capacity above which
	// Table doubles. Ignored by FixedTable.
	loadFactor    float64
	hasLoadFactor bool

	// keyHash and keyEqual hold a func(K) uint32 and a func(K, K) bool
	// for the table's key type. They are type-checked in the constructor.
	keyHash  any
	keyEqual any

	// logger receives resize and capacity events. Defaults to a no-op
	// logger.
	logger *zap.Logger
}

// WithCapacity configures the initial capacity of a new table.
//
// For Table the capacity is only a hint: it is rounded up to the next
// power of 2 and the slot array is allocated on the first insertion.
// Zero selects the default capacity of 16.
//
// For FixedTable the capacity is final; the table can hold
// max(3*cap/2, cap)+1 entries and never grows.
//
// A negative cap makes the constructor fail with ErrInvalidArgument.
func WithCapacity(cap int) func(*TableConfig) {
	return func(c *TableConfig) {
		c.capacity = cap
		c.hasCapacity = true
	}
}

// WithLoadFactor configures the load factor of a Table. A load factor
// that is not positive, or NaN, makes the constructor fail with
// ErrInvalidArgument. Ignored by FixedTable.
func WithLoadFactor(loadFactor float64) func(*TableConfig) {
	return func(c *TableConfig) {
		c.loadFactor = loadFactor
		c.hasLoadFactor = true
	}
}

// WithKeyHasher sets a custom key hashing function for the table.
// It takes precedence over a HashCoder implementation on the key type.
//
// Usage:
//
//	t, err := NewTable[string, int](WithKeyHasher(func(s string) uint32 {
//		return uint32(len(s))
//	}))
func WithKeyHasher[K comparable](keyHash func(key K) uint32) func(*TableConfig) {
	return func(c *TableConfig) {
		if keyHash != nil {
			c.keyHash = keyHash
		}
	}
}

// WithKeyEqual sets a custom key equality function for the table.
// It takes precedence over an Equaler implementation on the key type.
// Keys that are equal must have equal hash codes.
func WithKeyEqual[K comparable](keyEqual func(a, b K) bool) func(*TableConfig) {
	return func(c *TableConfig) {
		if keyEqual != nil {
			c.keyEqual = keyEqual
		}
	}
}

// WithLogger sets the logger used for resize and capacity events.
func WithLogger(logger *zap.Logger) func(*TableConfig) {
	return func(c *TableConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// HashCoder is implemented by key types that provide their own hash code.
// It is detected when a Table is initialized and is overridden by an
// explicit WithKeyHasher.
//
// Detection looks at the key type K itself. When K is an interface type,
// HashCode methods of the dynamic values stored in it are not used; pass
// WithKeyHasher instead.
//
// Usage:
//
//	type UserID struct {
//		ID     int64
//		Tenant string
//	}
//
//	func (u UserID) HashCode() uint32 {
//		return uint32(u.ID) ^ uint32(u.ID>>32)
//	}
type HashCoder interface {
	HashCode() uint32
}

// Equaler is implemented by key types that provide their own equality.
// It is detected when a Table is initialized and is overridden by an
// explicit WithKeyEqual.
//
// As with HashCoder, detection looks at K itself, so Equal methods of the
// dynamic values of an interface key type are not used.
type Equaler[T any] interface {
	Equal(other T) bool
}

func newTableConfig(options []func(*TableConfig)) *TableConfig {
	cfg := &TableConfig{}
	for _, o := range options {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return cfg
}

// validate checks the options shared by both table kinds.
func (c *TableConfig) validate() error {
	if c.hasCapacity && c.capacity < 0 {
		return errors.Wrapf(ErrInvalidArgument, "illegal initial capacity: %d", c.capacity)
	}
	if c.hasLoadFactor && (c.loadFactor <= 0 || math.IsNaN(c.loadFactor)) {
		return errors.Wrapf(ErrInvalidArgument, "illegal load factor: %v", c.loadFactor)
	}
	return nil
}

// parseKeyFuncs resolves the hash and equality capabilities for K:
// explicit options first, then the key type's own methods, then the
// built-in defaults.
func parseKeyFuncs[K comparable](c *TableConfig) (
	keyHash func(K) uint32,
	keyEqual func(K, K) bool,
	err error,
) {
	if c.keyHash != nil {
		var ok bool
		if keyHash, ok = c.keyHash.(func(K) uint32); !ok {
			return nil, nil, errors.Wrapf(ErrInvalidArgument, "key hasher has type %T", c.keyHash)
		}
	}
	if c.keyEqual != nil {
		var ok bool
		if keyEqual, ok = c.keyEqual.(func(K, K) bool); !ok {
			return nil, nil, errors.Wrapf(ErrInvalidArgument, "key equality has type %T", c.keyEqual)
		}
	}
	keyHash, keyEqual = resolveKeyFuncs(keyHash, keyEqual)
	return keyHash, keyEqual, nil
}

// resolveKeyFuncs fills in the capabilities the options left nil from the
// key type's own methods, then the built-in defaults. keyEqual stays nil
// when == is enough.
func resolveKeyFuncs[K comparable](
	keyHash func(K) uint32,
	keyEqual func(K, K) bool,
) (func(K) uint32, func(K, K) bool) {
	if keyHash == nil {
		keyHash = parseKeyHashInterface[K]()
	}
	if keyEqual == nil {
		keyEqual = parseKeyEqualInterface[K]()
	}
	if keyHash == nil {
		keyHash = defaultKeyHasher[K]()
	}
	return keyHash, keyEqual
}

func parseKeyHashInterface[K comparable]() func(K) uint32 {
	var k K
	if _, ok := any(k).(HashCoder); ok {
		return func(key K) uint32 {
			return any(key).(HashCoder).HashCode()
		}
	}
	return nil
}

func parseKeyEqualInterface[K comparable]() func(K, K) bool {
	var k K
	if _, ok := any(k).(Equaler[K]); ok {
		return func(a, b K) bool {
			return any(a).(Equaler[K]).Equal(b)
		}
	}
	return nil
}
