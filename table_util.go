package linmap

import (
	"hash/maphash"
	"math"
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"
)

// ============================================================================
// Private Constants
// ============================================================================

const (
	// defaultInitialCapacity is the capacity used when none is requested.
	// MUST be a power of two.
	defaultInitialCapacity = 16
	// defaultLoadFactor is the load factor used when none is requested.
	defaultLoadFactor = 0.75
	// maxCapacity is the largest slot count a Table grows to.
	maxCapacity = 1 << 30
	// maxThreshold marks a saturated threshold: the table no longer grows.
	maxThreshold = math.MaxInt32
	// fixedMaxCapacity is the largest slot count of a FixedTable.
	fixedMaxCapacity = math.MaxInt32 - 1
)

const (
	intSize = 32 << (^uint(0) >> 63) // 32 or 64
)

// ============================================================================
// Capacity Utilities
// ============================================================================

// tableSizeFor returns the smallest power of 2 that is greater than or
// equal to c, capped at maxCapacity. Requests of 0 or 1 yield 1.
func tableSizeFor(c int) int {
	if c <= 1 {
		return 1
	}
	if c >= maxCapacity {
		return maxCapacity
	}
	return nextPowOf2(c)
}

// nextPowOf2 calculates the smallest power of 2 that is greater than or equal
// to n.
// Compatible with both 32-bit and 64-bit systems.
//
//go:nosplit
func nextPowOf2(n int) int {
	if n <= 0 {
		return 1
	}
	v := n - 1
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	if intSize == 64 {
		v |= v >> 32
	}
	return v + 1
}

// thresholdFor computes floor(capacity*loadFactor), saturating at
// maxThreshold once the table can no longer grow.
func thresholdFor(capacity int, loadFactor float64) int {
	ft := float64(capacity) * loadFactor
	if capacity < maxCapacity && ft < float64(maxCapacity) {
		return int(ft)
	}
	return maxThreshold
}

// fixedCapacityFor computes the slot count of a FixedTable asked to hold
// n entries: max(3n/2, n)+1, capped at fixedMaxCapacity.
func fixedCapacityFor(n int) int {
	c := int64(min(n, fixedMaxCapacity))
	return int(min(max(3*c/2, c)+1, fixedMaxCapacity))
}

// ============================================================================
// Hash Utilities
// ============================================================================

// spread XORs the high 16 bits of a hash code into the low 16 bits.
// Table indexes only use the low bits, so without spreading, hash codes
// that differ only in their high bits would always collide.
//
//go:nosplit
func spread(h uint32) uint32 {
	return h ^ (h >> 16)
}

// intHashCode returns the 32-bit hash code of an integer. Values of up
// to 32 bits hash to themselves; wider values fold their halves together.
//
//go:nosplit
func intHashCode[T constraints.Integer](v T) uint32 {
	if unsafe.Sizeof(v) <= 4 {
		return uint32(v)
	}
	u := uint64(v)
	return uint32(u ^ (u >> 32))
}

// fold64 folds a 64-bit hash into a 32-bit hash code.
//
//go:nosplit
func fold64(h uint64) uint32 {
	return uint32(h ^ (h >> 32))
}

// defaultKeyHasher picks the built-in hash function for K.
//
//   - integer kinds: intHashCode of the value
//   - strings: xxhash
//   - everything else: maphash.Comparable with a per-hasher seed
func defaultKeyHasher[K comparable]() func(K) uint32 {
	kType := reflect.TypeFor[K]()
	switch kType.Kind() {
	case reflect.Int8:
		return func(k K) uint32 { return intHashCode(*(*int8)(unsafe.Pointer(&k))) }
	case reflect.Uint8:
		return func(k K) uint32 { return intHashCode(*(*uint8)(unsafe.Pointer(&k))) }
	case reflect.Int16:
		return func(k K) uint32 { return intHashCode(*(*int16)(unsafe.Pointer(&k))) }
	case reflect.Uint16:
		return func(k K) uint32 { return intHashCode(*(*uint16)(unsafe.Pointer(&k))) }
	case reflect.Int32:
		return func(k K) uint32 { return intHashCode(*(*int32)(unsafe.Pointer(&k))) }
	case reflect.Uint32:
		return func(k K) uint32 { return intHashCode(*(*uint32)(unsafe.Pointer(&k))) }
	case reflect.Int64:
		return func(k K) uint32 { return intHashCode(*(*int64)(unsafe.Pointer(&k))) }
	case reflect.Uint64:
		return func(k K) uint32 { return intHashCode(*(*uint64)(unsafe.Pointer(&k))) }
	case reflect.Int:
		return func(k K) uint32 { return intHashCode(*(*int)(unsafe.Pointer(&k))) }
	case reflect.Uint:
		return func(k K) uint32 { return intHashCode(*(*uint)(unsafe.Pointer(&k))) }
	case reflect.Uintptr:
		return func(k K) uint32 { return intHashCode(*(*uintptr)(unsafe.Pointer(&k))) }
	case reflect.String:
		return func(k K) uint32 {
			return fold64(xxhash.Sum64String(*(*string)(unsafe.Pointer(&k))))
		}
	default:
		seed := maphash.MakeSeed()
		return func(k K) uint32 {
			return fold64(maphash.Comparable(seed, k))
		}
	}
}

// isNilableKey reports whether the zero value of K is nil. Only such key
// types can be rejected as nil keys.
func isNilableKey[K comparable]() bool {
	switch reflect.TypeFor[K]().Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}

// ============================================================================
// Locker Utilities
// ============================================================================

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
