package linmap

// HashMap is the contract of a map that only grows: entries can be added
// and overwritten but never removed.
type HashMap[K comparable, V any] interface {
	// Size returns the number of entries.
	Size() int
	// Put stores value for key and reports whether it was stored.
	Put(key K, value V) (bool, error)
	// PutIfAbsent stores value only for a new key and reports whether an
	// entry was created.
	PutIfAbsent(key K, value V) (bool, error)
	// Get returns the value for key and whether key is present.
	Get(key K) (V, bool, error)
}

var _ HashMap[string, int] = (*Table[string, int])(nil)
