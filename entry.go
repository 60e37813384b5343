package linmap

// entry is a key-value pair owned by exactly one slot.
// The key and the cached hash never change once the entry is created;
// the value is overwritten in place. Resizing moves the pointer to a new
// slot, never the entry itself.
type entry[K comparable, V any] struct {
	hash  uint32
	key   K
	value V
}
