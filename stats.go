package linmap

import (
	"fmt"
	"strings"
)

// Stats is a snapshot of a table's layout.
//
// Notes:
//   - stats are intended for diagnostics, not for production code.
//     Fields may change between minor releases.
type Stats struct {
	// Capacity is the number of slots.
	Capacity int
	// Size is the number of entries.
	Size int
	// Threshold is the size above which the table grows. Zero for
	// FixedTable, which never grows.
	Threshold int
	// LoadFactor is the configured load factor. Zero for FixedTable.
	LoadFactor float64
	// EmptySlots is the number of slots holding no entry.
	EmptySlots int
	// MaxScanLength is the largest number of slots inspected to find
	// any stored key, counting its own slot.
	MaxScanLength int
	// TotalGrowths is the number of times the table doubled.
	TotalGrowths uint32
}

// String returns string representation of table stats.
func (s *Stats) String() string {
	var sb strings.Builder
	sb.WriteString("Stats{\n")
	sb.WriteString(fmt.Sprintf("Capacity:       %d\n", s.Capacity))
	sb.WriteString(fmt.Sprintf("Size:           %d\n", s.Size))
	sb.WriteString(fmt.Sprintf("Threshold:      %d\n", s.Threshold))
	sb.WriteString(fmt.Sprintf("LoadFactor:     %g\n", s.LoadFactor))
	sb.WriteString(fmt.Sprintf("EmptySlots:     %d\n", s.EmptySlots))
	sb.WriteString(fmt.Sprintf("MaxScanLength: %d\n", s.MaxScanLength))
	sb.WriteString(fmt.Sprintf("TotalGrowths:   %d\n", s.TotalGrowths))
	sb.WriteString("}\n")
	return sb.String()
}

// Stats returns statistics for the Table. It is an O(capacity) operation,
// so it should be used only for diagnostics or debugging purposes.
func (t *Table[K, V]) Stats() *Stats {
	t.lazyInit()
	stats := &Stats{
		Capacity:     len(t.table),
		Size:         t.size,
		Threshold:    t.threshold,
		LoadFactor:   t.loadFactor,
		TotalGrowths: t.growths,
	}
	mask := len(t.table) - 1
	for i, e := range t.table {
		if e == nil {
			stats.EmptySlots++
			continue
		}
		home := int(e.hash) & mask
		stats.MaxScanLength = max(stats.MaxScanLength, (i-home)&mask+1)
	}
	return stats
}

// Stats returns statistics for the FixedTable. It is an O(capacity)
// operation, so it should be used only for diagnostics or debugging
// purposes.
func (t *FixedTable[K, V]) Stats() *Stats {
	t.lazyInit()
	capacity := len(t.table)
	stats := &Stats{
		Capacity: capacity,
		Size:     t.size,
	}
	for i, e := range t.table {
		if e == nil {
			stats.EmptySlots++
			continue
		}
		home := (capacity - 1) & int(e.hash)
		stats.MaxScanLength = max(stats.MaxScanLength, (i-home+capacity)%capacity+1)
	}
	return stats
}
