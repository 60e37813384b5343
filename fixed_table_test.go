package linmap

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestIntTable(t *testing.T, options ...func(*TableConfig)) *IntTable {
	t.Helper()
	tb, err := NewIntTable(options...)
	require.NoError(t, err)
	return tb
}

func TestNewIntTable_NegativeCapacity(t *testing.T) {
	tb, err := NewIntTable(WithCapacity(-1))
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Nil(t, tb)
}

func TestNewIntTable_Capacity(t *testing.T) {
	cases := []struct {
		name    string
		options []func(*TableConfig)
		want    int
	}{
		{"Default", nil, 16},
		{"Zero", []func(*TableConfig){WithCapacity(0)}, 1},
		{"Hundred", []func(*TableConfig){WithCapacity(100)}, 151},
		{"LoadFactorIgnored", []func(*TableConfig){WithCapacity(10), WithLoadFactor(0)}, 16},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tb := newTestIntTable(t, c.options...)
			require.Equal(t, c.want, tb.Capacity())
			require.Equal(t, 0, tb.Size())
		})
	}
}

func TestIntTable_Put(t *testing.T) {
	t.Run("NewKey", func(t *testing.T) {
		tb := newTestIntTable(t)
		stored, err := tb.Put(1, 2)
		require.NoError(t, err)
		require.True(t, stored)
		require.Equal(t, 1, tb.Size())
	})

	t.Run("OverwriteKeepsSize", func(t *testing.T) {
		tb := newTestIntTable(t)
		_, _ = tb.Put(1, 2)
		stored, err := tb.Put(1, 3)
		require.NoError(t, err)
		require.True(t, stored)
		require.Equal(t, 1, tb.Size())
		require.Equal(t, int64(3), tb.MustGet(1))
	})

	t.Run("FillsExactlyCapacity", func(t *testing.T) {
		tb := newTestIntTable(t, WithCapacity(testSize))
		for i := range int32(testSize) {
			stored, err := tb.Put(i, int64(i))
			require.NoError(t, err)
			require.True(t, stored)
			require.Equal(t, int(i)+1, tb.Size())
		}
		capacity := int32(tb.Capacity())
		for i := int32(testSize); i < capacity; i++ {
			_, err := tb.Put(i, int64(i))
			require.NoError(t, err)
		}
		require.Equal(t, testSize*3/2+1, tb.Size())

		_, err := tb.Put(capacity, 0)
		require.ErrorIs(t, err, ErrTableFull)
		// existing keys are rejected too once the table is full
		_, err = tb.Put(0, 1)
		require.ErrorIs(t, err, ErrTableFull)
		require.Equal(t, int(capacity), tb.Size())

		for i := range capacity {
			require.Equal(t, int64(i), tb.MustGet(i))
		}
		stats := tb.Stats()
		require.Equal(t, 0, stats.EmptySlots)
		require.Equal(t, int(capacity), stats.Size)
	})

	t.Run("NegativeKeys", func(t *testing.T) {
		tb := newTestIntTable(t, WithCapacity(40))
		for i := int32(-20); i < 20; i++ {
			_, err := tb.Put(i, int64(i)*100)
			require.NoError(t, err)
		}
		require.Equal(t, 40, tb.Size())
		for i := int32(-20); i < 20; i++ {
			v, err := tb.Get(i)
			require.NoError(t, err)
			require.Equal(t, int64(i)*100, v)
		}
	})
}

func TestIntTable_Get(t *testing.T) {
	t.Run("SameValue", func(t *testing.T) {
		tb := newTestIntTable(t)
		_, _ = tb.Put(1, 2)
		v, err := tb.Get(1)
		require.NoError(t, err)
		require.Equal(t, int64(2), v)
	})

	t.Run("EmptyTable", func(t *testing.T) {
		tb := newTestIntTable(t)
		_, err := tb.Get(1)
		require.ErrorIs(t, err, ErrTableEmpty)
	})

	t.Run("NoSuchKey", func(t *testing.T) {
		tb := newTestIntTable(t)
		_, _ = tb.Put(1, 2)
		_, err := tb.Get(2)
		require.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("NoSuchKeyInFullTable", func(t *testing.T) {
		tb := newTestIntTable(t, WithCapacity(2))
		require.Equal(t, 4, tb.Capacity())
		for i := range int32(4) {
			tb.MustPut(i, int64(i))
		}
		_, err := tb.Get(9)
		require.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestIntTable_Must(t *testing.T) {
	tb := newTestIntTable(t, WithCapacity(0))
	require.PanicsWithError(t, "linmap: table is empty", func() {
		tb.MustGet(1)
	})
	tb.MustPut(1, 1)
	require.Panics(t, func() {
		tb.MustPut(2, 2)
	})
	require.Panics(t, func() {
		tb.MustGet(2)
	})
	require.Equal(t, int64(1), tb.MustGet(1))
}

func TestIntTable_ZeroValue(t *testing.T) {
	var tb IntTable
	_, err := tb.Get(1)
	require.ErrorIs(t, err, ErrTableEmpty)

	stored, err := tb.Put(1, 2)
	require.NoError(t, err)
	require.True(t, stored)
	require.Equal(t, defaultInitialCapacity, tb.Capacity())
	require.Equal(t, int64(2), tb.MustGet(1))
}

func TestFixedTable_WideKeys(t *testing.T) {
	tb, err := NewFixedTable[int64, uint64](WithCapacity(128))
	require.NoError(t, err)
	// i and i<<32 share a hash code; they are distinct keys only for i != 0
	for i := int64(1); i <= 64; i++ {
		_, err = tb.Put(i, uint64(i))
		require.NoError(t, err)
		_, err = tb.Put(i<<32, uint64(i)+1000)
		require.NoError(t, err)
	}
	require.Equal(t, 128, tb.Size())
	for i := int64(1); i <= 64; i++ {
		require.Equal(t, intHashCode(i), intHashCode(i<<32))
		require.Equal(t, uint64(i), tb.MustGet(i))
		require.Equal(t, uint64(i)+1000, tb.MustGet(i<<32))
	}
}

func TestFixedTable_LogsFullTable(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tb, err := NewFixedTable[uint8, uint8](WithCapacity(0), WithLogger(zap.New(core)))
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("fixed table allocated").Len())

	tb.MustPut(7, 7)
	_, err = tb.Put(8, 8)
	require.ErrorIs(t, err, ErrTableFull)

	full := logs.FilterMessage("fixed table is full").All()
	require.Len(t, full, 1)
	require.Equal(t, zapcore.WarnLevel, full[0].Level)
	require.Equal(t, int64(8), full[0].ContextMap()["key"])
}
