package linmap

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned for illegal construction options and
	// for nil keys. Test with errors.Is.
	ErrInvalidArgument = errors.New("linmap: invalid argument")

	// ErrNilKey is returned when a nil key is passed to a Table.
	// It matches ErrInvalidArgument under errors.Is.
	ErrNilKey = errors.WithMessage(ErrInvalidArgument, "nil key")

	// ErrTableFull is returned by FixedTable.Put once every slot is taken.
	ErrTableFull = errors.New("linmap: no place for new data")

	// ErrTableEmpty is returned by FixedTable.Get on an empty table.
	ErrTableEmpty = errors.New("linmap: table is empty")

	// ErrKeyNotFound is returned by FixedTable.Get for an absent key.
	ErrKeyNotFound = errors.New("linmap: no such key")
)
