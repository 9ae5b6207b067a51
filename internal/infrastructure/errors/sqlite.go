package errors

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// classifySQLiteError maps a sqlite3.Error in err's chain to an ErrorCode.
// It returns ErrCodeUnknown when err does not come from the driver.
func classifySQLiteError(err error) ErrorCode {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return ErrCodeUnknown
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return ErrCodeDuplicate
	case sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintCheck,
		sqlite3.ErrConstraintForeignKey, sqlite3.ErrConstraintTrigger:
		return ErrCodeConstraint
	}

	switch sqliteErr.Code {
	case sqlite3.ErrConstraint:
		return ErrCodeConstraint
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return ErrCodeBusy
	case sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
		return ErrCodeConnection
	case sqlite3.ErrPerm, sqlite3.ErrAuth, sqlite3.ErrReadonly:
		return ErrCodePermission
	case sqlite3.ErrFull:
		return ErrCodeDiskSpace
	case sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
		return ErrCodeCorruption
	case sqlite3.ErrSchema:
		return ErrCodeSchema
	case sqlite3.ErrMisuse:
		return ErrCodeInternal
	default:
		return ErrCodeUnknown
	}
}
