package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mattn/go-sqlite3"
)

func TestClassifySQLiteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorCode
	}{
		{"non-driver error", errors.New("other"), ErrCodeUnknown},
		{
			"primary key violation",
			sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey},
			ErrCodeDuplicate,
		},
		{
			"unique violation",
			sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique},
			ErrCodeDuplicate,
		},
		{
			"not null violation",
			sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull},
			ErrCodeConstraint,
		},
		{"generic constraint", sqlite3.Error{Code: sqlite3.ErrConstraint}, ErrCodeConstraint},
		{"busy", sqlite3.Error{Code: sqlite3.ErrBusy}, ErrCodeBusy},
		{"locked", sqlite3.Error{Code: sqlite3.ErrLocked}, ErrCodeBusy},
		{"cannot open", sqlite3.Error{Code: sqlite3.ErrCantOpen}, ErrCodeConnection},
		{"readonly", sqlite3.Error{Code: sqlite3.ErrReadonly}, ErrCodePermission},
		{"full", sqlite3.Error{Code: sqlite3.ErrFull}, ErrCodeDiskSpace},
		{"corrupt", sqlite3.Error{Code: sqlite3.ErrCorrupt}, ErrCodeCorruption},
		{"schema", sqlite3.Error{Code: sqlite3.ErrSchema}, ErrCodeSchema},
		{"misuse", sqlite3.Error{Code: sqlite3.ErrMisuse}, ErrCodeInternal},
		{
			"wrapped driver error",
			fmt.Errorf("exec: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}),
			ErrCodeDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifySQLiteError(tt.err); got != tt.expected {
				t.Errorf("classifySQLiteError() = %v, want %v", got, tt.expected)
			}
		})
	}
}
