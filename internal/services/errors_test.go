package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsUniqueConstraintError(t *testing.T) {
	require.False(t, isUniqueConstraintError(nil))
	require.True(t, isUniqueConstraintError(gorm.ErrDuplicatedKey))
	require.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	require.True(t, isUniqueConstraintError(&mysql.MySQLError{Number: 1062}))
	require.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: entries.key")))
	require.True(t, isUniqueConstraintError(fmt.Errorf("insert: %w", errors.New("constraint failed: UNIQUE constraint failed: entries.key (2067)"))))
	require.False(t, isUniqueConstraintError(errors.New("FOREIGN KEY constraint failed")))
	require.False(t, isUniqueConstraintError(errors.New("duplicate column name: value")))
	require.False(t, isUniqueConstraintError(&mysql.MySQLError{Number: 1060, Message: "Duplicate column name 'value'"}))
	require.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "40001"}))
}

func TestPersistenceErrorKeepsDriverError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := persistenceError("entry service: put", cause)

	require.EqualError(t, err, "entry service: put: disk I/O error")
	require.ErrorIs(t, err, cause)

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	require.Same(t, cause, pe.Err)

	require.Same(t, err, persistenceError("outer", err))
	require.NoError(t, persistenceError("noop", nil))
}
