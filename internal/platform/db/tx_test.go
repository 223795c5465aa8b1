package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestConflictPredicates(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	serial := &pgconn.PgError{Code: "40001"}

	require.True(t, IsUniqueViolation(unique))
	require.False(t, IsUniqueViolation(serial))
	require.True(t, IsSerializationFailure(serial))
	require.False(t, IsSerializationFailure(unique))

	// Wrapped errors still match.
	wrapped := fmt.Errorf("visitor: check in: %w", serial)
	require.True(t, IsSerializationFailure(wrapped))

	require.False(t, IsUniqueViolation(errors.New("pool closed")))
	require.False(t, IsSerializationFailure(nil))
}
