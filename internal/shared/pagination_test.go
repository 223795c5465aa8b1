package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 15, 31)
	require.Equal(t, 2, p.Page)
	require.Equal(t, 15, p.PerPage)
	require.Equal(t, 31, p.Total)
	require.Equal(t, 3, p.TotalPages)
	require.Equal(t, 15, p.Offset())

	// Defaults kick in for out-of-range inputs.
	p = NewPagination(0, -1, 10)
	require.Equal(t, 1, p.Page)
	require.Equal(t, 15, p.PerPage)
	require.Equal(t, 1, p.TotalPages)
	require.Zero(t, p.Offset())
}
