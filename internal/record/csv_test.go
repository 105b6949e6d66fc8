package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRows(t *testing.T) {
	input := "user_id,username,email\nu1,alice,alice@example.com\nu2,bob,bob@example.com\n"

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "u1", rows[0]["user_id"])
	assert.Equal(t, "bob", rows[1]["username"])
}

func TestReadRows_RaggedRow(t *testing.T) {
	// A short row leaves trailing columns absent rather than failing the file.
	input := "user_id,username,email\nu1,alice\n"

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0]["username"])
	_, ok := rows[0]["email"]
	assert.False(t, ok)
}

func TestReadRows_EmptyInput(t *testing.T) {
	_, err := ReadRows(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header")
}

func TestReadRows_HeaderOnly(t *testing.T) {
	rows, err := ReadRows(strings.NewReader("user_id,username\n"))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFileNamesCoverAllEntityTypes(t *testing.T) {
	for _, entityType := range AllEntityTypes {
		assert.NotEmpty(t, FileNames[entityType], "missing file name for %s", entityType)
		assert.NotEmpty(t, IDColumns[entityType], "missing id column for %s", entityType)
	}
}
