package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := GenerateRandomID()
		require.NoError(t, err)
		assert.Len(t, id, 32)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestUniqueID_FirstFree(t *testing.T) {
	calls := 0
	id, err := UniqueID(func(string) (bool, error) {
		calls++
		return false, nil
	})
	require.NoError(t, err)
	assert.Len(t, id, 32)
	assert.Equal(t, 1, calls)
}

func TestUniqueID_RetriesTakenIDs(t *testing.T) {
	calls := 0
	_, err := UniqueID(func(string) (bool, error) {
		calls++
		return calls < 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestUniqueID_Exhausted(t *testing.T) {
	_, err := UniqueID(func(string) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, ErrIDExhausted)
}

func TestUniqueID_LookupError(t *testing.T) {
	boom := errors.New("boom")
	_, err := UniqueID(func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
