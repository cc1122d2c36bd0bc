package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator_DrawUniqueUntilExhausted(t *testing.T) {
	a := newAllocator("ROOM1")
	const size = 20

	seen := make(map[int]bool, size)
	for i := 0; i < size; i++ {
		idx, err := a.Draw("word", size)
		require.NoError(t, err)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, size)
		assert.False(t, seen[idx], "index %d drawn twice before exhaustion", idx)
		seen[idx] = true
	}

	// every index was handed out exactly once
	assert.Len(t, seen, size)

	// the next draw refills and must still be in range
	idx, err := a.Draw("word", size)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, idx, 0)
	assert.Less(t, idx, size)
}

func TestAllocator_EmptyPool(t *testing.T) {
	a := newAllocator("ROOM1")

	_, err := a.Draw("word", 0)
	assert.ErrorIs(t, err, errEmptyPool)

	_, err = a.Draw("word", -3)
	assert.ErrorIs(t, err, errEmptyPool)
}

func TestAllocator_PoolsAreIndependent(t *testing.T) {
	a := newAllocator("ROOM1")

	// exhaust one pool entirely
	for i := 0; i < 5; i++ {
		_, err := a.Draw("word", 5)
		require.NoError(t, err)
	}

	// a different pool key still yields a full permutation
	seen := make(map[int]bool)
	for i := 0; i < 5; i++ {
		idx, err := a.Draw("location", 5)
		require.NoError(t, err)
		seen[idx] = true
	}
	assert.Len(t, seen, 5)
}

func TestAllocator_SizeChangeDiscardsPool(t *testing.T) {
	a := newAllocator("ROOM1")

	_, err := a.Draw("word", 10)
	require.NoError(t, err)

	// switching to a differently sized catalog (e.g. a custom word list
	// replaced server-side) must not reuse stale indices
	for i := 0; i < 4; i++ {
		idx, err := a.Draw("word", 4)
		require.NoError(t, err)
		assert.Less(t, idx, 4)
	}
}

func TestAllocator_SingleItemCycles(t *testing.T) {
	a := newAllocator("ROOM1")

	for i := 0; i < 3; i++ {
		idx, err := a.Draw("word", 1)
		require.NoError(t, err)
		assert.Zero(t, idx)
	}
}
