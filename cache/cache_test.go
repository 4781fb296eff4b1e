package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoMemoizesWithinTTL(t *testing.T) {
	store := New(time.Minute)
	calls := 0
	load := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	first, err := store.Do("key", load)
	require.NoError(t, err)
	second, err := store.Do("key", load)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 1, calls)
}

func TestDoRecomputesAfterExpiry(t *testing.T) {
	store := New(50 * time.Millisecond)
	calls := 0
	load := func() (interface{}, error) {
		calls++
		return calls, nil
	}

	_, err := store.Do("key", load)
	require.NoError(t, err)
	time.Sleep(80 * time.Millisecond)

	value, err := store.Do("key", load)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
	assert.Equal(t, 2, calls)
}

func TestDoKeysAreIndependent(t *testing.T) {
	store := New(time.Minute)
	a, err := store.Do("a", func() (interface{}, error) { return "alpha", nil })
	require.NoError(t, err)
	b, err := store.Do("b", func() (interface{}, error) { return "beta", nil })
	require.NoError(t, err)

	assert.Equal(t, "alpha", a)
	assert.Equal(t, "beta", b)
}

func TestDoNeverCachesErrors(t *testing.T) {
	store := New(time.Minute)
	boom := errors.New("db is down")

	_, err := store.Do("key", func() (interface{}, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	// The failed load left nothing behind, so the next call runs the loader
	value, err := store.Do("key", func() (interface{}, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
}

func TestGetAndFlush(t *testing.T) {
	store := New(time.Minute)

	_, ok := store.Get("key")
	assert.False(t, ok)

	_, err := store.Do("key", func() (interface{}, error) { return 42, nil })
	require.NoError(t, err)

	value, ok := store.Get("key")
	require.True(t, ok)
	assert.Equal(t, 42, value)

	store.Flush()
	_, ok = store.Get("key")
	assert.False(t, ok)
}
