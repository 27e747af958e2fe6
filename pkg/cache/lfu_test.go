package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/coworking/errors"
)

func newTestLFU(t *testing.T, capacity int) *lfuCache[int64, string] {
	t.Helper()
	c, err := NewLFU[int64, string](capacity)
	require.NoError(t, err)
	return c.(*lfuCache[int64, string])
}

func requireFrequency(t *testing.T, c *lfuCache[int64, string], key int64, want int) {
	t.Helper()
	freq, ok := c.frequency(key)
	require.True(t, ok, "key %d should be cached", key)
	assert.Equal(t, want, freq, "frequency of key %d", key)
}

func TestLFU_RejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -100} {
		c, err := NewLFU[int64, string](capacity)
		require.Error(t, err)
		assert.Nil(t, c)
		assert.True(t, errors.IsInvalid(err))
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	}
}

func TestLFU_BaselineFrequencyIsOne(t *testing.T) {
	c := newTestLFU(t, 4)

	c.Put(1, "a")
	requireFrequency(t, c, 1, 1)

	c.Get(1)
	requireFrequency(t, c, 1, 2)

	// Updating an existing key counts as an access
	c.Put(1, "b")
	requireFrequency(t, c, 1, 3)

	// Misses leave state untouched
	_, ok := c.Get(2)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Size())
}

func TestLFU_EvictsLowestFrequency(t *testing.T) {
	// capacity 2: put 1, put 2, get 1, put 3 evicts 2
	c := newTestLFU(t, 2)

	c.Put(1, "a")
	c.Put(2, "b")
	assert.ElementsMatch(t, []int64{1, 2}, c.Keys())

	value, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "a", value)
	requireFrequency(t, c, 1, 2)
	requireFrequency(t, c, 2, 1)

	c.Put(3, "c")

	assert.ElementsMatch(t, []int64{1, 3}, c.Keys())
	_, ok = c.Get(2)
	assert.False(t, ok, "key 2 should have been evicted")
}

func TestLFU_EvictsUntouchedKeyAmongThree(t *testing.T) {
	c := newTestLFU(t, 3)

	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	c.Get(1)
	c.Get(1)
	c.Get(2)

	requireFrequency(t, c, 1, 3)
	requireFrequency(t, c, 2, 2)
	requireFrequency(t, c, 3, 1)

	c.Put(4, "d")

	_, ok := c.Get(3)
	assert.False(t, ok, "key 3 should have been evicted")
	assert.ElementsMatch(t, []int64{1, 2, 4}, c.Keys())
}

func TestLFU_TieBreaksByLeastRecentAccess(t *testing.T) {
	t.Run("insertion order", func(t *testing.T) {
		c := newTestLFU(t, 2)
		c.Put(1, "a")
		c.Put(2, "b")
		c.Put(3, "c")

		_, ok := c.Get(1)
		assert.False(t, ok, "oldest of equal frequency should go first")
		assert.ElementsMatch(t, []int64{2, 3}, c.Keys())
	})

	t.Run("access refreshes recency", func(t *testing.T) {
		c := newTestLFU(t, 2)
		c.Put(1, "a")
		c.Put(2, "b")
		c.Get(1)
		c.Get(2) // both at frequency 2, key 1 touched longer ago
		c.Put(3, "c")

		_, ok := c.Get(1)
		assert.False(t, ok)
		assert.ElementsMatch(t, []int64{2, 3}, c.Keys())
	})

	t.Run("put refreshes recency", func(t *testing.T) {
		c := newTestLFU(t, 2)
		c.Put(1, "a")
		c.Put(2, "b")
		c.Put(1, "a2")
		c.Put(2, "b2") // both at frequency 2, key 1 written longer ago
		c.Put(3, "c")

		_, ok := c.Get(1)
		assert.False(t, ok)
		assert.ElementsMatch(t, []int64{2, 3}, c.Keys())
	})
}

func TestLFU_FrequentKeyResistsEviction(t *testing.T) {
	c := newTestLFU(t, 3)

	c.Put(1, "hot")
	for i := 0; i < 10; i++ {
		c.Get(1)
	}

	for key := int64(2); key < 50; key++ {
		c.Put(key, "cold")
		value, ok := c.Get(1)
		require.True(t, ok, "hot key evicted after inserting %d", key)
		assert.Equal(t, "hot", value)
	}

	freq, _ := c.frequency(1)
	assert.GreaterOrEqual(t, freq, 11)
}

func TestLFU_UpdateDoesNotEvict(t *testing.T) {
	var evicted []int64
	c, err := NewLFU[int64, string](2, WithEvictionCallback[int64, string](func(key int64, _ string) {
		evicted = append(evicted, key)
	}))
	require.NoError(t, err)

	c.Put(1, "a")
	c.Put(2, "b")
	assert.False(t, c.Put(1, "a2"))
	assert.False(t, c.Put(2, "b2"))

	assert.Empty(t, evicted)
	assert.Equal(t, 2, c.Size())

	value, _ := c.Get(1)
	assert.Equal(t, "a2", value)
}

func TestLFU_RemoveIsIdempotent(t *testing.T) {
	c := newTestLFU(t, 3)
	c.Put(1, "a")
	c.Put(2, "b")

	assert.False(t, c.Remove(42))
	assert.True(t, c.Remove(1))
	assert.False(t, c.Remove(1))

	assert.Equal(t, []int64{2}, c.Keys())
	assert.Equal(t, 1, c.Size())
}

func TestLFU_RemoveOfMinimumKeepsEvictionCorrect(t *testing.T) {
	c := newTestLFU(t, 3)

	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	c.Get(2)
	c.Get(2)
	c.Get(3)

	// Frequencies: 1→1, 2→3, 3→2. Removing 1 empties the lowest bucket.
	c.Remove(1)
	c.Put(4, "d")
	c.Get(4)
	c.Get(4) // 4→3, newer than 2

	// Full again: {2:3, 3:2, 4:3}. Next insert must evict 3.
	c.Put(5, "e")

	_, ok := c.Get(3)
	assert.False(t, ok)
	assert.ElementsMatch(t, []int64{2, 4, 5}, c.Keys())
}

func TestLFU_KeysOrder(t *testing.T) {
	c := newTestLFU(t, 4)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	c.Get(3)
	c.Get(3)
	c.Get(1)

	// 3 (freq 3), 1 (freq 2), then 2 (freq 1) which is next in line for eviction
	assert.Equal(t, []int64{3, 1, 2}, c.Keys())
}

func TestLFU_ReadYourWrite(t *testing.T) {
	c := newTestLFU(t, 5)
	for key := int64(0); key < 100; key++ {
		value := string(rune('a' + key%26))
		c.Put(key, value)
		got, ok := c.Get(key)
		require.True(t, ok)
		assert.Equal(t, value, got)
	}
}

func TestLFU_ConcurrentPutsRespectCapacity(t *testing.T) {
	const capacity = 100
	c := newTestLFU(t, capacity)

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(offset int64) {
			defer wg.Done()
			for i := int64(0); i < 500; i++ {
				key := offset*1000 + i
				c.Put(key, "v")
				c.Get(key % 7)
				if i%3 == 0 {
					c.Remove(key - 1)
				}
			}
		}(int64(g))
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), capacity)

	// Internal structures stay consistent with the key index
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for freq, bucket := range c.buckets {
		assert.Positive(t, bucket.Len(), "empty bucket %d left behind", freq)
		total += bucket.Len()
		assert.GreaterOrEqual(t, freq, c.minFreq)
	}
	assert.Equal(t, len(c.items), total)
}
