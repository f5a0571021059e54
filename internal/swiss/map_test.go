package swiss

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMap() *Map[string, int] {
	seed := NewSeed()
	return New[string, int](NewStringHasher(seed))
}

func TestInsertGetDelete(t *testing.T) {
	m := newTestMap()
	require.True(t, m.Insert("a", 1))
	require.False(t, m.Insert("a", 2)) // overwrite, not a new key
	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v)

	require.True(t, m.Delete("a"))
	require.False(t, m.Delete("a"))
	_, ok = m.Get("a")
	require.False(t, ok)
}

func TestGrowsPastInitialCapacity(t *testing.T) {
	m := newTestMap()
	const n = 10_000
	for i := 0; i < n; i++ {
		m.Insert(fmt.Sprintf("key-%d", i), i)
	}
	require.Equal(t, n, m.Len())
	for i := 0; i < n; i++ {
		v, ok := m.Get(fmt.Sprintf("key-%d", i))
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestDeleteThenReinsertSurvivesTombstones(t *testing.T) {
	m := newTestMap()
	const n = 2000
	for i := 0; i < n; i++ {
		m.Insert(fmt.Sprintf("k%d", i), i)
	}
	for i := 0; i < n; i += 2 {
		require.True(t, m.Delete(fmt.Sprintf("k%d", i)))
	}
	require.Equal(t, n/2, m.Len())
	for i := 0; i < n; i += 2 {
		m.Insert(fmt.Sprintf("k%d", i), i*10)
	}
	require.Equal(t, n, m.Len())
	for i := 0; i < n; i++ {
		v, ok := m.Get(fmt.Sprintf("k%d", i))
		require.True(t, ok)
		if i%2 == 0 {
			require.Equal(t, i*10, v)
		} else {
			require.Equal(t, i, v)
		}
	}
}

func TestRangeVisitsEveryLiveEntry(t *testing.T) {
	m := newTestMap()
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		m.Insert(k, v)
	}
	got := make(map[string]int)
	m.Range(func(k string, v int) bool {
		got[k] = v
		return true
	})
	require.Equal(t, want, got)
}

func TestRangeStopsEarly(t *testing.T) {
	m := newTestMap()
	for i := 0; i < 100; i++ {
		m.Insert(fmt.Sprintf("k%d", i), i)
	}
	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return visited < 5
	})
	require.Equal(t, 5, visited)
}

func TestClearResetsState(t *testing.T) {
	m := newTestMap()
	m.Insert("a", 1)
	m.Clear()
	require.Equal(t, 0, m.Len())
	require.False(t, m.Contains("a"))
	m.Insert("a", 1)
	v, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestReserveAvoidsGrowthDuringBulkInsert(t *testing.T) {
	m := newTestMap()
	m.Reserve(1000)
	capBefore := m.capacity
	for i := 0; i < 1000; i++ {
		m.Insert(fmt.Sprintf("k%d", i), i)
	}
	require.Equal(t, capBefore, m.capacity)
}

func TestSipHashIsDeterministicPerSeed(t *testing.T) {
	seed := NewSeed()
	h := NewStringHasher(seed)
	require.Equal(t, h("hello"), h("hello"))
}

func TestSipHashDiffersAcrossSeeds(t *testing.T) {
	h1 := NewStringHasher(NewSeed())
	h2 := NewStringHasher(NewSeed())
	require.NotEqual(t, h1("hello"), h2("hello"), "one key hashing alike under two random seeds is astronomically unlikely")
}

func TestCapacityToGrowthSpecialCase(t *testing.T) {
	require.Equal(t, 6, capacityToGrowth(7))
	require.Equal(t, 15-1, capacityToGrowth(15))
}

func TestNormalizeCapacityRoundsToPowerOfTwoMinusOne(t *testing.T) {
	require.Equal(t, 1, normalizeCapacity(0))
	require.Equal(t, 1, normalizeCapacity(1))
	require.Equal(t, 3, normalizeCapacity(2))
	require.Equal(t, 7, normalizeCapacity(5))
	require.Equal(t, 15, normalizeCapacity(9))
}
