package main

import (
	"fmt"
	"runtime"
	"testing"

	"pgregory.net/rand"
)

func randString(r *rand.Rand, length int) string {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	r.Read(b)
	for i := range length {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b)
}

// Bench drives a dataset of random string keys / int values through a
// Map[int] implementation's insert and lookup paths, unchanged in shape
// from the teacher's generic Bench[K,V].
type Bench struct {
	m      func() Map[int]
	keys   []string
	values []int
}

// New builds a Bench with size random entries seeded by seed.
func New(size, seed uint64, m func() Map[int]) Bench {
	b := Bench{m: m, keys: make([]string, size), values: make([]int, size)}
	r := rand.New(seed)
	for i := range size {
		b.keys[i] = randString(r, 16)
		b.values[i] = r.Int()
	}
	return b
}

func (bench *Bench) benchmarkInsert(b *testing.B) {
	for i := 0; b.Loop(); i++ {
		m := bench.m()
		for i, key := range bench.keys {
			m.Set(key, bench.values[i])
		}
	}
}

func (bench *Bench) benchmarkLookup(b *testing.B) {
	m := bench.m()
	for i, key := range bench.keys {
		m.Set(key, bench.values[i])
	}
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		_, _ = m.Get(bench.keys[i%len(bench.keys)])
	}
}

func measureMemoryUsage() {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	fmt.Printf("Memory Usage: Alloc = %v KB, Sys = %v KB, NumGC = %v\n", m.Alloc/1024, m.Sys/1024, m.NumGC)
}

// Run executes the insert and lookup benchmarks and prints their results
// alongside a memory-usage snapshot.
func (bench *Bench) Run() {
	t := testing.Benchmark(bench.benchmarkInsert)
	fmt.Printf("Insert: %v\n", t)

	t = testing.Benchmark(bench.benchmarkLookup)
	fmt.Printf("Lookup: %v\n", t)

	measureMemoryUsage()
}
