// Command lexid-bench benchmarks the keyspace engine (internal/swiss)
// against the Go builtin map, adapted directly from the teacher
// swisstable-bench's main.go/bench.go: the CLI flags, the Map interface,
// the Bench harness and the insert/lookup benchmark pair all carry over.
// The teacher's third-party-map wrappers (cockroachdb/crn4/dolthub) are
// gone, since this repo's own engine is now the thing worth measuring.
package main

import (
	"flag"
	"fmt"

	"github.com/lexidb/lexid/internal/swiss"
)

// Map is the benchmarking seam the teacher's harness drives every
// implementation through.
type Map[V any] interface {
	Get(string) (V, bool)
	Set(string, V)
	Delete(string)
}

type builtinMap[V any] struct {
	data map[string]V
}

func newBuiltinMap[V any]() *builtinMap[V] {
	return &builtinMap[V]{data: make(map[string]V)}
}

func (m *builtinMap[V]) Get(key string) (V, bool) { v, ok := m.data[key]; return v, ok }
func (m *builtinMap[V]) Set(key string, v V)      { m.data[key] = v }
func (m *builtinMap[V]) Delete(key string)        { delete(m.data, key) }

type swissMap[V any] struct {
	data *swiss.Map[string, V]
}

func newSwissMap[V any]() *swissMap[V] {
	seed := swiss.NewSeed()
	return &swissMap[V]{data: swiss.New[string, V](swiss.NewStringHasher(seed))}
}

func (m *swissMap[V]) Get(key string) (V, bool) { return m.data.Get(key) }
func (m *swissMap[V]) Set(key string, v V)      { m.data.Insert(key, v) }
func (m *swissMap[V]) Delete(key string)        { m.data.Delete(key) }

func main() {
	var (
		seed, size uint64
		mapType    string
	)
	flag.Uint64Var(&seed, "seed", 1234, "seed value for the dataset generator")
	flag.Uint64Var(&size, "dataset-size", 1_000_000, "number of keys in the dataset")
	flag.StringVar(&mapType, "map-type", "swiss", "swiss/std")
	flag.Parse()

	build := func() Map[int] { return newSwissMap[int]() }
	if mapType == "std" {
		build = func() Map[int] { return newBuiltinMap[int]() }
	}

	b := New(size, seed, build)

	fmt.Println("Running keyspace engine benchmarks")
	b.Run()
}
