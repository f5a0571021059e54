// Package database wraps the keyspace engine (internal/swiss) with the
// notion of a numbered database, matching lexi_db from server.c/server.h:
// an id plus a keys map, one per SELECT-able slot.
package database

import (
	"github.com/lexidb/lexid/internal/object"
	"github.com/lexidb/lexid/internal/swiss"
)

// Database is one SELECT-able keyspace.
type Database struct {
	ID   int
	keys *swiss.Map[string, object.Object]
}

// New constructs an empty database with id, seeding its keyspace engine
// with a fresh per-map SipHash seed (see swiss.NewSeed).
func New(id int) *Database {
	seed := swiss.NewSeed()
	return &Database{ID: id, keys: swiss.New[string, object.Object](swiss.NewStringHasher(seed))}
}

// Get returns the value at key, if present.
func (d *Database) Get(key string) (object.Object, bool) {
	return d.keys.Get(key)
}

// Set stores value at key, returning true if this created a new key.
func (d *Database) Set(key string, value object.Object) bool {
	return d.keys.Insert(key, value)
}

// Delete removes key, reporting whether it was present.
func (d *Database) Delete(key string) bool {
	return d.keys.Delete(key)
}

// Exists reports whether key is present.
func (d *Database) Exists(key string) bool {
	return d.keys.Contains(key)
}

// Keys returns every key currently present. Order is unspecified.
func (d *Database) Keys() []string {
	keys := make([]string, 0, d.keys.Len())
	d.keys.Range(func(k string, _ object.Object) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Len reports how many keys are live in this database.
func (d *Database) Len() int {
	return d.keys.Len()
}

// Flush clears every key from this database.
func (d *Database) Flush() {
	d.keys.Clear()
}
