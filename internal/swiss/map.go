// Package swiss implements the keyspace engine: an open-addressed,
// SwissTable-style hash map with 8-byte (portable SWAR) control groups, a
// cloned control-byte tail, tombstone-aware deletion and a
// load-factor-driven choice between in-place rehash and true growth.
package swiss

import (
	"math/bits"

	"pgregory.net/rand"
)

// Hasher computes a 64-bit hash of a key. It replaces the void*-based
// vtable dispatch (vmap_type's hash function pointer) with an ordinary Go
// function value, closing over whatever per-map seed it needs.
type Hasher[K any] func(key K) uint64

// NewStringHasher returns a Hasher keyed by seed, computing SipHash-2-4
// over the key's bytes. This is the Hasher used by the keyspace databases;
// Map itself stays key-type agnostic.
func NewStringHasher(seed [SeedSize]byte) Hasher[string] {
	return func(key string) uint64 {
		return siphash(seed[:], []byte(key))
	}
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Map is a generic open-addressed hash table. The zero Map is not usable;
// construct one with New.
type Map[K comparable, V any] struct {
	ctrl       []byte
	slots      []entry[K, V]
	capacity   int // always of the form 2^n - 1, used directly as a mask; 0 means unallocated
	size       int
	growthLeft int
	hash       Hasher[K]
	randomSeed uint64 // per-map constant driving the insert-backwards tie-break
}

// New constructs an empty Map that hashes keys with hash.
func New[K comparable, V any](hash Hasher[K]) *Map[K, V] {
	return &Map[K, V]{hash: hash, randomSeed: rand.Uint64()}
}

// Len returns the number of live entries.
func (m *Map[K, V]) Len() int { return m.size }

// Clear empties the map, releasing its backing storage.
func (m *Map[K, V]) Clear() {
	m.ctrl = nil
	m.slots = nil
	m.capacity = 0
	m.size = 0
	m.growthLeft = 0
}

func isFull(b byte) bool { return b&0x80 == 0 }

// newEmptyCtrl allocates a control array for capacity live slots: capacity
// bytes of control, one Sentinel byte, and GroupWidth-1 cloned bytes at the
// tail so that any GroupWidth-aligned read starting within [0,capacity)
// never runs off the end of the slice.
func newEmptyCtrl(capacity int) []byte {
	ctrl := make([]byte, capacity+GroupWidth)
	for i := range ctrl {
		ctrl[i] = ctrlEmpty
	}
	ctrl[capacity] = ctrlSentinel
	copy(ctrl[capacity+1:], ctrl[:GroupWidth-1])
	return ctrl
}

// setCtrl writes h at i and at i's mirror: for i among the first
// GroupWidth-1 positions the mirror is its copy in the cloned tail, and for
// every other i the mirrored index is i itself. This is the index
// arithmetic vmap_set_ctrl uses so a group read is never required to wrap
// around the end of the array.
func (m *Map[K, V]) setCtrl(i int, h byte) {
	m.ctrl[i] = h
	const numCloned = GroupWidth - 1
	mirrored := ((i - numCloned) & m.capacity) + (numCloned & m.capacity)
	m.ctrl[mirrored] = h
}

func capacityToGrowth(capacity int) int {
	if GroupWidth == 8 && capacity == 7 {
		return 6
	}
	return capacity - capacity/8
}

// normalizeCapacity rounds n up to the nearest value of the form 2^k - 1,
// which is required so that capacity can double as a bitmask.
func normalizeCapacity(n uint64) int {
	if n == 0 {
		return 1
	}
	return int((^uint64(0))>>bits.LeadingZeros64(n)) // smallest 2^k-1 >= n
}

type probeSeq struct {
	mask, offset, index int
}

func newProbeSeq(hash uint64, mask int) probeSeq {
	return probeSeq{mask: mask, offset: int(hash>>7) & mask}
}

func (p *probeSeq) next() {
	p.index += GroupWidth
	p.offset = (p.offset + p.index) & p.mask
}

func (p probeSeq) offsetAt(i int) int { return (p.offset + i) & p.mask }

func (m *Map[K, V]) shouldInsertBackwards(hash uint64) bool {
	h1 := hash >> 7
	return (h1^m.randomSeed)%13 > 6
}

// find returns the slot index holding key, if any.
func (m *Map[K, V]) find(key K, hash uint64) (int, bool) {
	if m.capacity == 0 {
		return 0, false
	}
	h2 := byte(hash & 0x7f)
	seq := newProbeSeq(hash, m.capacity)
	for {
		group := LoadGroup(m.ctrl, seq.offset)
		for mb := group.Match(h2); mb.Any(); mb = mb.Next() {
			idx := seq.offsetAt(mb.LowestIndex())
			if m.slots[idx].key == key {
				return idx, true
			}
		}
		if group.MatchEmpty().Any() {
			return 0, false
		}
		seq.next()
	}
}

// Get reports whether key is present and, if so, its value.
func (m *Map[K, V]) Get(key K) (V, bool) {
	idx, found := m.find(key, m.hash(key))
	if !found {
		var zero V
		return zero, false
	}
	return m.slots[idx].value, true
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, found := m.find(key, m.hash(key))
	return found
}

// findFirstNonFull locates the first Empty or Deleted slot along key's
// probe sequence, without triggering growth; callers must already have
// ensured enough growth budget (or be rebuilding the table from scratch).
func (m *Map[K, V]) findFirstNonFull(hash uint64) int {
	seq := newProbeSeq(hash, m.capacity)
	backwards := m.shouldInsertBackwards(hash)
	for {
		group := LoadGroup(m.ctrl, seq.offset)
		mb := group.MatchEmptyOrDeleted()
		if mb.Any() {
			lane := mb.LowestIndex()
			if backwards {
				lane = 7 - mb.LeadingZeroLanes()
			}
			return seq.offsetAt(lane)
		}
		seq.next()
	}
}

// prepareInsert locates (and, if necessary, grows or rehashes the table to
// make room for) the slot where hash's entry belongs.
func (m *Map[K, V]) prepareInsert(hash uint64) int {
	if m.capacity == 0 {
		m.rehash(1)
	}
	for {
		idx := m.findFirstNonFull(hash)
		if m.growthLeft == 0 && m.ctrl[idx] != ctrlDeleted {
			m.rehashAndGrowIfNecessary()
			continue
		}
		if m.ctrl[idx] == ctrlEmpty {
			m.growthLeft--
		}
		return idx
	}
}

// Insert sets key to value, returning true if this created a new entry and
// false if it overwrote an existing one.
func (m *Map[K, V]) Insert(key K, value V) bool {
	hash := m.hash(key)
	if idx, found := m.find(key, hash); found {
		m.slots[idx] = entry[K, V]{key: key, value: value}
		return false
	}
	idx := m.prepareInsert(hash)
	m.setCtrl(idx, byte(hash&0x7f))
	m.slots[idx] = entry[K, V]{key: key, value: value}
	m.size++
	return true
}

// Delete removes key if present, reporting whether anything was removed.
func (m *Map[K, V]) Delete(key K) bool {
	hash := m.hash(key)
	idx, found := m.find(key, hash)
	if !found {
		return false
	}
	m.eraseMetaOnly(idx)
	var zero entry[K, V]
	m.slots[idx] = zero
	m.size--
	return true
}

// eraseMetaOnly marks idx free, choosing Empty over Deleted (and refunding
// growth budget) whenever neighboring groups prove no probe sequence could
// ever have depended on idx staying non-Empty — the same was_never_full
// check vmap_raw_map_erase_meta_only performs.
func (m *Map[K, V]) eraseMetaOnly(idx int) {
	indexBefore := (idx - GroupWidth) & m.capacity
	emptyAfter := LoadGroup(m.ctrl, idx).MatchEmpty()
	emptyBefore := LoadGroup(m.ctrl, indexBefore).MatchEmpty()

	wasNeverFull := emptyBefore.Any() && emptyAfter.Any() &&
		emptyAfter.TrailingZeroLanes()+emptyBefore.LeadingZeroLanes() < GroupWidth

	if wasNeverFull {
		m.setCtrl(idx, ctrlEmpty)
		m.growthLeft++
	} else {
		m.setCtrl(idx, ctrlDeleted)
	}
}

// rehashAndGrowIfNecessary picks between reclaiming tombstones in place
// (when the live/capacity ratio is low enough that a resize would be
// wasted work) and doubling capacity, the 25/32 vs. 7/8 policy split.
func (m *Map[K, V]) rehashAndGrowIfNecessary() {
	if m.capacity == 0 {
		m.rehash(1)
		return
	}
	if m.capacity > GroupWidth && m.size*32 <= m.capacity*25 {
		m.rehash(m.capacity) // reclaim tombstones without growing
	} else {
		m.rehash(m.capacity*2 + 1) // double capacity
	}
}

// rehash rebuilds the table at newCapacity, reinserting every live entry.
// This also implements the in-place tombstone reclaim path: called with
// newCapacity == m.capacity, it is behaviorally equivalent to the
// original's scratch-slot three-way-swap reclaim (every live entry ends up
// at the position its probe sequence would place it at in a tombstone-free
// table of the same capacity) without mutating entries still mid-probe.
func (m *Map[K, V]) rehash(newCapacity int) {
	oldCtrl, oldSlots, oldCapacity := m.ctrl, m.slots, m.capacity

	m.capacity = newCapacity
	m.ctrl = newEmptyCtrl(newCapacity)
	m.slots = make([]entry[K, V], newCapacity)
	m.growthLeft = capacityToGrowth(newCapacity)

	for i := 0; i < oldCapacity; i++ {
		if !isFull(oldCtrl[i]) {
			continue
		}
		e := oldSlots[i]
		hash := m.hash(e.key)
		idx := m.findFirstNonFull(hash)
		m.setCtrl(idx, byte(hash&0x7f))
		m.slots[idx] = e
		m.growthLeft--
	}
}

// Reserve ensures the table can accept n additional insertions without a
// further grow/rehash.
func (m *Map[K, V]) Reserve(n int) {
	if n <= m.growthLeft {
		return
	}
	needed := uint64(m.size + n)
	newCap := normalizeCapacity(needed)
	for capacityToGrowth(newCap) < int(needed) {
		newCap = newCap*2 + 1
	}
	m.rehash(newCap)
}

// Range calls fn for every live entry, stopping early if fn returns false.
// Iteration order is unspecified, matching a hash table's usual contract.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for i := 0; i < m.capacity; {
		if isFull(m.ctrl[i]) {
			if !fn(m.slots[i].key, m.slots[i].value) {
				return
			}
			i++
			continue
		}
		skip := LoadGroup(m.ctrl, i).CountLeadingEmptyOrDeleted()
		if skip == 0 {
			skip = 1
		}
		i += skip
	}
}
