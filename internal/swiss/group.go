package swiss

import (
	"encoding/binary"
	"math/bits"
)

// GroupWidth is the number of control bytes handled together. The original
// library uses 16 lanes when SSE2 is available and 8 otherwise; this port
// always uses the portable 8-lane SWAR form (vmap.h's `#else` branch) since
// there is no way to verify hand-written SIMD assembly without running the
// Go toolchain's assembler.
const GroupWidth = 8

const (
	ctrlEmpty    byte = 0x80 // -128, matches VMAP_EMPTY
	ctrlDeleted  byte = 0xFE // -2, matches VMAP_DELETED
	ctrlSentinel byte = 0xFF // -1, matches VMAP_SENTINEL
)

const (
	msbs uint64 = 0x8080808080808080
	lsbs uint64 = 0x0101010101010101
)

// Group is eight control bytes loaded as a little-endian uint64, the exact
// layout vmap_group_match and friends operate on in the portable backend.
type Group uint64

// LoadGroup reads GroupWidth bytes starting at ctrl[offset:] into a Group.
// The caller is responsible for offset+GroupWidth staying in bounds, which
// the cloned tail (see Map.setCtrl) guarantees for every valid probe
// position.
func LoadGroup(ctrl []byte, offset int) Group {
	return Group(binary.LittleEndian.Uint64(ctrl[offset : offset+GroupWidth]))
}

// Match returns a Bitmask of the lanes whose control byte equals h2.
func (g Group) Match(h2 byte) Bitmask {
	x := uint64(g) ^ (lsbs * uint64(h2))
	return Bitmask((x - lsbs) &^ x & msbs)
}

// MatchEmpty returns a Bitmask of the Empty lanes.
func (g Group) MatchEmpty() Bitmask {
	x := uint64(g)
	return Bitmask(x & (^x << 6) & msbs)
}

// MatchEmptyOrDeleted returns a Bitmask of the lanes that are Empty or
// Deleted (i.e. not Full, since Sentinel never appears inside a live
// group's occupied range other than the fixed sentinel slot).
func (g Group) MatchEmptyOrDeleted() Bitmask {
	x := uint64(g)
	return Bitmask(x & (^x << 7) & msbs)
}

// CountLeadingEmptyOrDeleted returns how many lanes, starting from lane 0,
// are Empty or Deleted before the first Full lane is hit. Iteration uses
// this to skip whole runs of unoccupied slots in one step.
func (g Group) CountLeadingEmptyOrDeleted() int {
	const gaps uint64 = 0x00FEFEFEFEFEFEFE
	x := uint64(g)
	return (bits.TrailingZeros64(((^x&(x>>7))|gaps)+1) + 7) >> 3
}

// ConvertSpecialToEmptyAndFullToDeleted rewrites the group so that Empty,
// Deleted and Sentinel lanes become Empty and Full lanes become Deleted,
// the per-group step of the original's drop-deletes-without-resize. Map's
// in-place rehash rebuilds the table instead and does not call it.
func (g Group) ConvertSpecialToEmptyAndFullToDeleted() Group {
	x := uint64(g) & msbs
	res := (^x + (x >> 7)) &^ lsbs
	return Group(res)
}
