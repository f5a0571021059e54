package swiss

import "math/bits"

// Bitmask packs one flag bit per control-byte lane into the MSB of each
// byte of a uint64, exactly as vmap_bitmask does for the portable (non-SSE2)
// backend in vmap.h. Iterating the set lanes from lowest to highest gives
// the probe order within a Group.
type Bitmask uint64

// Any reports whether any lane matched.
func (m Bitmask) Any() bool { return m != 0 }

// LowestIndex returns the slot index (0..GroupWidth-1) of the
// lowest-numbered matching lane. Callers must check Any() first.
func (m Bitmask) LowestIndex() int { return bits.TrailingZeros64(uint64(m)) >> 3 }

// Next clears the lowest set lane, matching vmap_bitmask_next's walk order.
func (m Bitmask) Next() Bitmask { return m & (m - 1) }

// LeadingZeroLanes returns how many of the highest-numbered lanes are
// clear, used by eraseMetaOnly's was_never_full check and by
// findFirstNonFull to pick the highest free lane when inserting backwards.
func (m Bitmask) LeadingZeroLanes() int { return bits.LeadingZeros64(uint64(m)) >> 3 }

// TrailingZeroLanes returns how many of the lowest-numbered lanes are
// clear, used by eraseMetaOnly's was_never_full check.
func (m Bitmask) TrailingZeroLanes() int {
	if m == 0 {
		return GroupWidth
	}
	return bits.TrailingZeros64(uint64(m)) >> 3
}
