package swiss

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupMatchFindsExactH2Lanes(t *testing.T) {
	ctrl := make([]byte, GroupWidth+GroupWidth-1)
	for i := range ctrl {
		ctrl[i] = ctrlEmpty
	}
	ctrl[2] = 0x15
	ctrl[5] = 0x15
	g := LoadGroup(ctrl, 0)
	mb := g.Match(0x15)
	require.True(t, mb.Any())
	require.Equal(t, 2, mb.LowestIndex())
	mb = mb.Next()
	require.Equal(t, 5, mb.LowestIndex())
	mb = mb.Next()
	require.False(t, mb.Any())
}

func TestGroupMatchEmpty(t *testing.T) {
	ctrl := make([]byte, GroupWidth)
	for i := range ctrl {
		ctrl[i] = 0x03 // Full
	}
	ctrl[4] = ctrlEmpty
	g := LoadGroup(ctrl, 0)
	mb := g.MatchEmpty()
	require.True(t, mb.Any())
	require.Equal(t, 4, mb.LowestIndex())
}

func TestGroupMatchEmptyOrDeleted(t *testing.T) {
	ctrl := make([]byte, GroupWidth)
	for i := range ctrl {
		ctrl[i] = 0x03
	}
	ctrl[1] = ctrlDeleted
	ctrl[6] = ctrlEmpty
	g := LoadGroup(ctrl, 0)
	mb := g.MatchEmptyOrDeleted()
	require.Equal(t, 1, mb.LowestIndex())
	mb = mb.Next()
	require.Equal(t, 6, mb.LowestIndex())
}

func TestCountLeadingEmptyOrDeletedAllEmpty(t *testing.T) {
	ctrl := make([]byte, GroupWidth)
	for i := range ctrl {
		ctrl[i] = ctrlEmpty
	}
	g := LoadGroup(ctrl, 0)
	require.Equal(t, GroupWidth, g.CountLeadingEmptyOrDeleted())
}

func TestCountLeadingEmptyOrDeletedStopsAtFull(t *testing.T) {
	ctrl := make([]byte, GroupWidth)
	ctrl[0] = ctrlEmpty
	ctrl[1] = ctrlDeleted
	ctrl[2] = 0x42 // Full
	for i := 3; i < GroupWidth; i++ {
		ctrl[i] = ctrlEmpty
	}
	g := LoadGroup(ctrl, 0)
	require.Equal(t, 2, g.CountLeadingEmptyOrDeleted())
}
