package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakpointManager_AddBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, false)

	require.NotNil(t, bp)
	assert.Equal(t, 1, bp.ID)
	assert.Equal(t, 0x1000, bp.Address)
	assert.True(t, bp.Enabled, "breakpoint should be enabled by default")
	assert.False(t, bp.Temporary)
	assert.Equal(t, 0, bp.HitCount)
}

func TestBreakpointManager_AddMultiple(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(0x1000, false)
	bp2 := bm.AddBreakpoint(0x2000, false)

	assert.NotEqual(t, bp1.ID, bp2.ID, "breakpoint IDs should be unique")
	assert.Equal(t, 2, bm.Count())
}

func TestBreakpointManager_AddDuplicateUpdatesExisting(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(0x1000, false)
	bp2 := bm.AddBreakpoint(0x1000, true)

	require.Equal(t, bp1.ID, bp2.ID, "duplicate address should update the existing breakpoint")
	assert.True(t, bp2.Temporary, "temporary flag should be updated in place")
}

func TestBreakpointManager_DeleteBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, false)

	require.NoError(t, bm.DeleteBreakpoint(bp.ID))
	assert.Nil(t, bm.GetBreakpoint(0x1000), "breakpoint not deleted")

	err := bm.DeleteBreakpoint(999)
	assert.Error(t, err, "expected an error deleting a non-existent breakpoint")
}

func TestBreakpointManager_EnableDisable(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, false)

	require.NoError(t, bm.DisableBreakpoint(bp.ID))
	assert.False(t, bp.Enabled)

	require.NoError(t, bm.EnableBreakpoint(bp.ID))
	assert.True(t, bp.Enabled)
}

func TestBreakpointManager_GetBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x1000, false)
	bm.AddBreakpoint(0x2000, false)

	bp := bm.GetBreakpoint(0x1000)
	require.NotNil(t, bp)
	assert.Equal(t, 0x1000, bp.Address)

	assert.Nil(t, bm.GetBreakpoint(0x3000), "GetBreakpoint should return nil for a non-existent address")
}

func TestBreakpointManager_GetBreakpointByID(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(0x1000, false)
	bp2 := bm.AddBreakpoint(0x2000, false)

	assert.Same(t, bp1, bm.GetBreakpointByID(bp1.ID))
	assert.Same(t, bp2, bm.GetBreakpointByID(bp2.ID))
	assert.Nil(t, bm.GetBreakpointByID(999))
}

func TestBreakpointManager_GetAllBreakpoints(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x1000, false)
	bm.AddBreakpoint(0x2000, false)
	bm.AddBreakpoint(0x3000, false)

	assert.Len(t, bm.GetAllBreakpoints(), 3)
}

func TestBreakpointManager_Clear(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x1000, false)
	bm.AddBreakpoint(0x2000, false)

	bm.Clear()

	assert.Equal(t, 0, bm.Count())
}

func TestBreakpointManager_HasBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x1000, false)

	assert.True(t, bm.HasBreakpoint(0x1000))
	assert.False(t, bm.HasBreakpoint(0x2000))
}

func TestBreakpoint_Temporary(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, true)

	assert.True(t, bp.Temporary)
}

func TestBreakpoint_HitCount(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, false)
	assert.Equal(t, 0, bp.HitCount)

	bp.HitCount++
	bp.HitCount++

	assert.Equal(t, 2, bp.HitCount)
}

func TestBreakpointManager_ProcessHitDeletesTemporary(t *testing.T) {
	bm := NewBreakpointManager()

	bm.AddBreakpoint(0x1000, true)

	hit := bm.ProcessHit(0x1000)
	require.NotNil(t, hit)
	assert.Equal(t, 1, hit.HitCount)
	assert.False(t, bm.HasBreakpoint(0x1000), "temporary breakpoint should be removed after its hit")
}
