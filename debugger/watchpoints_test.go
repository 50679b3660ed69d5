package debugger

import (
	"encoding/binary"
	"testing"

	"github.com/avanasov/stackc/vm"
)

func memView(addr int, value uint64) vm.View {
	mem := make([]byte, addr+8)
	binary.LittleEndian.PutUint64(mem[addr:], value)
	return vm.View{Memory: mem}
}

func TestWatchpointManager_AddWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint("counter", 16)

	if wp.ID != 1 {
		t.Errorf("ID = %d, want 1", wp.ID)
	}
	if wp.Name != "counter" {
		t.Errorf("Name = %s, want counter", wp.Name)
	}
	if wp.Address != 16 {
		t.Errorf("Address = %d, want 16", wp.Address)
	}
	if !wp.Enabled {
		t.Error("watchpoint should be enabled by default")
	}
}

func TestWatchpointManager_CheckWatchpoints_FirstObservationIsBaseline(t *testing.T) {
	wm := NewWatchpointManager()
	wm.AddWatchpoint("counter", 0)

	_, changed := wm.CheckWatchpoints(memView(0, 42))
	if changed {
		t.Error("first observation should only establish a baseline, not report a hit")
	}
}

func TestWatchpointManager_CheckWatchpoints_DetectsChange(t *testing.T) {
	wm := NewWatchpointManager()
	wm.AddWatchpoint("counter", 0)

	wm.CheckWatchpoints(memView(0, 42))
	wp, changed := wm.CheckWatchpoints(memView(0, 43))

	if !changed {
		t.Fatal("expected a change to be detected")
	}
	if wp.LastValue != 43 {
		t.Errorf("LastValue = %d, want 43", wp.LastValue)
	}
	if wp.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", wp.HitCount)
	}
}

func TestWatchpointManager_CheckWatchpoints_NoChangeNoHit(t *testing.T) {
	wm := NewWatchpointManager()
	wm.AddWatchpoint("counter", 0)

	wm.CheckWatchpoints(memView(0, 42))
	_, changed := wm.CheckWatchpoints(memView(0, 42))

	if changed {
		t.Error("unchanged value should not report a hit")
	}
}

func TestWatchpointManager_DisabledWatchpointIgnored(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddWatchpoint("counter", 0)
	wm.CheckWatchpoints(memView(0, 42))
	_ = wm.DisableWatchpoint(wp.ID)

	_, changed := wm.CheckWatchpoints(memView(0, 999))
	if changed {
		t.Error("disabled watchpoint should never report a hit")
	}
}

func TestWatchpointManager_OutOfRangeAddressIgnored(t *testing.T) {
	wm := NewWatchpointManager()
	wm.AddWatchpoint("counter", 1000)

	_, changed := wm.CheckWatchpoints(memView(0, 42))
	if changed {
		t.Error("an out-of-range address should never report a hit")
	}
}

func TestWatchpointManager_DeleteWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddWatchpoint("counter", 0)

	if err := wm.DeleteWatchpoint(wp.ID); err != nil {
		t.Fatalf("DeleteWatchpoint failed: %v", err)
	}
	if wm.Count() != 0 {
		t.Errorf("Count() = %d, want 0", wm.Count())
	}
	if err := wm.DeleteWatchpoint(999); err == nil {
		t.Error("expected error deleting non-existent watchpoint")
	}
}

func TestWatchpointManager_Clear(t *testing.T) {
	wm := NewWatchpointManager()
	wm.AddWatchpoint("a", 0)
	wm.AddWatchpoint("b", 8)

	wm.Clear()

	if wm.Count() != 0 {
		t.Errorf("Count() = %d, want 0", wm.Count())
	}
}
