package debugger

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/avanasov/stackc/vm"
)

// Watchpoint monitors a global variable for value changes. Unlike the
// register watchpoints of a CPU-level debugger, this domain has no
// registers to observe — only named variables in the uninitialized data
// region — so a Watchpoint always resolves to an absolute memory address
// computed once at creation time from the symbol table.
type Watchpoint struct {
	ID        int
	Name      string
	Address   int
	Enabled   bool
	HasLast   bool
	LastValue uint64
	HitCount  int
}

// WatchpointManager manages all watchpoints.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddWatchpoint adds a new watchpoint on the variable at address.
func (wm *WatchpointManager) AddWatchpoint(name string, address int) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:      wm.nextID,
		Name:    name,
		Address: address,
		Enabled: true,
	}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

func (wm *WatchpointManager) EnableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = true
	return nil
}

func (wm *WatchpointManager) DisableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = false
	return nil
}

func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}
	return result
}

func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}

// CheckWatchpoints reads every enabled watchpoint's current value out of
// view.Memory and reports the first one whose value differs from the last
// observed value. The first observation after a watchpoint is added only
// establishes a baseline; it never reports a hit.
func (wm *WatchpointManager) CheckWatchpoints(view vm.View) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}
		if wp.Address < 0 || wp.Address+8 > len(view.Memory) {
			continue
		}
		cur := binary.LittleEndian.Uint64(view.Memory[wp.Address:])
		if !wp.HasLast {
			wp.HasLast = true
			wp.LastValue = cur
			continue
		}
		if cur != wp.LastValue {
			wp.HitCount++
			wp.LastValue = cur
			return wp, true
		}
	}
	return nil, false
}
