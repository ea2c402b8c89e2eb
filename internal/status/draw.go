package status

import (
	"sync"
)

// DrawStatus describes whether a draw is currently animating.
type DrawStatus struct {
	Busy   bool   `json:"busy"`
	DrawID string `json:"draw_id,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

// DrawStatusChangeCallback is called when a draw starts or ends
type DrawStatusChangeCallback func(s DrawStatus)

// PoolChangeCallback is called after the entry pool was edited
type PoolChangeCallback func()

var (
	mu            sync.RWMutex
	drawStatus    DrawStatus
	drawCallbacks []DrawStatusChangeCallback
	poolCallbacks []PoolChangeCallback
)

// SetDrawing marks a draw as running
func SetDrawing(drawID, mode string) {
	setDrawStatus(DrawStatus{Busy: true, DrawID: drawID, Mode: mode})
}

// SetIdle marks the picker as idle
func SetIdle() {
	setDrawStatus(DrawStatus{})
}

func setDrawStatus(next DrawStatus) {
	mu.Lock()
	previous := drawStatus
	drawStatus = next
	callbacks := make([]DrawStatusChangeCallback, len(drawCallbacks))
	copy(callbacks, drawCallbacks)
	mu.Unlock()

	// 状態が変更された場合のみ通知
	if previous == next {
		return
	}
	for _, callback := range callbacks {
		if callback != nil {
			callback(next)
		}
	}
}

// CurrentDraw returns the current draw status
func CurrentDraw() DrawStatus {
	mu.RLock()
	defer mu.RUnlock()
	return drawStatus
}

// IsDrawing reports whether a draw is in flight
func IsDrawing() bool {
	return CurrentDraw().Busy
}

// RegisterDrawStatusChangeCallback registers a callback for draw status changes
func RegisterDrawStatusChangeCallback(callback DrawStatusChangeCallback) {
	mu.Lock()
	defer mu.Unlock()
	drawCallbacks = append(drawCallbacks, callback)
}

// NotifyPoolChanged runs pool callbacks. Edits made while a draw is running
// are not announced; the running draw keeps its snapshot.
func NotifyPoolChanged() {
	mu.RLock()
	busy := drawStatus.Busy
	callbacks := make([]PoolChangeCallback, len(poolCallbacks))
	copy(callbacks, poolCallbacks)
	mu.RUnlock()

	if busy {
		return
	}
	for _, callback := range callbacks {
		if callback != nil {
			callback()
		}
	}
}

// RegisterPoolChangeCallback registers a callback for pool edits
func RegisterPoolChangeCallback(callback PoolChangeCallback) {
	mu.Lock()
	defer mu.Unlock()
	poolCallbacks = append(poolCallbacks, callback)
}

// Reset clears status and callbacks (tests).
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	drawStatus = DrawStatus{}
	drawCallbacks = nil
	poolCallbacks = nil
}
