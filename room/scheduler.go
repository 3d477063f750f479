package room

import "time"

// Handle is a pending one-shot callback that can be cancelled.
type Handle interface {
	// Stop cancels the callback. Returns false if it already fired or was
	// already stopped.
	Stop() bool
}

// Scheduler is the registry's clock. Production uses the runtime timer;
// tests substitute a fake so evictions can be fired deterministically.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Handle
}

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, fn func()) Handle {
	return time.AfterFunc(d, fn)
}

func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}
