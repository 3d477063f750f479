package room

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testWindow = 1800000 * time.Millisecond

// fakeScheduler records scheduled callbacks so tests can fire or inspect
// them without waiting on the wall clock.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (ft *fakeTimer) Stop() bool {
	if ft.stopped {
		return false
	}
	ft.stopped = true
	return true
}

func (fs *fakeScheduler) Schedule(d time.Duration, fn func()) Handle {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	ft := &fakeTimer{delay: d, fn: fn}
	fs.timers = append(fs.timers, ft)
	return ft
}

func (fs *fakeScheduler) last(t *testing.T) *fakeTimer {
	t.Helper()
	fs.mu.Lock()
	defer fs.mu.Unlock()

	require.NotEmpty(t, fs.timers)
	return fs.timers[len(fs.timers)-1]
}

func (fs *fakeScheduler) count() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.timers)
}

func newTestRegistry() (*Registry, *fakeScheduler) {
	fs := &fakeScheduler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistry(testWindow, fs, logger), fs
}

func TestRegistryCreate(t *testing.T) {
	r, fs := newTestRegistry()

	rm, err := r.Create("abc", 15, 15, testColor)
	require.NoError(t, err)
	require.Equal(t, "abc", rm.Name)
	require.Equal(t, 15, rm.Canvas.Width())
	require.True(t, r.Exists("abc"))

	// creation schedules an eviction a full window out
	require.Equal(t, 1, fs.count())
	require.Equal(t, testWindow, fs.last(t).delay)

	_, err = r.Create("abc", 15, 15, testColor)
	require.ErrorIs(t, err, ErrRoomAlreadyExists)
}

func TestRegistryCreateInvalidNames(t *testing.T) {
	r, fs := newTestRegistry()

	for _, name := range []string{"", ReservedName} {
		_, err := r.Create(name, 15, 15, testColor)
		require.ErrorIs(t, err, ErrInvalidRoomName)
		require.False(t, r.Exists(name))
	}

	require.Zero(t, fs.count())
}

func TestRegistryGet(t *testing.T) {
	r, _ := newTestRegistry()

	_, err := r.Get("missing")
	require.ErrorIs(t, err, ErrRoomNotFound)

	created, err := r.Create("abc", 15, 15, testColor)
	require.NoError(t, err)

	got, err := r.Get("abc")
	require.NoError(t, err)
	require.Same(t, created, got)
}

func TestRegistryDeleteIsIdempotent(t *testing.T) {
	r, fs := newTestRegistry()

	_, err := r.Create("abc", 15, 15, testColor)
	require.NoError(t, err)

	timer := fs.last(t)

	r.Delete("abc")
	require.False(t, r.Exists("abc"))
	require.True(t, timer.stopped)

	// second delete of the same name is a no-op
	r.Delete("abc")
	require.False(t, r.Exists("abc"))
}

func TestRegistryEviction(t *testing.T) {
	r, fs := newTestRegistry()

	_, err := r.Create("abc", 15, 15, testColor)
	require.NoError(t, err)

	fs.last(t).fn()

	require.False(t, r.Exists("abc"))
	_, err = r.Get("abc")
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistryRefreshReschedules(t *testing.T) {
	r, fs := newTestRegistry()

	_, err := r.Create("abc", 15, 15, testColor)
	require.NoError(t, err)

	first := fs.last(t)

	r.Refresh("abc")

	// exactly one live timer: the old one is cancelled before the new one
	// is scheduled
	require.True(t, first.stopped)
	require.Equal(t, 2, fs.count())

	second := fs.last(t)
	require.Equal(t, testWindow, second.delay)
	require.False(t, second.stopped)

	// a stale timer that fires after its refresh must not delete the room
	first.fn()
	require.True(t, r.Exists("abc"))

	second.fn()
	require.False(t, r.Exists("abc"))
}

func TestRegistryRefreshMissingRoom(t *testing.T) {
	r, fs := newTestRegistry()

	r.Refresh("ghost")

	require.Zero(t, fs.count())
	require.False(t, r.Exists("ghost"))
}

func TestRegistryRecreateAfterEviction(t *testing.T) {
	r, fs := newTestRegistry()

	_, err := r.Create("abc", 15, 15, testColor)
	require.NoError(t, err)

	fs.last(t).fn()
	require.False(t, r.Exists("abc"))

	rm, err := r.Create("abc", 15, 15, testColor)
	require.NoError(t, err)

	// the recreated room has a fresh canvas, not the old one's state
	color, err := rm.Canvas.Get(0, 0)
	require.NoError(t, err)
	require.Equal(t, testColor, color)
}

func TestRegistryStop(t *testing.T) {
	r, fs := newTestRegistry()

	_, err := r.Create("a", 15, 15, testColor)
	require.NoError(t, err)
	_, err = r.Create("b", 15, 15, testColor)
	require.NoError(t, err)

	r.Stop()

	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, timer := range fs.timers {
		require.True(t, timer.stopped)
	}
}

func TestRegistryConcurrentCreate(t *testing.T) {
	r, _ := newTestRegistry()

	var wg sync.WaitGroup
	errs := make([]error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.Create("abc", 15, 15, testColor)
		}(i)
	}

	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrRoomAlreadyExists)
		}
	}

	require.Equal(t, 1, succeeded)
}
