package room

import (
	"log/slog"
	"sync"
	"time"
)

// ReservedName is the landing page path. It can never name a room, otherwise
// the page router could not tell the homepage from a live room.
const ReservedName = "index.html"

// ValidateName rejects names that can never identify a room.
func ValidateName(name string) error {
	if name == "" || name == ReservedName {
		return ErrInvalidRoomName
	}
	return nil
}

type eviction struct {
	handle Handle
	gen    uint64
}

// Registry is the single authority for which rooms exist. Every room carries
// at most one pending eviction; a qualifying activity reschedules it from now.
//
// Creation, deletion and timer bookkeeping all happen under one mutex, so a
// timer firing can never race a create for the same name into a lost room.
type Registry struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	evictions map[string]*eviction

	window    time.Duration
	scheduler Scheduler
	logger    *slog.Logger
}

func NewRegistry(window time.Duration, scheduler Scheduler, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:     make(map[string]*Room),
		evictions: make(map[string]*eviction),
		window:    window,
		scheduler: scheduler,
		logger:    logger,
	}
}

func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[name]
	return ok
}

func (r *Registry) Get(name string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[name]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return rm, nil
}

// Create atomically checks-and-inserts a room with a fresh canvas and starts
// its eviction timer. Under racing calls with the same name exactly one
// succeeds; the rest get ErrRoomAlreadyExists.
func (r *Registry) Create(name string, width, height int, defaultColor string) (*Room, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[name]; ok {
		return nil, ErrRoomAlreadyExists
	}

	rm := NewRoom(name, width, height, defaultColor)
	r.rooms[name] = rm
	r.scheduleLocked(name)

	r.logger.Info("room created", "room", name, "width", width, "height", height)

	return rm, nil
}

// Delete removes a room and cancels its eviction timer. Deleting an absent
// name is a no-op; deletion and expiry can race and both must win cleanly.
func (r *Registry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.evictions[name]; ok {
		e.handle.Stop()
		delete(r.evictions, name)
	}

	if _, ok := r.rooms[name]; ok {
		delete(r.rooms, name)
		r.logger.Info("room deleted", "room", name)
	}
}

// Refresh reschedules a room's eviction to a full window from now. Only
// accepted pixel updates call this; joins and snapshot requests leave the
// pending deadline untouched. Refreshing an absent room is a no-op.
func (r *Registry) Refresh(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[name]; !ok {
		return
	}

	r.scheduleLocked(name)
}

// Stop cancels every pending eviction. Used on shutdown.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, e := range r.evictions {
		e.handle.Stop()
		delete(r.evictions, name)
	}
}

// scheduleLocked replaces any pending eviction for name with a fresh one.
// The generation counter guards against a stale timer that already fired and
// is blocked on the mutex while we reschedule: when it gets the lock its
// generation no longer matches and it does nothing.
func (r *Registry) scheduleLocked(name string) {
	gen := uint64(1)

	if prev, ok := r.evictions[name]; ok {
		prev.handle.Stop()
		gen = prev.gen + 1
	}

	e := &eviction{gen: gen}
	e.handle = r.scheduler.Schedule(r.window, func() {
		r.expire(name, gen)
	})
	r.evictions[name] = e
}

func (r *Registry) expire(name string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.evictions[name]
	if !ok || e.gen != gen {
		return
	}

	delete(r.evictions, name)
	delete(r.rooms, name)

	r.logger.Info("room expired", "room", name, "window", r.window)
}
