package sales

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/salesdesk/internal/form"
)

// openForm is one server-held entry form. mu serializes every event on it.
type openForm struct {
	mu       sync.Mutex
	form     *form.Session
	lastSeen atomic.Int64
}

func (f *openForm) touch(now time.Time) {
	f.lastSeen.Store(now.UnixNano())
}

// SessionManager holds the open entry forms.
type SessionManager struct {
	sessions map[string]*openForm
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates a new session manager. Forms idle for longer
// than ttl are dropped by Sweep.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*openForm),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Open registers f and returns its id.
func (sm *SessionManager) Open(f *form.Session) string {
	id := uuid.NewString()
	entry := &openForm{form: f}
	entry.touch(sm.now())

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[id] = entry
	return id
}

// get retrieves the form for id and marks it as used.
func (sm *SessionManager) get(id string) (*openForm, bool) {
	sm.mu.RLock()
	entry, exists := sm.sessions[id]
	sm.mu.RUnlock()
	if exists {
		entry.touch(sm.now())
	}
	return entry, exists
}

// Close removes a form.
func (sm *SessionManager) Close(id string) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	_, exists := sm.sessions[id]
	delete(sm.sessions, id)
	return exists
}

// Sweep drops idle forms and returns how many were removed.
func (sm *SessionManager) Sweep() int {
	cutoff := sm.now().Add(-sm.ttl).UnixNano()

	sm.mu.Lock()
	defer sm.mu.Unlock()
	removed := 0
	for id, entry := range sm.sessions {
		if entry.lastSeen.Load() < cutoff {
			delete(sm.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of open forms.
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
