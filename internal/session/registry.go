// Package session holds the in-process registry of session logins.
package session

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/spec-kit/board-service/internal/domain"
)

// Registry maps a monotonically increasing sequence number to a session.
// It is safe for concurrent use; callers never lock.
//
// A secondary index from user id to sequence numbers is maintained under
// the same lock as the primary map so lookups by user do not scan.
type Registry struct {
	seq atomic.Int64

	mu     sync.RWMutex
	store  map[int64]*domain.Session
	byUser map[int64]map[int64]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		store:  make(map[int64]*domain.Session),
		byUser: make(map[int64]map[int64]struct{}),
	}
}

// Save registers s under the next sequence number and returns it unchanged.
func (r *Registry) Save(s *domain.Session) *domain.Session {
	id := r.seq.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[id] = s
	if s != nil {
		idx, ok := r.byUser[s.UserID]
		if !ok {
			idx = make(map[int64]struct{})
			r.byUser[s.UserID] = idx
		}
		idx[id] = struct{}{}
	}
	return s
}

// FindByID returns the session stored under a sequence number.
func (r *Registry) FindByID(id int64) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store[id]
	return s, ok
}

// FindByUserID returns the oldest live session of a user.
func (r *Registry) FindByUserID(userID int64) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.byUser[userID]
	if len(idx) == 0 {
		return nil, false
	}
	ids := make([]int64, 0, len(idx))
	for id := range idx {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return r.store[ids[0]], true
}

// FindBySessionID returns the entry whose handle id matches.
func (r *Registry) FindBySessionID(sessionID string) (*domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.store {
		if s != nil && s.ID == sessionID {
			return s, true
		}
	}
	return nil, false
}

// DeleteBySessionID removes the entry whose handle id matches. Deleting an
// unknown id is a no-op.
func (r *Registry) DeleteBySessionID(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.store {
		if s == nil || s.ID != sessionID {
			continue
		}
		delete(r.store, id)
		if idx, ok := r.byUser[s.UserID]; ok {
			delete(idx, id)
			if len(idx) == 0 {
				delete(r.byUser, s.UserID)
			}
		}
		return
	}
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store)
}
