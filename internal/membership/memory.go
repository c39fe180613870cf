// internal/membership/memory.go
package membership

import (
	"context"
	"sync"
)

// MemoryRepository keeps users, sinks included, in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewMemoryRepository(seed ...*User) *MemoryRepository {
	repo := &MemoryRepository{users: make(map[string]*User, len(seed))}
	for _, u := range seed {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *MemoryRepository) GetUserByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepository) RegisterUser(_ context.Context, id string, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; ok {
		return ErrDuplicate
	}
	r.users[id] = user
	return nil
}
