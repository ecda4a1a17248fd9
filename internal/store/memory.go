package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBuildRepository is an in-memory BuildRepository for tests and local
// runs without Redis.
type MemoryBuildRepository struct {
	mu     sync.RWMutex
	builds map[string]*SavedBuild
}

func NewMemoryBuildRepository() *MemoryBuildRepository {
	return &MemoryBuildRepository{builds: make(map[string]*SavedBuild)}
}

func (r *MemoryBuildRepository) Save(_ context.Context, b *SavedBuild) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.SavedAt.IsZero() {
		b.SavedAt = time.Now().UTC()
	}
	clone := *b

	r.mu.Lock()
	defer r.mu.Unlock()
	r.builds[b.ID] = &clone
	return nil
}

func (r *MemoryBuildRepository) Get(_ context.Context, id string) (*SavedBuild, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builds[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *MemoryBuildRepository) ListByUser(_ context.Context, userID string) ([]*SavedBuild, error) {
	return r.list(func(b *SavedBuild) bool { return b.UserID == userID }), nil
}

func (r *MemoryBuildRepository) ListAll(_ context.Context) ([]*SavedBuild, error) {
	return r.list(func(*SavedBuild) bool { return true }), nil
}

func (r *MemoryBuildRepository) list(keep func(*SavedBuild) bool) []*SavedBuild {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*SavedBuild, 0, len(r.builds))
	for _, b := range r.builds {
		if keep(b) {
			clone := *b
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out
}

func (r *MemoryBuildRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.builds[id]; !ok {
		return ErrNotFound
	}
	delete(r.builds, id)
	return nil
}

// MemoryRequestLog counts snapshots in memory; used by tests and as a noop
// stand-in when Redis is absent.
type MemoryRequestLog struct {
	mu    sync.Mutex
	count int64
}

func NewMemoryRequestLog() *MemoryRequestLog {
	return &MemoryRequestLog{}
}

func (l *MemoryRequestLog) Log(context.Context, string, any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
}

func (l *MemoryRequestLog) CountToday(context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count, nil
}
