package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/outbound-dialer/internal/model"
)

// MemoryStore implements Store in process memory. Uploads are lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	uploads map[string]*model.Upload
	order   []string
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{uploads: make(map[string]*model.Upload)}
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) SaveUpload(_ context.Context, filename string, content []byte) (*model.Upload, error) {
	u := &model.Upload{
		ID:        uuid.New().String(),
		Filename:  filename,
		Size:      int64(len(content)),
		CreatedAt: time.Now().UTC(),
		Content:   append([]byte(nil), content...),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[u.ID] = u
	s.order = append(s.order, u.ID)
	return copyUpload(u), nil
}

func (s *MemoryStore) GetUpload(_ context.Context, id string) (*model.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUpload(u), nil
}

func (s *MemoryStore) LatestUpload(_ context.Context) (*model.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return nil, ErrNotFound
	}
	return copyUpload(s.uploads[s.order[len(s.order)-1]]), nil
}

func copyUpload(u *model.Upload) *model.Upload {
	c := *u
	c.Content = append([]byte(nil), u.Content...)
	return &c
}
