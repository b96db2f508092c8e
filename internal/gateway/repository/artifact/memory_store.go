package artifact

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

func (s *MemoryStore) Put(_ context.Context, resultID, name string, content []byte) error {
	key, err := validKey(resultID, name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, resultID, name string) ([]byte, error) {
	key, err := validKey(resultID, name)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) List(_ context.Context, resultID string) ([]string, error) {
	resultID = strings.TrimSpace(resultID)
	if resultID == "" {
		return nil, fmt.Errorf("result_id is required")
	}
	prefix := resultID + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for key := range s.data {
		if name, ok := strings.CutPrefix(key, prefix); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// GetURL returns "": memory objects have no download link.
func (s *MemoryStore) GetURL(context.Context, string, string) (string, error) {
	return "", nil
}

func validKey(resultID, name string) (string, error) {
	resultID = strings.TrimSpace(resultID)
	name = strings.TrimSpace(name)
	if resultID == "" {
		return "", fmt.Errorf("result_id is required")
	}
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	return objectKey(resultID, name), nil
}
