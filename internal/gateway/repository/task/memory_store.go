package task

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

type MemoryStore struct {
	mu      sync.RWMutex
	tasks   map[string]Task
	results map[string][]byte
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:   make(map[string]Task),
		results: make(map[string][]byte),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, t Task) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return fmt.Errorf("task_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; ok {
		return ErrAlreadyExists
	}
	now := s.now().UTC()
	if t.Status == "" {
		t.Status = StatusProcessing
	}
	if t.Message == "" {
		t.Message = MessageProcessing
	}
	t.CreatedAt, t.UpdatedAt = now, now
	s.tasks[t.ID] = t
	return nil
}

func (s *MemoryStore) Get(_ context.Context, taskID string) (Task, error) {
	if s == nil {
		return Task{}, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[strings.TrimSpace(taskID)]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) Complete(_ context.Context, taskID, resultID string, result []byte) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	resultID = strings.TrimSpace(resultID)
	if resultID == "" {
		return fmt.Errorf("result_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.processing(taskID)
	if err != nil {
		return err
	}
	s.results[resultID] = append([]byte(nil), result...)
	t.Status = StatusCompleted
	t.Message = MessageCompleted
	t.ResultID = resultID
	t.UpdatedAt = s.now().UTC()
	s.tasks[t.ID] = t
	return nil
}

func (s *MemoryStore) Fail(_ context.Context, taskID, message string, retryable bool) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.processing(taskID)
	if err != nil {
		return err
	}
	t.Status = StatusFailed
	t.Message = message
	t.Error = message
	t.Retryable = retryable
	t.UpdatedAt = s.now().UTC()
	s.tasks[t.ID] = t
	return nil
}

func (s *MemoryStore) Result(_ context.Context, resultID string) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.results[strings.TrimSpace(resultID)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

// caller holds s.mu.
func (s *MemoryStore) processing(taskID string) (Task, error) {
	t, ok := s.tasks[strings.TrimSpace(taskID)]
	if !ok {
		return Task{}, ErrNotFound
	}
	if t.Status != StatusProcessing {
		return Task{}, ErrNotProcessing
	}
	return t, nil
}
