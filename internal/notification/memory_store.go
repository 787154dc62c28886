package notification

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore はスライスで通知を保持するストア。
// 挿入順を保つスライスと、ID検索用のインデックスを持つ。
type MemoryStore struct {
	mu sync.RWMutex
	// items は挿入順の通知一覧。
	items []Notification
	// index は通知IDから items の添字への対応。
	index map[string]int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore は初期レコードを複製して新しいメモリストアを生成する。
// IDが空、または重複している場合はエラーを返す。
func NewMemoryStore(seed []Notification) (*MemoryStore, error) {
	s := &MemoryStore{
		items: make([]Notification, 0, len(seed)),
		index: make(map[string]int, len(seed)),
	}
	for _, n := range seed {
		if n.ID == "" {
			return nil, fmt.Errorf("通知IDが空です: title=%q", n.Title)
		}
		if _, ok := s.index[n.ID]; ok {
			return nil, fmt.Errorf("通知IDが重複しています: %s", n.ID)
		}
		s.index[n.ID] = len(s.items)
		s.items = append(s.items, n)
	}
	return s, nil
}

// List は全通知のスナップショットを挿入順で返す。
func (s *MemoryStore) List(_ context.Context) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out, nil
}

// MarkRead は指定IDの通知を既読にする。既読済みでも成功する。
func (s *MemoryStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	s.items[i].Read = true
	return nil
}

// MarkAllRead は全通知を既読にする。
func (s *MemoryStore) MarkAllRead(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].Read = true
	}
	return nil
}
