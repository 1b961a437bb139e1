// Package memory provides an in-process store.Store.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// Store keeps members and configuration in maps guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	members map[family.ID]family.Member
	config  viewconfig.Values
}

// New returns an empty Store, optionally seeded with members.
func New(seed ...family.Member) *Store {
	s := &Store{
		members: make(map[family.ID]family.Member, len(seed)),
		config:  viewconfig.Values{},
	}
	for _, m := range seed {
		s.members[m.ID] = m
	}
	return s
}

func (s *Store) ListMembers(ctx context.Context) ([]family.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]family.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	store.SortMembers(out)
	return out, nil
}

func (s *Store) GetMember(ctx context.Context, id family.ID) (family.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return family.Member{}, store.NotFound(id)
	}
	return m, nil
}

func (s *Store) PutMember(ctx context.Context, m family.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
	return nil
}

func (s *Store) DeleteMember(ctx context.Context, id family.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return store.NotFound(id)
	}
	delete(s.members, id)
	return nil
}

func (s *Store) Config(ctx context.Context) (viewconfig.Values, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.config), nil
}

func (s *Store) PatchConfig(ctx context.Context, p viewconfig.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = s.config.Apply(p)
	return nil
}

func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
