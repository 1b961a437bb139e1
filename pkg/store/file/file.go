// Package file provides a store.Store backed by JSON documents in a
// directory: members.json holds the member list and config.json the view
// configuration.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

const (
	membersFile = "members.json"
	configFile  = "config.json"
)

// Store reads and rewrites whole documents on every call. It suits CLI use
// where one process owns the directory.
type Store struct {
	mu      sync.RWMutex
	baseDir string
}

// New creates a file store. If baseDir is empty, defaults to
// ~/.config/kintree/data/.
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "kintree", "data")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Path returns the base directory.
func (s *Store) Path() string { return s.baseDir }

func (s *Store) readMembers() (map[family.ID]family.Member, error) {
	var list []family.Member
	if err := s.readJSON(membersFile, &list); err != nil {
		return nil, err
	}
	out := make(map[family.ID]family.Member, len(list))
	for _, m := range list {
		out[m.ID] = m
	}
	return out, nil
}

func (s *Store) writeMembers(members map[family.ID]family.Member) error {
	list := make([]family.Member, 0, len(members))
	for _, m := range members {
		list = append(list, m)
	}
	store.SortMembers(list)
	return s.writeJSON(membersFile, list)
}

func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.baseDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// writeJSON replaces the document atomically via a temp file.
func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.baseDir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.baseDir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (s *Store) ListMembers(ctx context.Context) ([]family.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []family.Member
	if err := s.readJSON(membersFile, &list); err != nil {
		return nil, err
	}
	store.SortMembers(list)
	return list, nil
}

func (s *Store) GetMember(ctx context.Context, id family.ID) (family.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members, err := s.readMembers()
	if err != nil {
		return family.Member{}, err
	}
	m, ok := members[id]
	if !ok {
		return family.Member{}, store.NotFound(id)
	}
	return m, nil
}

func (s *Store) PutMember(ctx context.Context, m family.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, err := s.readMembers()
	if err != nil {
		return err
	}
	members[m.ID] = m
	return s.writeMembers(members)
}

func (s *Store) DeleteMember(ctx context.Context, id family.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	members, err := s.readMembers()
	if err != nil {
		return err
	}
	if _, ok := members[id]; !ok {
		return store.NotFound(id)
	}
	delete(members, id)
	return s.writeMembers(members)
}

func (s *Store) Config(ctx context.Context) (viewconfig.Values, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := viewconfig.Values{}
	if err := s.readJSON(configFile, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (s *Store) PatchConfig(ctx context.Context, p viewconfig.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := viewconfig.Values{}
	if err := s.readJSON(configFile, &values); err != nil {
		return err
	}
	return s.writeJSON(configFile, values.Apply(p))
}

func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
