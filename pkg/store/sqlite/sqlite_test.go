package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/store/storetest"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := Open(context.Background(), filepath.Join(t.TempDir(), "kintree.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestInMemoryDatabase(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.PutMember(ctx, family.Member{ID: "1", Name: "Karl", Generation: 1}); err != nil {
		t.Fatal(err)
	}
	list, err := s.ListMembers(ctx)
	if err != nil || len(list) != 1 {
		t.Errorf("ListMembers = %v, %v", list, err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "kintree.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.PutMember(ctx, family.Member{ID: "7", Name: "Emil", Generation: 2, FatherID: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PatchConfig(ctx, viewconfig.Patch{viewconfig.KeyTreeScale: "0.56"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	m, err := s.GetMember(ctx, "7")
	if err != nil || m.FatherID != "1" {
		t.Errorf("GetMember = %+v, %v", m, err)
	}
	values, _ := s.Config(ctx)
	if values[viewconfig.KeyTreeScale] != "0.56" {
		t.Errorf("config = %v", values)
	}
}
