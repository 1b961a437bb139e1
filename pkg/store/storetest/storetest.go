// Package storetest provides a conformance suite every store.Store backend
// runs from its own tests.
package storetest

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// Factory returns a fresh, empty store for one subtest. The factory
// registers its own cleanup.
type Factory func(t *testing.T) store.Store

// Run executes the suite.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"MemberCRUD", testMemberCRUD},
		{"ListSorted", testListSorted},
		{"NotFound", testNotFound},
		{"PatchConfig", testPatchConfig},
		{"CreateLinksSpouse", testCreateLinksSpouse},
		{"UpdateRelinksSpouse", testUpdateRelinksSpouse},
		{"DeleteClearsReferences", testDeleteClearsReferences},
		{"ImportReplace", testImportReplace},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func testMemberCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()
	m := family.Member{
		ID: "1", Name: "Karl", Gender: family.GenderMale, Generation: 1,
		BirthDate: "1901-03-04", ChildOrder: family.IntPtr(2), Notes: "emigrated 1923",
	}
	if err := s.PutMember(ctx, m); err != nil {
		t.Fatalf("PutMember: %v", err)
	}
	got, err := s.GetMember(ctx, "1")
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if got.Name != "Karl" || got.BirthDate != m.BirthDate || got.Notes != m.Notes ||
		got.ChildOrder == nil || *got.ChildOrder != 2 {
		t.Errorf("GetMember = %+v", got)
	}

	m.Name = "Karl Karlsson"
	if err := s.PutMember(ctx, m); err != nil {
		t.Fatalf("PutMember (update): %v", err)
	}
	list, err := s.ListMembers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Karl Karlsson" {
		t.Errorf("ListMembers after upsert = %+v", list)
	}

	if err := s.DeleteMember(ctx, "1"); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}
	if list, _ := s.ListMembers(ctx); len(list) != 0 {
		t.Errorf("ListMembers after delete = %+v", list)
	}
}

func testListSorted(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, id := range []family.ID{"10", "2", "1", "b", "a"} {
		if err := s.PutMember(ctx, family.Member{ID: id, Name: "m", Generation: 1}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListMembers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids []family.ID
	for _, m := range list {
		ids = append(ids, m.ID)
	}
	if want := []family.ID{"1", "2", "10", "a", "b"}; !slices.Equal(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}
}

func testNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	if _, err := s.GetMember(ctx, "missing"); !errors.IsNotFound(err) {
		t.Errorf("GetMember(missing) err = %v, want not found", err)
	}
	if err := s.DeleteMember(ctx, "missing"); !errors.IsNotFound(err) {
		t.Errorf("DeleteMember(missing) err = %v, want not found", err)
	}
}

func testPatchConfig(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.PatchConfig(ctx, viewconfig.Patch{
		viewconfig.KeyTitle: "Karlsson",
		viewconfig.KeyTreeX: "12.5",
		"not_a_key":         "dropped",
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.PatchConfig(ctx, viewconfig.Patch{viewconfig.KeyTreeX: "", viewconfig.KeyTreeY: "3"}); err != nil {
		t.Fatal(err)
	}
	values, err := s.Config(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := viewconfig.Values{viewconfig.KeyTitle: "Karlsson", viewconfig.KeyTreeY: "3"}
	if len(values) != len(want) {
		t.Fatalf("Config() = %v, want %v", values, want)
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("%s = %q, want %q", k, values[k], v)
		}
	}

	if err := store.ResetView(ctx, s); err != nil {
		t.Fatal(err)
	}
	values, _ = s.Config(ctx)
	if _, ok := values[viewconfig.KeyTreeY]; ok || values[viewconfig.KeyTitle] != "Karlsson" {
		t.Errorf("after ResetView = %v", values)
	}
}

func testCreateLinksSpouse(t *testing.T, s store.Store) {
	ctx := context.Background()
	anna, err := store.Create(ctx, s, family.Member{ID: "2", Name: "Anna", Generation: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, s, family.Member{ID: "1", Name: "Karl", Generation: 1, SpouseID: anna.ID}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetMember(ctx, "2")
	if got.SpouseID != "1" {
		t.Errorf("spouse back-reference = %q, want 1", got.SpouseID)
	}

	generated, err := store.Create(ctx, s, family.Member{Name: "No Id", Generation: 2, FatherID: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if generated.ID.IsZero() {
		t.Error("Create should assign an id")
	}

	if _, err := store.Create(ctx, s, family.Member{ID: "1", Name: "Again", Generation: 1}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("duplicate Create err = %v, want INVALID_INPUT", err)
	}
	if _, err := store.Create(ctx, s, family.Member{ID: "9", Name: " ", Generation: 1}); !errors.Is(err, errors.ErrCodeInvalidMember) {
		t.Errorf("blank name err = %v, want INVALID_MEMBER", err)
	}
}

func testUpdateRelinksSpouse(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, m := range []family.Member{
		{ID: "1", Name: "Karl", Generation: 1, SpouseID: "2"},
		{ID: "2", Name: "Anna", Generation: 1, SpouseID: "1"},
		{ID: "3", Name: "Berta", Generation: 1},
	} {
		if err := s.PutMember(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.Update(ctx, s, family.Member{ID: "1", Name: "Karl", Generation: 1, SpouseID: "3"}); err != nil {
		t.Fatal(err)
	}
	anna, _ := s.GetMember(ctx, "2")
	berta, _ := s.GetMember(ctx, "3")
	if !anna.SpouseID.IsZero() {
		t.Errorf("former spouse still linked: %q", anna.SpouseID)
	}
	if berta.SpouseID != "1" {
		t.Errorf("new spouse back-reference = %q, want 1", berta.SpouseID)
	}

	if _, err := store.Update(ctx, s, family.Member{ID: "404", Name: "Ghost", Generation: 1}); !errors.IsNotFound(err) {
		t.Errorf("Update(missing) err = %v, want not found", err)
	}
}

func testDeleteClearsReferences(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, m := range []family.Member{
		{ID: "1", Name: "Karl", Generation: 1, SpouseID: "2"},
		{ID: "2", Name: "Anna", Generation: 1, SpouseID: "1"},
		{ID: "3", Name: "Clara", Generation: 2, FatherID: "1", MotherID: "2"},
	} {
		if err := s.PutMember(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Delete(ctx, s, "1"); err != nil {
		t.Fatal(err)
	}
	anna, _ := s.GetMember(ctx, "2")
	clara, _ := s.GetMember(ctx, "3")
	if !anna.SpouseID.IsZero() || !clara.FatherID.IsZero() {
		t.Errorf("references not cleared: anna.spouse=%q clara.father=%q", anna.SpouseID, clara.FatherID)
	}
	if clara.MotherID != "2" {
		t.Errorf("unrelated reference cleared: clara.mother=%q", clara.MotherID)
	}
}

func testImportReplace(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.PutMember(ctx, family.Member{ID: "old", Name: "Old", Generation: 1}); err != nil {
		t.Fatal(err)
	}
	n, err := store.Import(ctx, s, []family.Member{
		{ID: "1", Name: "Karl", Generation: 1},
		{ID: "2", Name: "Anna", Generation: 1},
	}, true)
	if err != nil || n != 2 {
		t.Fatalf("Import = %d, %v", n, err)
	}
	list, _ := s.ListMembers(ctx)
	if len(list) != 2 || list[0].ID != "1" {
		t.Errorf("after replace import = %+v", list)
	}

	// A bad id anywhere in the list rejects the import before any delete.
	n, err = store.Import(ctx, s, []family.Member{
		{ID: "3", Name: "Clara", Generation: 2},
		{ID: "bad/id", Name: "Broken", Generation: 2},
	}, true)
	if err == nil || n != 0 {
		t.Fatalf("Import with bad id = %d, %v; want rejection", n, err)
	}
	if !errors.Is(err, errors.ErrCodeInvalidMember) {
		t.Errorf("code = %q, want INVALID_MEMBER", errors.GetCode(err))
	}
	list, _ = s.ListMembers(ctx)
	if len(list) != 2 || list[0].ID != "1" || list[1].ID != "2" {
		t.Errorf("store changed by rejected import: %+v", list)
	}
}
