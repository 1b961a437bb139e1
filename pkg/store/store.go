// Package store defines the persistence boundary for family members and the
// view configuration.
//
// The layout core never persists anything itself. It reads members and
// configuration through [Store], and viewport sessions write transform
// patches back through [Store.PatchConfig].
//
// # Backends
//
// Implementations live in subpackages:
//   - memory: in-process maps, for tests and one-shot CLI runs
//   - file:   JSON documents in a directory, for CLI use without a database
//   - sqlite: a single SQLite file (pure Go driver)
//   - mongo:  a MongoDB database, for shared deployments
//
// Every backend passes the shared conformance suite in storetest.
//
// # Helpers
//
// [Create], [Update] and [Delete] wrap the primitive operations with the
// bookkeeping editing surfaces need: id assignment, validation, spouse
// back-references and clearing references to removed members.
package store

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// Store is the interface every backend implements. Implementations must be
// safe for concurrent use.
type Store interface {
	// ListMembers returns every member ordered by family.CompareIDs.
	ListMembers(ctx context.Context) ([]family.Member, error)

	// GetMember returns one member, or an error with
	// errors.ErrCodeMemberNotFound.
	GetMember(ctx context.Context, id family.ID) (family.Member, error)

	// PutMember inserts or replaces a member.
	PutMember(ctx context.Context, m family.Member) error

	// DeleteMember removes a member, or returns an error with
	// errors.ErrCodeMemberNotFound.
	DeleteMember(ctx context.Context, id family.ID) error

	// Config returns the stored view configuration values.
	Config(ctx context.Context) (viewconfig.Values, error)

	// PatchConfig merges a sanitized patch; empty values delete keys.
	PatchConfig(ctx context.Context, p viewconfig.Patch) error

	// Close releases backend resources.
	Close() error
}

// NotFound returns the error backends use for a missing member.
func NotFound(id family.ID) error {
	return errors.New(errors.ErrCodeMemberNotFound, "member %s not found", id)
}

// SortMembers orders members by id in place.
func SortMembers(members []family.Member) {
	slices.SortFunc(members, func(a, b family.Member) int { return family.CompareIDs(a.ID, b.ID) })
}

// Validate checks the fields an editing surface controls.
func Validate(m family.Member) error {
	if err := errors.ValidateMemberID(string(m.ID)); err != nil {
		return err
	}
	if err := errors.ValidateMemberName(m.Name); err != nil {
		return err
	}
	if err := errors.ValidateURL(m.PhotoURL); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidMember, err, "photo_url")
	}
	for _, ref := range []family.ID{m.FatherID, m.MotherID, m.SpouseID} {
		if ref == m.ID {
			return errors.New(errors.ErrCodeInvalidMember, "member %s cannot reference itself", m.ID)
		}
	}
	return nil
}

// Create stores a new member. An empty id is replaced by a random UUID.
// When the member names a spouse without a spouse of their own, the spouse
// gets the back-reference.
func Create(ctx context.Context, s Store, m family.Member) (family.Member, error) {
	m = m.Normalized()
	if m.ID.IsZero() {
		m.ID = family.ID(uuid.NewString())
	}
	if err := Validate(m); err != nil {
		return family.Member{}, err
	}
	if _, err := s.GetMember(ctx, m.ID); err == nil {
		return family.Member{}, errors.New(errors.ErrCodeInvalidInput, "member %s already exists", m.ID)
	} else if !errors.IsNotFound(err) {
		return family.Member{}, err
	}
	if err := s.PutMember(ctx, m); err != nil {
		return family.Member{}, err
	}
	if err := linkSpouse(ctx, s, m, ""); err != nil {
		return family.Member{}, err
	}
	return m, nil
}

// Update replaces an existing member. Spouse back-references follow the
// change: a former spouse pointing back at the member is unlinked and a new
// spouse without a spouse is linked.
func Update(ctx context.Context, s Store, m family.Member) (family.Member, error) {
	m = m.Normalized()
	if err := Validate(m); err != nil {
		return family.Member{}, err
	}
	old, err := s.GetMember(ctx, m.ID)
	if err != nil {
		return family.Member{}, err
	}
	if err := s.PutMember(ctx, m); err != nil {
		return family.Member{}, err
	}
	if err := linkSpouse(ctx, s, m, old.SpouseID); err != nil {
		return family.Member{}, err
	}
	return m, nil
}

func linkSpouse(ctx context.Context, s Store, m family.Member, previous family.ID) error {
	if previous != m.SpouseID && !previous.IsZero() {
		if former, err := s.GetMember(ctx, previous); err == nil && former.SpouseID == m.ID {
			former.SpouseID = ""
			if err := s.PutMember(ctx, former); err != nil {
				return err
			}
		}
	}
	if m.SpouseID.IsZero() {
		return nil
	}
	spouse, err := s.GetMember(ctx, m.SpouseID)
	if errors.IsNotFound(err) {
		// dangling references are tolerated by the layout
		return nil
	}
	if err != nil {
		return err
	}
	if spouse.SpouseID.IsZero() {
		spouse.SpouseID = m.ID
		return s.PutMember(ctx, spouse)
	}
	return nil
}

// Delete removes a member and clears every father, mother and spouse
// reference to it.
func Delete(ctx context.Context, s Store, id family.ID) error {
	if err := s.DeleteMember(ctx, id); err != nil {
		return err
	}
	members, err := s.ListMembers(ctx)
	if err != nil {
		return err
	}
	for _, m := range members {
		changed := false
		for _, ref := range []*family.ID{&m.FatherID, &m.MotherID, &m.SpouseID} {
			if *ref == id {
				*ref = ""
				changed = true
			}
		}
		if changed {
			if err := s.PutMember(ctx, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// Import stores members as given. With replace set, members not in the
// list are deleted first. Every id is validated before the store is
// touched, so a bad record leaves the store unchanged.
func Import(ctx context.Context, s Store, members []family.Member, replace bool) (int, error) {
	prepared := make([]family.Member, len(members))
	for i, m := range members {
		m = m.Normalized()
		if m.ID.IsZero() {
			m.ID = family.ID(uuid.NewString())
		}
		if err := errors.ValidateMemberID(string(m.ID)); err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidMember, err, "record %d", i+1)
		}
		prepared[i] = m
	}

	if replace {
		existing, err := s.ListMembers(ctx)
		if err != nil {
			return 0, err
		}
		for _, m := range existing {
			if err := s.DeleteMember(ctx, m.ID); err != nil && !errors.IsNotFound(err) {
				return 0, err
			}
		}
	}
	for i, m := range prepared {
		if err := s.PutMember(ctx, m); err != nil {
			return i, err
		}
	}
	return len(prepared), nil
}

// LoadConfig reads and parses the view configuration. Parse problems are
// returned separately and never fail the load.
func LoadConfig(ctx context.Context, s Store) (viewconfig.Config, []error, error) {
	values, err := s.Config(ctx)
	if err != nil {
		return viewconfig.Config{}, nil, err
	}
	cfg, problems := viewconfig.Parse(values)
	return cfg, problems, nil
}

// ResetView deletes every persisted transform.
func ResetView(ctx context.Context, s Store) error {
	return s.PatchConfig(ctx, viewconfig.ResetViewPatch())
}
