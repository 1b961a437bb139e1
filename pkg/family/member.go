package family

import (
	"bytes"
	"encoding/json"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ID identifies a member. The zero value means "no reference".
type ID string

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id == "" }

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// CompareIDs orders ids: numeric ids compare numerically and sort before
// non-numeric ones; the rest compare lexicographically.
func CompareIDs(a, b ID) int {
	na, errA := strconv.ParseInt(string(a), 10, 64)
	nb, errB := strconv.ParseInt(string(b), 10, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return strings.Compare(string(a), string(b))
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(string(a), string(b))
}

// SortIDs sorts ids in place using CompareIDs.
func SortIDs(ids []ID) {
	slices.SortFunc(ids, CompareIDs)
}

// Gender of a member.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender maps loose spellings ("M", "f", "Female") to a Gender.
// Anything unrecognised is GenderOther.
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m", "man":
		return GenderMale
	case "female", "f", "woman":
		return GenderFemale
	default:
		return GenderOther
	}
}

// Member is one person in the family tree.
type Member struct {
	ID         ID     `json:"id" yaml:"id" bson:"_id"`
	Name       string `json:"name" yaml:"name" bson:"name"`
	Gender     Gender `json:"gender" yaml:"gender" bson:"gender"`
	BirthDate  string `json:"birth_date,omitempty" yaml:"birth_date,omitempty" bson:"birth_date,omitempty"`
	DeathDate  string `json:"death_date,omitempty" yaml:"death_date,omitempty" bson:"death_date,omitempty"`
	Generation int    `json:"generation" yaml:"generation" bson:"generation"`

	FatherID ID `json:"father_id,omitempty" yaml:"father_id,omitempty" bson:"father_id,omitempty"`
	MotherID ID `json:"mother_id,omitempty" yaml:"mother_id,omitempty" bson:"mother_id,omitempty"`
	SpouseID ID `json:"spouse_id,omitempty" yaml:"spouse_id,omitempty" bson:"spouse_id,omitempty"`

	ChildOrder  *int `json:"child_order,omitempty" yaml:"child_order,omitempty" bson:"child_order,omitempty"`
	SpouseOrder *int `json:"spouse_order,omitempty" yaml:"spouse_order,omitempty" bson:"spouse_order,omitempty"`

	PhotoURL string `json:"photo_url,omitempty" yaml:"photo_url,omitempty" bson:"photo_url,omitempty"`
	Notes    string `json:"notes,omitempty" yaml:"notes,omitempty" bson:"notes,omitempty"`
}

// Gen returns the member's generation, treating values below 1 as 1.
func (m Member) Gen() int {
	if m.Generation < 1 {
		return 1
	}
	return m.Generation
}

// Normalized returns a copy with trimmed ids, a canonical gender and a
// generation of at least 1.
func (m Member) Normalized() Member {
	m.ID = ID(strings.TrimSpace(string(m.ID)))
	m.FatherID = ID(strings.TrimSpace(string(m.FatherID)))
	m.MotherID = ID(strings.TrimSpace(string(m.MotherID)))
	m.SpouseID = ID(strings.TrimSpace(string(m.SpouseID)))
	m.Name = strings.TrimSpace(m.Name)
	m.Gender = ParseGender(string(m.Gender))
	m.Generation = m.Gen()
	return m
}

var yearRe = regexp.MustCompile(`\b(\d{3,4})\b`)

// BirthYear extracts the first 3-4 digit year from BirthDate.
func (m Member) BirthYear() (int, bool) { return extractYear(m.BirthDate) }

// DeathYear extracts the first 3-4 digit year from DeathDate.
func (m Member) DeathYear() (int, bool) { return extractYear(m.DeathDate) }

// Lifespan formats the extractable years as "1901–1980", "1901–" or "".
func (m Member) Lifespan() string {
	b, okB := m.BirthYear()
	d, okD := m.DeathYear()
	switch {
	case okB && okD:
		return strconv.Itoa(b) + "–" + strconv.Itoa(d)
	case okB:
		return strconv.Itoa(b) + "–"
	case okD:
		return "–" + strconv.Itoa(d)
	}
	return ""
}

func extractYear(s string) (int, bool) {
	match := yearRe.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}
	y, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return y, true
}

// IntPtr is a small helper for building members with ChildOrder/SpouseOrder.
func IntPtr(v int) *int { return &v }

// Canonical returns a deterministic JSON encoding of members (sorted by id)
// suitable for content hashing. Two lists with the same members in a
// different order produce the same bytes.
func Canonical(members []Member) []byte {
	sorted := slices.Clone(members)
	slices.SortStableFunc(sorted, func(a, b Member) int { return CompareIDs(a.ID, b.ID) })
	data, _ := json.Marshal(sorted)
	return data
}
