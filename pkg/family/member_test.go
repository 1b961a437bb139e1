package family

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestIDUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ID
	}{
		{"string", `"42"`, "42"},
		{"number", `42`, "42"},
		{"uuid", `"7d9f1f5e"`, "7d9f1f5e"},
		{"null", `null`, ""},
		{"padded string", `" 7 "`, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.input), &id); err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.input, err)
			}
			if id != tt.want {
				t.Errorf("got %q, want %q", id, tt.want)
			}
		})
	}
}

func TestMemberUnmarshalMixedIDs(t *testing.T) {
	data := `{"id": 3, "name": "Clara", "gender": "F", "generation": 2,
		"father_id": 1, "mother_id": "2", "spouse_id": null, "child_order": 0}`

	var m Member
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		t.Fatal(err)
	}
	m = m.Normalized()

	if m.ID != "3" || m.FatherID != "1" || m.MotherID != "2" || !m.SpouseID.IsZero() {
		t.Errorf("ids = %q/%q/%q/%q", m.ID, m.FatherID, m.MotherID, m.SpouseID)
	}
	if m.Gender != GenderFemale {
		t.Errorf("Gender = %q, want female", m.Gender)
	}
	if m.ChildOrder == nil || *m.ChildOrder != 0 {
		t.Errorf("ChildOrder = %v, want 0", m.ChildOrder)
	}
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b ID
		want int
	}{
		{"2", "10", -1},
		{"10", "2", 1},
		{"7", "7", 0},
		{"9", "a", -1},
		{"a", "9", 1},
		{"alice", "bob", -1},
		{"-1", "1", -1},
	}

	for _, tt := range tests {
		if got := CompareIDs(tt.a, tt.b); sign(got) != tt.want {
			t.Errorf("CompareIDs(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func TestParseGender(t *testing.T) {
	tests := map[string]Gender{
		"male":    GenderMale,
		"M":       GenderMale,
		"Female":  GenderFemale,
		"f":       GenderFemale,
		"":        GenderOther,
		"unknown": GenderOther,
	}
	for in, want := range tests {
		if got := ParseGender(in); got != want {
			t.Errorf("ParseGender(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestYears(t *testing.T) {
	tests := []struct {
		name     string
		birth    string
		death    string
		lifespan string
	}{
		{"iso dates", "1901-03-04", "1980-12-01", "1901–1980"},
		{"free text", "born about 1850 in Ulm", "", "1850–"},
		{"death only", "", "d. 944", "–944"},
		{"no year", "spring", "unknown", ""},
		{"too many digits", "12345", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Member{BirthDate: tt.birth, DeathDate: tt.death}
			if got := m.Lifespan(); got != tt.lifespan {
				t.Errorf("Lifespan() = %q, want %q", got, tt.lifespan)
			}
		})
	}
}

func TestGen(t *testing.T) {
	if got := (Member{Generation: 0}).Gen(); got != 1 {
		t.Errorf("Gen() = %d, want 1", got)
	}
	if got := (Member{Generation: -3}).Gen(); got != 1 {
		t.Errorf("Gen() = %d, want 1", got)
	}
	if got := (Member{Generation: 4}).Gen(); got != 4 {
		t.Errorf("Gen() = %d, want 4", got)
	}
}

func TestCanonicalOrderIndependent(t *testing.T) {
	a := []Member{{ID: "2", Name: "B"}, {ID: "1", Name: "A"}, {ID: "10", Name: "C"}}
	b := []Member{{ID: "10", Name: "C"}, {ID: "1", Name: "A"}, {ID: "2", Name: "B"}}

	if !bytes.Equal(Canonical(a), Canonical(b)) {
		t.Error("Canonical() differs for reordered input")
	}
	if bytes.Equal(Canonical(a), Canonical(a[:2])) {
		t.Error("Canonical() should change when a member is removed")
	}
}
