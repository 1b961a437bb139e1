package io

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

func TestReadDocumentShapes(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
		want   int
		title  string
	}{
		{"json list", "json", `[{"id": 1, "name": "Karl"}, {"id": "2", "name": "Anna"}]`, 2, ""},
		{"json document", "json", `{"members": [{"id": 1, "name": "Karl"}], "config": {"title": "Berg", "bogus": "x"}}`, 1, "Berg"},
		{"yaml list", "yaml", "- id: 1\n  name: Karl\n- id: 2\n  name: Anna\n", 2, ""},
		{"yaml document", "yml", "members:\n  - id: 7\n    name: Karl\nconfig:\n  title: Berg\n", 1, "Berg"},
		{"empty yaml", "yaml", "", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ReadDocument(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatal(err)
			}
			if len(doc.Members) != tt.want {
				t.Errorf("members = %d, want %d", len(doc.Members), tt.want)
			}
			if got := doc.Config[viewconfig.KeyTitle]; got != tt.title {
				t.Errorf("title = %q, want %q", got, tt.title)
			}
			if _, ok := doc.Config["bogus"]; ok {
				t.Error("unknown config key kept")
			}
		})
	}
}

func TestReadDocumentNormalises(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(`[{"id": " 3 ", "name": " Clara ", "gender": "F", "father_id": 1}]`), "json")
	if err != nil {
		t.Fatal(err)
	}
	m := doc.Members[0]
	if m.ID != "3" || m.Name != "Clara" || m.Gender != family.GenderFemale || m.FatherID != "1" || m.Generation != 1 {
		t.Errorf("member not normalised: %+v", m)
	}
}

func TestReadDocumentErrors(t *testing.T) {
	if _, err := ReadDocument(strings.NewReader("{"), "json"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("malformed json err = %v", err)
	}
	if _, err := ReadDocument(strings.NewReader("[]"), "csv"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("csv err = %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"family.json", FormatJSON, false},
		{"family.YAML", FormatYAML, false},
		{"dir/family.yml", FormatYAML, false},
		{"family.csv", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("FormatFromPath = %q, %v", got, err)
			}
		})
	}
}

func TestWriteMembersSorted(t *testing.T) {
	members := []family.Member{{ID: "10", Name: "B"}, {ID: "2", Name: "A"}}
	var buf bytes.Buffer
	if err := WriteMembers(&buf, members, "json"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Index(out, `"id": "2"`) > strings.Index(out, `"id": "10"`) {
		t.Errorf("members not sorted by id:\n%s", out)
	}
	if members[0].ID != "10" {
		t.Error("input slice reordered")
	}
}

func TestWriteEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMembers(&buf, nil, "json"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"members": []`) {
		t.Errorf("empty export = %s", buf.String())
	}
}

func TestExportImportFile(t *testing.T) {
	doc := Document{
		Members: []family.Member{
			{ID: "1", Name: "Karl", Gender: family.GenderMale, Generation: 1, SpouseID: "2", ChildOrder: family.IntPtr(1)},
			{ID: "2", Name: "Anna", Gender: family.GenderFemale, Generation: 1, SpouseID: "1"},
		},
		Config: viewconfig.Values{viewconfig.KeyTitle: "Karlsson"},
	}
	for _, name := range []string{"family.json", "family.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := ExportFile(path, doc); err != nil {
				t.Fatal(err)
			}
			got, err := ImportFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if len(got.Members) != 2 || got.Members[0].SpouseID != "2" || *got.Members[0].ChildOrder != 1 {
				t.Errorf("members = %+v", got.Members)
			}
			if got.Config[viewconfig.KeyTitle] != "Karlsson" {
				t.Errorf("config = %v", got.Config)
			}
		})
	}
}

func TestImportFileMissing(t *testing.T) {
	_, err := ImportFile(filepath.Join(t.TempDir(), "nope.json"))
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}
