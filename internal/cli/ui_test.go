package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/family"
)

func captureStatus(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := statusOut
	statusOut = &buf
	t.Cleanup(func() { statusOut = old })
	return &buf
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		name     string
		problems int
		cached   bool
		want     []string
		notWant  string
	}{
		{"fresh", 0, false, []string{"3 members", "2 connectors", "fresh"}, "recovered"},
		{"cached with problems", 1, true, []string{"1 recovered references", "cached"}, "fresh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureStatus(t)
			printStats(3, 2, tt.problems, tt.cached)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("stats %q missing %q", out, w)
				}
			}
			if strings.Contains(out, tt.notWant) {
				t.Errorf("stats %q should not contain %q", out, tt.notWant)
			}
		})
	}
}

func TestStatusLines(t *testing.T) {
	buf := captureStatus(t)
	printSuccess("Added %s", "Karl")
	printWarning("tree_scale %q is not a number", "abc")
	printKeyValue("title", "Die Familie")
	printFile("tree.svg")

	out := buf.String()
	for _, want := range []string{iconSuccess + " Added Karl", `"abc"`, "title", "Die Familie", iconArrow, "tree.svg"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestMemberTable(t *testing.T) {
	out := memberTable([]family.Member{
		{ID: "1", Name: "Karl", Gender: "m", Generation: 1, BirthDate: "1901", DeathDate: "1980", SpouseID: "2"},
		{ID: "2", Name: "Anna", Gender: "f", Generation: 1, SpouseID: "1"},
	})
	for _, want := range []string{"Father", "Karl", "male", "female", "1901–1980", "—"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
