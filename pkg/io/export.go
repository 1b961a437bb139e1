package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/kintree/pkg/family"
)

// WriteDocument encodes doc in format and writes it to w. Members are
// written sorted by id.
func WriteDocument(w io.Writer, doc Document, format string) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}
	doc.Members = slices.Clone(doc.Members)
	slices.SortFunc(doc.Members, func(a, b family.Member) int { return family.CompareIDs(a.ID, b.ID) })
	if doc.Members == nil {
		doc.Members = []family.Member{}
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
}

// WriteMembers writes a document holding only members.
func WriteMembers(w io.Writer, members []family.Member, format string) error {
	return WriteDocument(w, Document{Members: members}, format)
}

// ExportFile writes doc to path, choosing the format by extension.
func ExportFile(path string, doc Document) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteDocument(f, doc, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
