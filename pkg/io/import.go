package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// Supported file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is the on-disk representation of a family tree.
type Document struct {
	Members []family.Member   `json:"members" yaml:"members"`
	Config  viewconfig.Values `json:"config,omitempty" yaml:"config,omitempty"`
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot tell format of %s (want .json, .yaml or .yml)", path)
	}
}

// ParseFormat normalises a format name ("yml" is an alias of "yaml").
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want json or yaml)", s)
	}
}

// ReadDocument decodes a document or a bare member list from r.
// Unknown config keys are dropped.
func ReadDocument(r io.Reader, format string) (Document, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return Document{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read: %w", err)
	}

	var doc Document
	switch format {
	case FormatJSON:
		err = decodeJSON(data, &doc)
	case FormatYAML:
		err = decodeYAML(data, &doc)
	}
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", format)
	}

	for i, m := range doc.Members {
		doc.Members[i] = m.Normalized()
	}
	if doc.Config != nil {
		doc.Config = viewconfig.Values(viewconfig.Patch(doc.Config).Sanitize())
	}
	return doc, nil
}

func decodeJSON(data []byte, doc *Document) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &doc.Members)
	}
	return json.Unmarshal(trimmed, doc)
}

func decodeYAML(data []byte, doc *Document) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if len(root.Content) == 0 {
		return nil
	}
	top := root.Content[0]
	if top.Kind == yaml.SequenceNode {
		return top.Decode(&doc.Members)
	}
	return top.Decode(doc)
}

// ReadMembers decodes only the members of a document or member list.
func ReadMembers(r io.Reader, format string) ([]family.Member, error) {
	doc, err := ReadDocument(r, format)
	if err != nil {
		return nil, err
	}
	return doc.Members, nil
}

// ImportFile reads the document at path, choosing the format by extension.
func ImportFile(path string) (Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f, format)
}
