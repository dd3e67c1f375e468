// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export dumps recovered question records to YAML or JSON so a
// parse can be checked by hand against the source document.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/quizdeck/pkg/types"
)

// Format selects the output encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Document is the exported view of one parse.
type Document struct {
	Title    string                 `json:"title,omitempty" yaml:"title,omitempty"`
	Runs     []types.RunSummary     `json:"runs" yaml:"runs"`
	Records  []types.QuestionRecord `json:"records" yaml:"records"`
	Warnings []string               `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Filter narrows the exported records. Empty fields match everything.
type Filter struct {
	Category string
	Kind     types.Kind
}

func (f Filter) match(q types.QuestionRecord) bool {
	if f.Category != "" && q.Category != f.Category {
		return false
	}
	if f.Kind != "" && q.Kind != f.Kind {
		return false
	}
	return true
}

// Apply returns a copy of doc holding only the records and runs f matches.
func (f Filter) Apply(doc Document) Document {
	out := doc
	out.Records = nil
	for _, q := range doc.Records {
		if f.match(q) {
			out.Records = append(out.Records, q)
		}
	}
	out.Runs = nil
	for _, r := range doc.Runs {
		if f.match(types.QuestionRecord{Category: r.Category, Kind: r.Kind}) {
			out.Runs = append(out.Runs, r)
		}
	}
	return out
}

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export extension %q (want .yaml, .yml, or .json)", filepath.Ext(path))
	}
}

// Marshal encodes doc in the given format.
func Marshal(doc Document, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshaling YAML: %w", err)
		}
		return data, nil
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// WriteFile writes doc to path, choosing the format from its extension.
func WriteFile(path string, doc Document) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Marshal(doc, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
