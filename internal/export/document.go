// Package export reads and writes pathway collections as YAML documents.
// The same format feeds auto-commits, the export command and seed files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/MrSnakeDoc/pathways/internal/domain"
	"gopkg.in/yaml.v3"
)

// FormatVersion is written into every document.
const FormatVersion = 1

// ErrUnsupportedVersion is returned for documents newer than FormatVersion.
var ErrUnsupportedVersion = errors.New("unsupported document version")

// Document is the top-level YAML shape.
//
//	version: 1
//	pathways:
//	  - name: Go
//	    steps: [...]
type Document struct {
	Version  int              `yaml:"version"`
	Pathways []domain.Pathway `yaml:"pathways"`
}

// Encode renders pathways in their current order. Output depends only on
// the input, so identical collections encode to identical bytes.
func Encode(pathways []domain.Pathway) ([]byte, error) {
	if pathways == nil {
		pathways = []domain.Pathway{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Document{Version: FormatVersion, Pathways: pathways}); err != nil {
		return nil, fmt.Errorf("failed to encode pathways: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode pathways: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a document. A bare YAML list of pathways is accepted too.
func Decode(data []byte) ([]domain.Pathway, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to parse pathways yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return []domain.Pathway{}, nil
	}

	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var pathways []domain.Pathway
		if err := root.Decode(&pathways); err != nil {
			return nil, fmt.Errorf("failed to parse pathways yaml: %w", err)
		}
		return pathways, nil
	}

	var doc Document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse pathways yaml: %w", err)
	}
	if doc.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}
	if doc.Pathways == nil {
		doc.Pathways = []domain.Pathway{}
	}
	return doc.Pathways, nil
}

// Load reads and decodes the file at path.
func Load(path string) ([]domain.Pathway, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pathways file: %w", err)
	}
	return Decode(data)
}
