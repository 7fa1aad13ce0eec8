// Package manifest describes piece trees declaratively in YAML and mounts
// them onto surfaces.
//
// A manifest looks like:
//
//	name: demo
//	pieces:
//	  - kind: box
//	    id: card
//	    children:
//	      - kind: text
//	        id: title
//	        text: Hello
//
// Boxes become nested nodes on a surface.Node target and are transparent on
// a surface.Canvas. Text pieces render their text and accept updates with a
// "text" prop.
package manifest

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind names a piece type in a manifest.
type Kind string

const (
	// KindBox groups children.
	KindBox Kind = "box"
	// KindText renders a line of text.
	KindText Kind = "text"
)

// Manifest is a named list of top-level piece specs.
type Manifest struct {
	Name   string `yaml:"name,omitempty"`
	Pieces []Spec `yaml:"pieces"`
}

// Spec describes one piece and its children.
type Spec struct {
	Kind     Kind   `yaml:"kind"`
	ID       string `yaml:"id,omitempty"`
	Tag      string `yaml:"tag,omitempty"`
	Text     string `yaml:"text,omitempty"`
	Children []Spec `yaml:"children,omitempty"`
}

// Parse decodes and validates a manifest. Unknown fields are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest is empty")
		}
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Validate checks kinds, child placement and ID uniqueness.
func (m *Manifest) Validate() error {
	if len(m.Pieces) == 0 {
		return fmt.Errorf("manifest has no pieces")
	}
	seen := make(map[string]string)
	for i := range m.Pieces {
		if err := m.Pieces[i].validate(fmt.Sprintf("pieces[%d]", i), seen); err != nil {
			return err
		}
	}
	return nil
}

func (s *Spec) validate(path string, seen map[string]string) error {
	switch s.Kind {
	case KindBox:
	case KindText:
		if len(s.Children) > 0 {
			return fmt.Errorf("%s: text pieces cannot have children", path)
		}
	case "":
		return fmt.Errorf("%s: kind is required", path)
	default:
		return fmt.Errorf("%s: unknown kind %q", path, s.Kind)
	}
	if s.ID != "" {
		if prev, ok := seen[s.ID]; ok {
			return fmt.Errorf("%s: duplicate id %q (first used at %s)", path, s.ID, prev)
		}
		seen[s.ID] = path
	}
	for i := range s.Children {
		if err := s.Children[i].validate(fmt.Sprintf("%s.children[%d]", path, i), seen); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of specs in the manifest, including nested ones.
func (m *Manifest) Count() int {
	n := 0
	var walk func([]Spec)
	walk = func(specs []Spec) {
		for _, s := range specs {
			n++
			walk(s.Children)
		}
	}
	walk(m.Pieces)
	return n
}

// Marshal encodes m as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
