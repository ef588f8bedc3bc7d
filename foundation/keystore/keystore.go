// Package keystore provides get-by-key access to a YAML or JSON configuration
// document on disk. The document is read fresh on every lookup so edits to
// the file are picked up without restarting the caller.
package keystore

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when the requested key does not exist at the top
// level of the document.
var ErrNotFound = errors.New("key not found")

// Store represents a keyed document on disk.
type Store struct {
	path string
}

// File constructs a store for the document at the specified path. The file
// is not opened until the first lookup.
func File(path string) *Store {
	return &Store{
		path: path,
	}
}

// Path returns the location of the underlying document.
func (s *Store) Path() string {
	return s.path
}

// Get decodes the value stored under key into dest.
func (s *Store) Get(key string, dest any) error {
	doc, err := s.load()
	if err != nil {
		return err
	}

	node, exists := doc[key]
	if !exists {
		return fmt.Errorf("%s: %q: %w", s.path, key, ErrNotFound)
	}

	if err := node.Decode(dest); err != nil {
		return fmt.Errorf("%s: decoding %q: %w", s.path, key, err)
	}

	return nil
}

// Keys returns the top level keys of the document in file order.
func (s *Store) Keys() ([]string, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	if len(root.Content) == 0 {
		return nil, nil
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing %s: document is not a mapping", s.path)
	}

	keys := make([]string, 0, len(mapping.Content)/2)
	for i := 0; i < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}

	return keys, nil
}

// =============================================================================

// load reads and parses the document into its top level mapping.
func (s *Store) load() (map[string]yaml.Node, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	doc := make(map[string]yaml.Node)
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	return doc, nil
}
