package options

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Store loads option trees.
type Store interface {
	// Load returns the stored tree. It returns ErrNoOptions when nothing is stored.
	Load(ctx context.Context) (Options, error)

	// Name identifies the store in logs and metrics.
	Name() string
}

// FileStore reads options from a YAML file.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the YAML file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Name implements Store.
func (s *FileStore) Name() string { return "file" }

// Path returns the file path.
func (s *FileStore) Path() string { return s.path }

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (Options, error) {
	if err := ctx.Err(); err != nil {
		return Options{}, err
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Options{}, ErrNoOptions
		}
		return Options{}, storeError(s.Name(), "load", err)
	}

	o, err := DecodeYAML(b)
	if err != nil {
		return Options{}, storeError(s.Name(), "decode", err)
	}
	return o, nil
}

// Save writes o to the file, replacing its content.
func (s *FileStore) Save(ctx context.Context, o Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := EncodeYAML(o)
	if err != nil {
		return storeError(s.Name(), "save", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return storeError(s.Name(), "save", err)
	}
	return nil
}

// DecodeYAML parses an option tree.
func DecodeYAML(b []byte) (Options, error) {
	var o Options
	if err := yaml.Unmarshal(b, &o); err != nil {
		return Options{}, fmt.Errorf("parse options yaml: %w", err)
	}
	return o, nil
}

// EncodeYAML renders an option tree.
func EncodeYAML(o Options) ([]byte, error) {
	b, err := yaml.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("render options yaml: %w", err)
	}
	return b, nil
}
