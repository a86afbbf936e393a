package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultFilePath = "~/.local/share/dexterm/storage.toml"

// File keeps items in a single TOML document, rewritten on every SetItem.
type File struct {
	path string
	mu   sync.Mutex
}

type fileDocument struct {
	Items map[string]string `toml:"items"`
}

// OpenFile returns a file backend rooted at path. The file is created lazily
// on the first write.
func OpenFile(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultFilePath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve storage path: %w", err)
	}
	return &File{path: resolved}, nil
}

// Path returns the resolved file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) GetItem(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Items[key]
	return v, ok, nil
}

func (f *File) SetItem(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		// A corrupt document is replaced rather than blocking writes.
		doc = fileDocument{}
	}
	if doc.Items == nil {
		doc.Items = make(map[string]string)
	}
	doc.Items[key] = value
	return f.write(doc)
}

func (f *File) Close() error { return nil }

func (f *File) read() (fileDocument, error) {
	var doc fileDocument
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read storage file: %w", err)
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fileDocument{}, fmt.Errorf("parse storage file: %w", err)
	}
	return doc, nil
}

func (f *File) write(doc fileDocument) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal storage file: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
