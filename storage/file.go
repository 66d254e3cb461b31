package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// fileDoc is the on-disk layout shared by File and Vault.
type fileDoc struct {
	Data map[string]string `json:"data"`
}

// File is a KV kept as one JSON document on disk. Every Set rewrites the
// whole document.
type File struct {
	path string

	mu   sync.Mutex
	data map[string]string
}

// OpenFile loads the document at path. A missing file is an empty store;
// an unreadable or malformed one is an error.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, data: make(map[string]string)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var doc fileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode store file %s: %w", path, err)
	}
	if doc.Data != nil {
		f.data = doc.Data
	}
	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.data[key]
	f.data[key] = value
	if err := f.save(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) save() error {
	raw, err := json.Marshal(fileDoc{Data: f.data})
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}
	if err := writeFileAtomic(f.path, raw); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}
