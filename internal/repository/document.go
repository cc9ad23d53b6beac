package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNoEntry is returned by document-backed repositories when a lookup has no
// match, playing the role sql.ErrNoRows plays for SQL stores. Services map it
// to user-facing not-found errors.
var ErrNoEntry = errors.New("no entry")

// errNoChange signals mutate to skip the save without failing.
var errNoChange = errors.New("no change")

// document persists one whole JSON document on disk. Every mutation is a
// serialized read-modify-write of the entire file; the mutex removes the
// lost-update race between concurrent admin mutations at negligible cost.
type document struct {
	path string
	mu   sync.Mutex
}

func newDocument(path string) *document {
	return &document{path: path}
}

// view loads the document into dest under the lock. A missing file leaves
// dest untouched, so callers see their zero value on first read.
func (d *document) view(dest interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadLocked(dest)
}

// mutate runs fn between load and save under the lock. fn mutates the
// document through dest. Returning errNoChange skips the save.
func (d *document) mutate(dest interface{}, fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.loadLocked(dest); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	return d.saveLocked(dest)
}

func (d *document) loadLocked(dest interface{}) error {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read document %s: %w", d.path, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode document %s: %w", d.path, err)
	}
	return nil
}

func (d *document) saveLocked(value interface{}) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document %s: %w", d.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("prepare document directory: %w", err)
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write document %s: %w", d.path, err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("replace document %s: %w", d.path, err)
	}
	return nil
}
