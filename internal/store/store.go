// Package store persists the calendar document as a single pretty-printed
// JSON file.
//
// Every call reads the file from disk; nothing is cached in memory. All
// mutations go through Update, which holds the store's mutex and an
// advisory lock on <data file>.lock for the whole load-modify-save cycle,
// so writers in this process and in other processes (a running server and
// an import, say) cannot overwrite each other's changes.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	appLog "minical/internal/log"
	"minical/internal/model"
)

const filePerm = 0o644

// PersistenceError reports a failed disk operation on the data file.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("Failed to persist data: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store is a handle on one data file. Several handles on the same file,
// in one process or many, serialize their writes through the lock file.
type Store struct {
	path string
	mu   sync.RWMutex
	lock *flock.Flock
}

// New returns a Store for path. The file is created lazily on first access.
func New(path string) *Store {
	return &Store{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document, creating the file with the default document if
// it does not exist yet.
func (s *Store) Load() (model.Document, error) {
	s.mu.RLock()
	doc, err := s.read()
	s.mu.RUnlock()
	if !errors.Is(err, fs.ErrNotExist) {
		return doc, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lockFile()
	if err != nil {
		return model.Document{}, err
	}
	defer unlock()
	return s.load()
}

// Save replaces the document on disk.
func (s *Store) Save(doc model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lockFile()
	if err != nil {
		return err
	}
	defer unlock()
	return s.write(doc)
}

// View loads the document and hands it to fn.
func (s *Store) View(fn func(doc model.Document) error) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}
	return fn(doc)
}

// Update runs one serialized load-modify-save cycle. If fn returns an error
// nothing is written and the error is returned unchanged.
func (s *Store) Update(fn func(doc *model.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lockFile()
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.write(doc)
}

// CopyTo writes the current file content to w. It is used for snapshots and
// never sees a half-written document.
func (s *Store) CopyTo(w io.Writer) error {
	if _, err := s.Load(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if err != nil {
		return &PersistenceError{Op: "open", Path: s.path, Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return &PersistenceError{Op: "copy", Path: s.path, Err: err}
	}
	return nil
}

// lockFile takes the advisory file lock. It must be called with s.mu held,
// since a Flock is not reentrant across goroutines of one handle.
func (s *Store) lockFile() (func(), error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &PersistenceError{Op: "mkdir", Path: dir, Err: err}
	}
	if err := s.lock.Lock(); err != nil {
		return nil, &PersistenceError{Op: "lock", Path: s.lock.Path(), Err: err}
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			appLog.Warn("failed to release data file lock", "path", s.lock.Path(), "err", err)
		}
	}, nil
}

// load must be called with the write lock and the file lock held.
func (s *Store) load() (model.Document, error) {
	doc, err := s.read()
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return model.Document{}, err
	}

	doc = model.DefaultDocument()
	if err := s.write(doc); err != nil {
		return model.Document{}, err
	}
	appLog.Info("created data file with default categories", "path", s.path)
	return doc, nil
}

func (s *Store) read() (model.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Document{}, err
		}
		return model.Document{}, &PersistenceError{Op: "read", Path: s.path, Err: err}
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Document{}, &PersistenceError{Op: "decode", Path: s.path, Err: err}
	}
	doc.Normalize()
	return doc, nil
}

// write serializes doc to a temp file next to the target and renames it
// into place, so readers see either the old or the new document.
func (s *Store) write(doc model.Document) error {
	doc.Normalize()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return &PersistenceError{Op: "create temp", Path: dir, Err: err}
	}
	tmpName := tmp.Name()

	fail := func(op string, err error) error {
		tmp.Close()
		if rmErr := os.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			appLog.Warn("failed to remove temp file", "path", tmpName, "err", rmErr)
		}
		return &PersistenceError{Op: op, Path: s.path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("close", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fail("rename", err)
	}
	return nil
}
