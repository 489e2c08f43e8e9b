package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"resume-builder/internal/draft"
)

const slotExt = ".json"

// FSDrafts keeps one directory per namespace and one file per slot,
// the on-disk equivalent of browser local storage.
type FSDrafts struct {
	root string
}

func NewFSDrafts(root string) (*FSDrafts, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("drafts: create root: %w", err)
	}
	return &FSDrafts{root: root}, nil
}

// Root returns the directory holding all namespaces.
func (f *FSDrafts) Root() string { return f.root }

func (f *FSDrafts) Backend(namespace string) draft.Backend {
	return &fsBackend{dir: filepath.Join(f.root, safeNamespace(namespace))}
}

// safeNamespace keeps a namespace inside the drafts root.
func safeNamespace(ns string) string {
	ns = filepath.Base(filepath.Clean("/" + ns))
	if ns == "/" || ns == "." || ns == "" {
		return "default"
	}
	return ns
}

type fsBackend struct {
	dir string
}

func (b *fsBackend) path(key draft.Key) string {
	return filepath.Join(b.dir, string(key)+slotExt)
}

func (b *fsBackend) Get(key draft.Key) ([]byte, error) {
	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, draft.ErrNotFound
	}
	return data, err
}

// Put writes through a temp file and rename so readers never observe a
// partially written slot.
func (b *fsBackend) Put(key draft.Key, value []byte) error {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(b.dir, "."+string(key)+"-*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), b.path(key))
}

func (b *fsBackend) Delete(keys ...draft.Key) error {
	var errs []error
	for _, k := range keys {
		if err := os.Remove(b.path(k)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// slotFromPath maps a watched file back to its namespace and slot.
func slotFromPath(root, path string) (string, draft.Key, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", "", false
	}
	ns, file := filepath.Split(rel)
	ns = strings.TrimSuffix(ns, string(filepath.Separator))
	if ns == "" || strings.Contains(ns, string(filepath.Separator)) {
		return "", "", false
	}
	if strings.HasPrefix(file, ".") || !strings.HasSuffix(file, slotExt) {
		return "", "", false
	}
	key := draft.Key(strings.TrimSuffix(file, slotExt))
	for _, k := range draft.Keys {
		if k == key {
			return ns, key, true
		}
	}
	return "", "", false
}
