// Package filerepo persists tokens as a small JSON document on disk, the
// command line counterpart of browser local storage.
package filerepo

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	apperrors "github.com/jrsteele09/go-bookshelf-client/internal/errors"
	"github.com/jrsteele09/go-bookshelf-client/token"
	"github.com/pkg/errors"
)

var _ token.Repo = (*FileTokenRepo)(nil)

type FileTokenRepo struct {
	path string
	lock sync.RWMutex
}

// New returns a repo backed by path. The file and its directory are created on first write.
func New(path string) *FileTokenRepo {
	return &FileTokenRepo{path: path}
}

func (fr *FileTokenRepo) Path() string {
	return fr.path
}

func (fr *FileTokenRepo) Get(_ context.Context, key string) (string, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	values, err := fr.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return v, nil
}

func (fr *FileTokenRepo) Set(_ context.Context, key, value string) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	values, err := fr.load()
	if err != nil {
		return err
	}
	values[key] = value
	return fr.save(values)
}

func (fr *FileTokenRepo) Delete(_ context.Context, keys ...string) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	values, err := fr.load()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := values[k]; ok {
			delete(values, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if len(values) == 0 {
		if err := os.Remove(fr.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errors.Wrap(err, "[Delete] failed to remove token file")
		}
		return nil
	}
	return fr.save(values)
}

func (fr *FileTokenRepo) load() (map[string]string, error) {
	values := make(map[string]string)
	b, err := os.ReadFile(fr.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[load] failed to read token file")
	}
	if len(b) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, errors.Wrapf(err, "[load] token file %s is corrupt", fr.path)
	}
	return values, nil
}

func (fr *FileTokenRepo) save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(fr.path), 0o700); err != nil {
		return errors.Wrap(err, "[save] failed to create token directory")
	}
	return writeJSONAtomic(fr.path, values)
}

// writeJSONAtomic writes through a temp file and rename so a crash never
// leaves a half written token file behind.
func writeJSONAtomic(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}

	err = os.Rename(tmp, path)
	if err != nil && runtime.GOOS == "windows" {
		// Rename does not replace an existing file there.
		_ = os.Remove(path)
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
	}
	return err
}
