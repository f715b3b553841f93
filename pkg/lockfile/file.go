package lockfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/matzehuels/ziplock/pkg/errors"
)

// FileName is the lock written at the root of a project.
const FileName = "ziplock.json"

// historyDir keeps every saved lock by ID.
const historyDir = ".ziplock"

// FileStore writes the latest lock to <dir>/ziplock.json and keeps each
// saved lock under <dir>/.ziplock/<id>.json.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the location of the current lock.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, FileName)
}

func (s *FileStore) Save(ctx context.Context, l *Lock) error {
	if err := ValidateID(l.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := writeAtomic(filepath.Join(s.dir, historyDir, l.ID+".json"), data); err != nil {
		return err
	}
	return writeAtomic(s.Path(), data)
}

func (s *FileStore) Load(ctx context.Context, id string) (*Lock, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	l, err := readLock(filepath.Join(s.dir, historyDir, id+".json"))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	return l, err
}

// Current reads ziplock.json.
func (s *FileStore) Current(ctx context.Context) (*Lock, error) {
	l, err := readLock(s.Path())
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", s.Path())
	}
	return l, err
}

func (s *FileStore) Close(context.Context) error { return nil }

func readLock(path string) (*Lock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l Lock
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	return &l, nil
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var _ Store = (*FileStore)(nil)
