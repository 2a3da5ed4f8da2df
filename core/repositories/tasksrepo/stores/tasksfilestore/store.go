// Package tasksfilestore keeps the task document in a JSON file on disk.
package tasksfilestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/jrazmi/taskclock/core/repositories/tasksrepo"
	"github.com/jrazmi/taskclock/sdk/logger"
)

// Store implements tasksrepo.Storer on <dir>/<key>.json. Every call reopens
// the file under an exclusive flock, so single reads and writes never
// interleave. The repository reads the document once and rewrites it whole,
// so only one process may own it at a time: edit it with the CLI while the
// service is stopped.
type Store struct {
	log      *logger.Logger
	filePath string
}

func NewStore(log *logger.Logger, dir, key string) (*Store, error) {
	if key == "" {
		return nil, fmt.Errorf("storage key is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return &Store{
		log:      log,
		filePath: filepath.Join(dir, key+".json"),
	}, nil
}

// Path is the backing file.
func (s *Store) Path() string {
	return s.filePath
}

func (s *Store) Load(ctx context.Context) ([]tasksrepo.Task, error) {
	var tasks []tasksrepo.Task
	err := s.withFileLock(func(file *os.File) error {
		data, err := io.ReadAll(file)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}
		tasks, err = tasksrepo.DecodeDocument(data)
		return err
	})
	return tasks, err
}

// Save truncates and rewrites the whole document.
func (s *Store) Save(ctx context.Context, tasks []tasksrepo.Task) error {
	data, err := tasksrepo.EncodeDocument(tasks)
	if err != nil {
		return err
	}

	return s.withFileLock(func(file *os.File) error {
		if err := file.Truncate(0); err != nil {
			return fmt.Errorf("truncate file: %w", err)
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("seek: %w", err)
		}
		if _, err := file.Write(data); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
		s.log.Debug("tasks written", "path", s.filePath, "count", len(tasks))
		return file.Sync()
	})
}

func (s *Store) withFileLock(fn func(*os.File) error) error {
	file, err := os.OpenFile(s.filePath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock file: %w", err)
	}
	defer syscall.Flock(int(file.Fd()), syscall.LOCK_UN)

	return fn(file)
}
