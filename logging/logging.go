// Package logging tees the standard logger to stdout and a size-capped file.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

const DefaultMaxBytes = 2 * 1024 * 1024

// RotatingWriter caps a log file at limit bytes. Crossing the cap moves the file
// to path+".1", replacing any older backup, and starts a fresh one.
type RotatingWriter struct {
	mu      sync.Mutex
	path    string
	limit   int64
	out     *os.File
	written int64
}

func NewRotatingWriter(path string, limit int64) (*RotatingWriter, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	w := &RotatingWriter{path: path, limit: limit}
	if err := w.open(os.O_APPEND); err != nil {
		return nil, err
	}
	if w.written > w.limit {
		if err := w.shift(); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Setup routes the standard logger to stdout and a RotatingWriter at path.
func Setup(path string, limit int64) (*RotatingWriter, error) {
	w, err := NewRotatingWriter(path, limit)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, w))
	return w, nil
}

func (w *RotatingWriter) open(mode int) error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|mode, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	w.out, w.written = f, 0
	if mode == os.O_APPEND {
		if info, err := f.Stat(); err == nil {
			w.written = info.Size()
		}
	}
	return nil
}

// shift must be called with mu held.
func (w *RotatingWriter) shift() error {
	w.out.Close()
	w.out = nil
	if err := os.Rename(w.path, w.path+".1"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return w.open(os.O_TRUNC)
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.out == nil {
		return 0, os.ErrClosed
	}
	n, err := w.out.Write(p)
	w.written += int64(n)
	if err != nil || w.written <= w.limit {
		return n, err
	}
	return n, w.shift()
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.out == nil {
		return nil
	}
	f := w.out
	w.out = nil
	return f.Close()
}
