// Package joblog appends job entries to plain-text log files.
package joblog

import (
	"fmt"
	"os"
	"sync"
)

// File is an append-only sink. Each Append issues exactly one write so an
// entry is never interleaved with another process appending to the same path.
type File struct {
	path string
	mu   sync.Mutex
}

func New(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string { return f.path }

func (f *File) Append(entry string) error {
	if entry == "" {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	fh, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.path, err)
	}
	if _, err := fh.WriteString(entry); err != nil {
		fh.Close()
		return fmt.Errorf("append %s: %w", f.path, err)
	}
	return fh.Close()
}
