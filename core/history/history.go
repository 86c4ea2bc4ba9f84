// Package history is an append-only log of command lines.
//
// The log is plain text with one command line per newline-terminated record.
// Embedded newlines are not escaped.
package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// Entry is a single recorded command line.
type Entry struct {
	// Number is the 1-based position of the entry in the log.
	Number int
	Line   string
}

func (e Entry) String() string {
	return fmt.Sprintf("%d %s", e.Number, e.Line)
}

// AppendError is returned when a line couldn't be recorded.
type AppendError struct {
	Line string
	Err  error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("history: couldn't record %q: %v", e.Line, e.Err)
}

func (e *AppendError) Unwrap() error {
	return e.Err
}

// Store is a history log backed by a single file.
type Store struct {
	fs   afero.Fs
	name string

	mu sync.Mutex
}

// NewStore creates a store for the file name within fs. The file is created
// on the first Append.
func NewStore(fs afero.Fs, name string) *Store {
	return &Store{fs: fs, name: name}
}

// Append durably records one line.
func (s *Store) Append(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fd, err := s.fs.OpenFile(s.name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return &AppendError{Line: line, Err: err}
	}

	if _, err := io.WriteString(fd, line+"\n"); err != nil {
		fd.Close()
		return &AppendError{Line: line, Err: err}
	}

	if err := fd.Sync(); err != nil {
		fd.Close()
		return &AppendError{Line: line, Err: err}
	}

	if err := fd.Close(); err != nil {
		return &AppendError{Line: line, Err: err}
	}
	return nil
}

// Entries returns every recorded line in recording order. A log that
// doesn't exist yet has no entries.
func (s *Store) Entries() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fd, err := s.fs.Open(s.name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, err
	}
	defer fd.Close()

	var out []Entry
	scanner := bufio.NewScanner(fd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		out = append(out, Entry{Number: len(out) + 1, Line: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Write writes the entries to w as "<n> <line>", one per line.
func Write(w io.Writer, entries []Entry) error {
	for _, entry := range entries {
		if _, err := fmt.Fprintln(w, entry.String()); err != nil {
			return err
		}
	}
	return nil
}
