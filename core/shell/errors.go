package shell

import (
	"errors"
	"fmt"
	"os/exec"
)

// DirectoryChangeError is returned by cd when the target can't be entered.
type DirectoryChangeError struct {
	Path string
	Err  error
}

func (e *DirectoryChangeError) Error() string {
	return fmt.Sprintf("cd: %s: No such file or directory", e.Path)
}

func (e *DirectoryChangeError) Unwrap() error {
	return e.Err
}

// SpawnError is returned when a program couldn't be found or started.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	if errors.Is(e.Err, exec.ErrNotFound) {
		return fmt.Sprintf("%s: command not found", e.Program)
	}
	return fmt.Sprintf("%s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
