package shell

import (
	"errors"
	"io"
	"os"
	"os/exec"
)

// Launcher starts the process for one pipeline stage.
type Launcher interface {
	// Launch starts argv. A nil stdin means the child reads the terminal.
	// When capture is set the child's output is available from
	// RunningChild.Output rather than going to the terminal.
	Launch(argv []string, stdin io.Reader, capture bool) (*RunningChild, error)
}

// ProcessLauncher starts operating system processes that inherit the shell's
// environment and working directory.
type ProcessLauncher struct {
	// Terminal streams, used for stage 0 input, last stage output and every
	// stage's errors.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ Launcher = (*ProcessLauncher)(nil)

// Launch implements Launcher.
func (l *ProcessLauncher) Launch(argv []string, stdin io.Reader, capture bool) (*RunningChild, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	cmd.Stderr = l.Stderr

	cmd.Stdin = stdin
	if stdin == nil {
		cmd.Stdin = l.Stdin
	}

	child := &RunningChild{Args: argv, cmd: cmd}
	if capture {
		output, err := cmd.StdoutPipe()
		if err != nil {
			return nil, &SpawnError{Program: argv[0], Err: err}
		}
		child.Output = output
	} else {
		cmd.Stdout = l.Stdout
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Program: argv[0], Err: err}
	}

	return child, nil
}

// RunningChild is a started stage process.
type RunningChild struct {
	Args []string
	// Output is the captured standard output, nil if the child writes to the
	// terminal. It must be drained before calling Wait.
	Output io.ReadCloser

	cmd *exec.Cmd
}

// Pid returns the process identifier of the child.
func (c *RunningChild) Pid() int {
	return c.cmd.Process.Pid
}

// Signal delivers sig to the child. Signaling a child that already exited is
// a no-op.
func (c *RunningChild) Signal(sig os.Signal) error {
	err := c.cmd.Process.Signal(sig)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// Wait waits for the child to exit and returns its exit code, -1 if it was
// terminated by a signal. A non-zero exit isn't an error.
func (c *RunningChild) Wait() (int, error) {
	err := c.cmd.Wait()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, err
	}
}
