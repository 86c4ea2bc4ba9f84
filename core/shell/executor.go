package shell

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Result summarizes a finished pipeline.
type Result struct {
	// Started is the number of stages that ran, builtins included.
	Started int
	// ExitCode is the exit code of the last process that ran, 0 if only
	// builtins ran.
	ExitCode int
	// Interrupted is set if an interrupt cut the pipeline short.
	Interrupted bool
}

// Executor runs pipelines one stage at a time. The output of every stage but
// the last is collected in full before the next stage starts, so adjacent
// stages never run concurrently.
type Executor struct {
	Builtins Builtins
	Launcher Launcher
	Router   *Router
	History  HistoryLister

	// Terminal output for builtins in the last stage.
	Stdout io.Writer
	Stderr io.Writer

	Log *zap.Logger
}

func (e *Executor) log() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// Execute runs p to completion. A stage that fails to start, or a builtin
// that fails, aborts the pipeline: later stages never start and the error
// is returned. Every started process has exited by the time Execute
// returns.
func (e *Executor) Execute(p Pipeline) (Result, error) {
	var result Result

	e.Router.Begin()
	defer e.Router.End()

	// Input for stage i >= 1. Only stage 0 reads the terminal, later stages
	// read nothing if no earlier stage produced data.
	var pendingInput []byte

	for _, stage := range p {
		if result.Started > 0 && e.Router.Interrupted() {
			result.Interrupted = true
			return result, nil
		}

		log := e.log().With(zap.Int("stage", stage.Index), zap.Strings("argv", stage.Args))

		env := &BuiltinEnv{
			Stdout:   e.Stdout,
			Stderr:   e.Stderr,
			History:  e.History,
			Builtins: e.Builtins,
		}
		buf := &bytes.Buffer{}
		if !stage.IsLast {
			env.Stdout = buf
		}

		handled, err := e.Builtins.Dispatch(env, stage.Args)
		if handled {
			result.Started++
			if err != nil {
				log.Debug("builtin failed", zap.Error(err))
				return result, err
			}
			log.Debug("ran builtin")

			if !stage.IsLast && !e.Builtins.PassesInput(stage.Name()) {
				pendingInput = append([]byte{}, buf.Bytes()...)
			}
			continue
		}

		var stdin io.Reader
		if stage.Index > 0 {
			stdin = bytes.NewReader(pendingInput)
		}

		child, err := e.Launcher.Launch(stage.Args, stdin, !stage.IsLast)
		if err != nil {
			log.Debug("launch failed", zap.Error(err))
			return result, err
		}
		result.Started++
		log.Debug("launched", zap.Int("pid", child.Pid()))

		output, code, err := e.await(child)
		log.Debug("exited", zap.Int("code", code))
		if err != nil {
			return result, fmt.Errorf("%s: %w", stage.Name(), err)
		}

		result.ExitCode = code
		if !stage.IsLast {
			pendingInput = output
		}
	}

	result.Interrupted = e.Router.Interrupted()
	return result, nil
}

// await drains the child's captured output, if any, then waits for it to
// exit. The child receives interrupts until it has exited.
func (e *Executor) await(child *RunningChild) (output []byte, code int, err error) {
	e.Router.Mark(child)
	defer e.Router.Clear(child)

	var drainErr error
	if child.Output != nil {
		output, drainErr = io.ReadAll(child.Output)
		if output == nil {
			output = []byte{}
		}
	}

	code, err = child.Wait()
	if err == nil {
		err = drainErr
	}
	return output, code, err
}
