package shell

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/josephlewis42/hsh/core/history"
	"github.com/pborman/getopt/v2"
)

const (
	EnvHome = "HOME"
	EnvPWD  = "PWD"
)

// HistoryLister provides the recorded command lines to the history builtin.
type HistoryLister interface {
	Entries() ([]history.Entry, error)
}

// BuiltinEnv is the context a builtin runs in.
type BuiltinEnv struct {
	// Stdout is the terminal for the last stage of a pipeline, otherwise a
	// buffer that becomes the next stage's input.
	Stdout io.Writer
	Stderr io.Writer

	History  HistoryLister
	Builtins Builtins
}

// ShellBuiltin is a command that runs inside the shell process.
type ShellBuiltin interface {
	Main(env *BuiltinEnv, args []string) error
}

type ShellBuiltinFunc func(env *BuiltinEnv, args []string) error

func (f ShellBuiltinFunc) Main(env *BuiltinEnv, args []string) error {
	return f(env, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// InputPasser is implemented by builtins that produce no data. In the middle
// of a pipeline their input is handed to the next stage unchanged.
type InputPasser interface {
	PassesInput() bool
}

type passthroughBuiltin struct {
	ShellBuiltinFunc
}

func (passthroughBuiltin) PassesInput() bool {
	return true
}

// Passthrough makes f transparent to pipeline data.
func Passthrough(f ShellBuiltinFunc) ShellBuiltin {
	return passthroughBuiltin{f}
}

// Builtins maps command names to builtins.
type Builtins map[string]ShellBuiltin

// DefaultBuiltins returns the builtins available in every session.
func DefaultBuiltins() Builtins {
	return Builtins{
		"cd":      Passthrough(Cd),
		"history": ShellBuiltinFunc(History),
		"help":    ShellBuiltinFunc(Help),
	}
}

// Lookup returns the builtin for name, if any.
func (b Builtins) Lookup(name string) (ShellBuiltin, bool) {
	builtin, ok := b[name]
	return builtin, ok
}

// Names returns the sorted builtin names.
func (b Builtins) Names() []string {
	var out []string
	for name := range b {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dispatch runs argv if it names a builtin. handled is false if the command
// must be run as a process instead.
func (b Builtins) Dispatch(env *BuiltinEnv, argv []string) (handled bool, err error) {
	if len(argv) == 0 {
		return false, nil
	}
	builtin, ok := b.Lookup(argv[0])
	if !ok {
		return false, nil
	}
	return true, builtin.Main(env, argv)
}

// PassesInput reports whether the builtin called name hands its pipeline
// input through rather than replacing it.
func (b Builtins) PassesInput(name string) bool {
	passer, ok := b[name].(InputPasser)
	return ok && passer.PassesInput()
}

// Cd is the cd shell builtin, it changes the working directory of the shell
// process so later stages are spawned in the new directory.
func Cd(env *BuiltinEnv, args []string) error {
	switch len(args) {
	case 1:
		args = append(args, os.Getenv(EnvHome))
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			return &DirectoryChangeError{Path: args[1], Err: err}
		}
		if wd, err := os.Getwd(); err == nil {
			os.Setenv(EnvPWD, wd)
		}
		return nil
	default:
		return fmt.Errorf("%s: too many arguments", args[0])
	}
}

// History writes the recorded command lines as "<n> <line>".
func History(env *BuiltinEnv, args []string) error {
	opts := getopt.New()
	opts.SetParameters("[N]")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := env.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: history [N]")
		fmt.Fprintln(w, "Display the history list with line numbers, N limits output to the last N entries.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		if err != nil {
			return fmt.Errorf("%s: invalid usage", args[0])
		}
		return nil
	}

	limit := -1
	switch positional := opts.Args(); len(positional) {
	case 0:
	case 1:
		n, err := strconv.Atoi(positional[0])
		if err != nil || n < 0 {
			return fmt.Errorf("%s: %s: numeric argument required", args[0], positional[0])
		}
		limit = n
	default:
		return fmt.Errorf("%s: too many arguments", args[0])
	}

	if env.History == nil {
		return nil
	}
	entries, err := env.History.Entries()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if limit >= 0 && limit < len(entries) {
		entries = entries[len(entries)-limit:]
	}

	return history.Write(env.Stdout, entries)
}

// Help lists the builtins.
func Help(env *BuiltinEnv, args []string) error {
	w := env.Stdout
	fmt.Fprintln(w, "hsh, a small interactive shell.")
	fmt.Fprintln(w, "Commands are separated by `|' to form a pipeline; `exit' quits.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Builtins:")
	fmt.Fprintln(w)

	for _, name := range env.Builtins.Names() {
		fmt.Fprintln(w, name)
	}

	return nil
}
