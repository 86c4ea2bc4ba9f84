package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/josephlewis42/hsh/core/config"
	"github.com/josephlewis42/hsh/core/history"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

// ExitCommand ends the session when entered as a line.
const ExitCommand = "exit"

// SessionOptions holds the terminal and logging for a session.
type SessionOptions struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Logger receives engine diagnostics, nil disables them.
	Logger *zap.Logger
	// Exit ends the process, it defaults to os.Exit.
	Exit func(code int)
}

// Session is one interactive shell: it reads lines, records them and runs
// them as pipelines.
type Session struct {
	Config   *config.Configuration
	History  *history.Store
	Router   *Router
	Executor *Executor
	Readline *readline.Instance

	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	errColor *color.Color
	exit     func(code int)
	log      *zap.Logger

	// interactive is set when the line editor draws on a terminal.
	interactive bool
}

// NewSession creates a session using the history and settings of cfg.
func NewSession(cfg *config.Configuration, opts SessionOptions) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}

	s := &Session{
		Config:  cfg,
		History: history.NewStore(cfg.Fs(), cfg.HistoryFile),

		stdin:    opts.Stdin,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
		errColor: color.New(color.FgRed),
		exit:     opts.Exit,
		log:      opts.Logger,
	}

	if cfg.ShouldColor(isTerminal(opts.Stderr)) {
		s.errColor.EnableColor()
	} else {
		s.errColor.DisableColor()
	}

	s.Router = NewRouter(opts.Stdout, s.interruptedWhileIdle, opts.Logger.Named("router"))
	s.Executor = &Executor{
		Builtins: DefaultBuiltins(),
		Launcher: &ProcessLauncher{
			Stdin:  opts.Stdin,
			Stdout: opts.Stdout,
			Stderr: opts.Stderr,
		},
		Router:  s.Router,
		History: s.History,
		Stdout:  opts.Stdout,
		Stderr:  opts.Stderr,
		Log:     opts.Logger.Named("executor"),
	}

	return s
}

func isTerminal(v interface{}) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

func (s *Session) interruptedWhileIdle() {
	s.Close()
	s.exit(0)
}

// Close releases the terminal.
func (s *Session) Close() error {
	if s.Readline == nil {
		return nil
	}
	return s.Readline.Close()
}

func (s *Session) initReadline() error {
	s.interactive = isTerminal(s.stdin)

	cfg := &readline.Config{
		Prompt:                 s.Config.Prompt,
		HistoryLimit:           s.Config.HistoryLimit,
		DisableAutoSaveHistory: true,
		InterruptPrompt:        "^C",
		EOFPrompt:              ExitCommand,

		Stdin:  readline.NewCancelableStdin(s.stdin),
		Stdout: s.stdout,
		Stderr: s.stderr,
		FuncIsTerminal: func() bool {
			return s.interactive
		},
	}
	if !s.interactive {
		noRaw := func() error { return nil }
		cfg.FuncMakeRaw = noRaw
		cfg.FuncExitRaw = noRaw
	}

	if err := cfg.Init(); err != nil {
		return err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return err
	}
	s.Readline = rl

	// Make previous sessions recallable with the arrow keys.
	entries, err := s.History.Entries()
	if err != nil {
		s.log.Warn("loading history", zap.Error(err))
	}
	for _, entry := range entries {
		rl.SaveHistory(entry.Line)
	}

	return nil
}

// Run reads and executes lines until exit, end of input or an interrupt at
// the prompt. It returns the shell's exit status.
func (s *Session) Run() int {
	if err := s.initReadline(); err != nil {
		fmt.Fprintf(s.stderr, "sh: %v\n", err)
		return 1
	}
	defer s.Close()

	stop := s.Router.Install()
	defer stop()

	for {
		if !s.interactive {
			// The line editor only draws the prompt on a terminal.
			fmt.Fprint(s.stdout, s.Config.Prompt)
		}
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return 0 // Input closed, quit.

		case err == readline.ErrInterrupt:
			// The line editor owns the terminal at the prompt so Ctrl+C
			// arrives here rather than as a signal.
			if !s.interactive {
				fmt.Fprintln(s.stdout, "^C")
			}
			return 0

		case err != nil:
			s.log.Error("readline", zap.Error(err))
			fmt.Fprintf(s.stderr, "sh: %v\n", err)
			return 1
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := s.Readline.SaveHistory(line); err != nil {
			s.log.Warn("saving recall history", zap.Error(err))
		}

		if quit := s.RunLine(line); quit {
			return 0
		}
	}
}

// RunLine executes one command line. It returns true if the line asks the
// shell to exit. Errors are reported to the terminal, never returned.
func (s *Session) RunLine(line string) (quit bool) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case ExitCommand:
		return true
	}

	if err := s.History.Append(line); err != nil {
		s.log.Warn("history append", zap.Error(err))
		s.report(err)
	}

	pipeline, err := Tokenize(line)
	if err != nil {
		s.report(err)
		return false
	}
	if len(pipeline) == 0 {
		return false
	}

	result, err := s.Executor.Execute(pipeline)
	s.log.Info("pipeline finished",
		zap.Stringer("pipeline", pipeline),
		zap.Int("started", result.Started),
		zap.Int("exit_code", result.ExitCode),
		zap.Bool("interrupted", result.Interrupted),
		zap.Error(err))
	if err != nil {
		s.report(err)
	}

	return false
}

func (s *Session) report(err error) {
	var cdErr *DirectoryChangeError
	if errors.As(err, &cdErr) {
		s.errColor.Fprintln(s.stderr, cdErr.Error())
		return
	}

	s.errColor.Fprintf(s.stderr, "sh: %v\n", err)
}
