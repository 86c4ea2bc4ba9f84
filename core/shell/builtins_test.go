package shell

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/hsh/core/history"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory []string

func (f fakeHistory) Entries() ([]history.Entry, error) {
	var out []history.Entry
	for i, line := range f {
		out = append(out, history.Entry{Number: i + 1, Line: line})
	}
	return out, nil
}

type brokenHistory struct{}

func (brokenHistory) Entries() ([]history.Entry, error) {
	return nil, errors.New("disk on fire")
}

func newBuiltinEnv(h HistoryLister) (*BuiltinEnv, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &BuiltinEnv{
		Stdout:   stdout,
		Stderr:   stderr,
		History:  h,
		Builtins: DefaultBuiltins(),
	}, stdout, stderr
}

// chdirTemp moves the test process into a fresh directory and restores the
// original one when the test ends.
func chdirTemp(t *testing.T) string {
	t.Helper()

	orig, err := os.Getwd()
	require.Nil(t, err)
	t.Cleanup(func() {
		os.Chdir(orig)
	})

	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.Nil(t, err)
	require.Nil(t, os.Chdir(dir))
	return dir
}

func TestBuiltins(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
		goldie.WithSubTestNameForDir(true),
	)

	cases := map[string]struct {
		args    []string
		history fakeHistory
	}{
		"help":          {args: []string{"help"}},
		"history":       {args: []string{"history"}, history: fakeHistory{"ls", "pwd", "echo a | wc -l"}},
		"history-last":  {args: []string{"history", "2"}, history: fakeHistory{"ls", "pwd", "echo a | wc -l"}},
		"history-empty": {args: []string{"history"}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			env, stdout, stderr := newBuiltinEnv(tc.history)

			handled, err := env.Builtins.Dispatch(env, tc.args)
			assert.True(t, handled)
			assert.Nil(t, err)

			g.Assert(t, tn, append(stdout.Bytes(), stderr.Bytes()...))
		})
	}
}

func TestHistory_help(t *testing.T) {
	env, stdout, stderr := newBuiltinEnv(fakeHistory{"ls"})

	assert.Nil(t, History(env, []string{"history", "--help"}))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "usage: history [N]")
	assert.Contains(t, stderr.String(), "--help")
}

func TestBuiltins_Dispatch_notBuiltin(t *testing.T) {
	env, stdout, _ := newBuiltinEnv(nil)

	for _, argv := range [][]string{{"ls"}, {"pwd"}, {}, nil} {
		handled, err := env.Builtins.Dispatch(env, argv)
		assert.False(t, handled)
		assert.Nil(t, err)
	}
	assert.Empty(t, stdout.String())
}

func TestHistory_errors(t *testing.T) {
	cases := map[string]struct {
		args    []string
		history HistoryLister
		wantErr string
	}{
		"not-a-number":  {[]string{"history", "x"}, fakeHistory{}, "history: x: numeric argument required"},
		"too-many":      {[]string{"history", "1", "2"}, fakeHistory{}, "history: too many arguments"},
		"bad-flag":      {[]string{"history", "-z"}, fakeHistory{}, "history: invalid usage"},
		"store-failure": {[]string{"history"}, brokenHistory{}, "history: disk on fire"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			env, _, _ := newBuiltinEnv(tc.history)

			err := History(env, tc.args)
			assert.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestCd(t *testing.T) {
	dir := chdirTemp(t)
	require.Nil(t, os.Mkdir(filepath.Join(dir, "sub"), 0700))

	t.Run("relative", func(t *testing.T) {
		env, _, _ := newBuiltinEnv(nil)

		assert.Nil(t, Cd(env, []string{"cd", "sub"}))

		wd, err := os.Getwd()
		assert.Nil(t, err)
		assert.Equal(t, filepath.Join(dir, "sub"), wd)
		assert.Equal(t, wd, os.Getenv(EnvPWD))
	})

	t.Run("missing", func(t *testing.T) {
		env, _, _ := newBuiltinEnv(nil)
		before, _ := os.Getwd()

		err := Cd(env, []string{"cd", "/nonexistent"})

		var cdErr *DirectoryChangeError
		if assert.True(t, errors.As(err, &cdErr)) {
			assert.Equal(t, "/nonexistent", cdErr.Path)
		}
		assert.EqualError(t, err, "cd: /nonexistent: No such file or directory")

		after, _ := os.Getwd()
		assert.Equal(t, before, after)
	})

	t.Run("home", func(t *testing.T) {
		env, _, _ := newBuiltinEnv(nil)
		t.Setenv(EnvHome, dir)

		assert.Nil(t, Cd(env, []string{"cd"}))

		wd, _ := os.Getwd()
		assert.Equal(t, dir, wd)
	})

	t.Run("too-many", func(t *testing.T) {
		env, _, _ := newBuiltinEnv(nil)

		assert.EqualError(t, Cd(env, []string{"cd", "a", "b"}), "cd: too many arguments")
	})
}

func TestDefaultBuiltins(t *testing.T) {
	builtins := DefaultBuiltins()

	assert.Equal(t, []string{"cd", "help", "history"}, builtins.Names())

	assert.True(t, builtins.PassesInput("cd"))
	assert.False(t, builtins.PassesInput("history"))
	assert.False(t, builtins.PassesInput("not-a-builtin"))
}

func TestBuiltins_PassesInput(t *testing.T) {
	noop := func(env *BuiltinEnv, args []string) error { return nil }
	builtins := Builtins{
		"source":  ShellBuiltinFunc(noop),
		"through": Passthrough(noop),
	}

	assert.False(t, builtins.PassesInput("source"))
	assert.True(t, builtins.PassesInput("through"))
}
