package shell

import (
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"
)

// Stage is one command in a pipeline.
type Stage struct {
	// Args holds the program or builtin name followed by its arguments.
	Args []string
	// Index is the position of the stage in its pipeline.
	Index int
	// IsLast is set for the final stage, whose output goes to the terminal.
	IsLast bool
}

// Name returns the program or builtin name of the stage.
func (s Stage) Name() string {
	return s.Args[0]
}

func (s Stage) String() string {
	return strings.Join(s.Args, " ")
}

// Pipeline is an ordered chain of stages, each feeding the next.
type Pipeline []Stage

// NewPipeline builds a pipeline from argument vectors, empty vectors are
// discarded.
func NewPipeline(argvs ...[]string) Pipeline {
	var out Pipeline
	for _, argv := range argvs {
		if len(argv) == 0 {
			continue
		}
		out = append(out, Stage{Args: argv, Index: len(out)})
	}

	if len(out) > 0 {
		out[len(out)-1].IsLast = true
	}
	return out
}

func (p Pipeline) String() string {
	var stages []string
	for _, stage := range p {
		stages = append(stages, stage.String())
	}
	return strings.Join(stages, " | ")
}

// SyntaxError is returned when a line can't be split into words.
type SyntaxError struct {
	Line string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Tokenize splits a line on unquoted pipe characters and each segment into
// words. Empty stages are discarded so "a || b |" yields two stages.
func Tokenize(line string) (Pipeline, error) {
	segments, err := splitPipes(line)
	if err != nil {
		return nil, &SyntaxError{Line: line, Err: err}
	}

	var argvs [][]string
	for _, segment := range segments {
		words, err := shlex.Split(segment, true)
		if err != nil {
			return nil, &SyntaxError{Line: line, Err: err}
		}
		argvs = append(argvs, words)
	}

	return NewPipeline(argvs...), nil
}

// splitPipes splits line on '|' characters that aren't quoted or escaped.
func splitPipes(line string) ([]string, error) {
	var (
		out     []string
		start   int
		quote   rune
		escaped bool
	)

	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '|':
			out = append(out, line[start:i])
			start = i + 1
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unexpected EOF while looking for matching `%c'", quote)
	}

	return append(out, line[start:]), nil
}
