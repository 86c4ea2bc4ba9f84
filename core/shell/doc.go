// Package shell runs command lines as pipelines of processes.
//
// A line is handled in these steps:
//
// 1. The line is recorded to the history log.
//
// 2. The line is split into stages on unquoted `|' characters and each stage
// into words, see Tokenize.
//
// 3. Each stage in turn is run as a builtin inside the shell process, or
// started as a child process that inherits the shell's environment and
// working directory.
//
// 4. The output of every stage but the last is collected in full once that
// stage exits, then handed to the next stage as its standard input. The last
// stage writes to the terminal.
//
// 5. While a child runs it receives the interrupts sent to the shell. An
// interrupt with no pipeline running ends the session.
package shell
