// Package toolrun runs external command-line tools. A Runner either
// succeeds or returns an error; a non-zero exit status is an error.
package toolrun

import (
	"context"
	"fmt"
	"strings"
)

// Cmd is a single external tool invocation.
type Cmd struct {
	// Name is the executable, looked up in PATH if it has no slash.
	Name string
	// Args are passed verbatim, without shell interpretation.
	Args []string
	// Stdout, if nonempty, names a file that receives the tool's standard
	// output. Relative paths are resolved against the runner's directory.
	Stdout string
}

// Key identifies the tool for dispatch: the executable name, followed by the
// first argument when that argument is a subcommand (does not start with
// '-').
func (c Cmd) Key() string {
	if len(c.Args) > 0 && c.Args[0] != "" && c.Args[0][0] != '-' && !strings.ContainsAny(c.Args[0], "/.") {
		return c.Name + " " + c.Args[0]
	}
	return c.Name
}

// String renders the command line, shell-style, for logs.
func (c Cmd) String() string {
	s := c.Name
	if len(c.Args) > 0 {
		s += " " + strings.Join(c.Args, " ")
	}
	if c.Stdout != "" {
		s += " > " + c.Stdout
	}
	return s
}

// Runner runs external tools.
type Runner interface {
	// Run blocks until the tool exits. It returns *ExitError if the tool
	// exited with a non-zero status.
	Run(ctx context.Context, cmd Cmd) error
}

// ExitError reports a tool that exited with a non-zero status.
type ExitError struct {
	Cmd  Cmd
	Code int
	// Stderr holds the tail of the tool's standard error.
	Stderr string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Cmd.Key(), e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}
