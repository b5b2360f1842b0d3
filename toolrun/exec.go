package toolrun

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"golang.org/x/sys/unix"
)

// stderrTail bounds how much of a failing tool's stderr ends up in the
// ExitError message.
const stderrTail = 4096

// Exec runs tools as child processes.
type Exec struct {
	// Dir is the working directory of every tool. Empty means the current
	// directory.
	Dir string
	// Env is appended to os.Environ().
	Env []string
}

// NewExec creates an Exec runner rooted at dir.
func NewExec(dir string) *Exec {
	return &Exec{Dir: dir}
}

func (e *Exec) path(name string) string {
	if filepath.IsAbs(name) || e.Dir == "" {
		return name
	}
	return filepath.Join(e.Dir, name)
}

// Run implements Runner. The tool runs in its own process group; if ctx is
// canceled the whole group is killed.
func (e *Exec) Run(ctx context.Context, cmd Cmd) (err error) {
	if cmd.Name == "" {
		return errors.E(errors.Invalid, "toolrun: empty command name")
	}
	c := exec.Command(cmd.Name, cmd.Args...)
	c.Dir = e.Dir
	if len(e.Env) > 0 {
		c.Env = append(os.Environ(), e.Env...)
	}
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stderr bytes.Buffer
	c.Stderr = &stderr
	if cmd.Stdout != "" {
		out, cerr := os.Create(e.path(cmd.Stdout))
		if cerr != nil {
			return errors.E(cerr, "toolrun: create", cmd.Stdout)
		}
		defer func() {
			if cerr := out.Close(); cerr != nil && err == nil {
				err = errors.E(cerr, "toolrun: close", cmd.Stdout)
			}
		}()
		c.Stdout = out
	} else {
		c.Stdout = os.Stderr
	}

	log.Printf("toolrun: %s", cmd)
	if err := c.Start(); err != nil {
		return errors.E(err, "toolrun: start", cmd.Name)
	}
	done := make(chan error, 1)
	go func() { done <- c.Wait() }()

	select {
	case <-ctx.Done():
		if c.Process != nil {
			if kerr := unix.Kill(-c.Process.Pid, unix.SIGKILL); kerr != nil {
				log.Error.Printf("toolrun: kill %s: %v", cmd.Name, kerr)
			}
		}
		<-done
		return errors.E(errors.Canceled, ctx.Err(), cmd.Key())
	case err = <-done:
	}
	if err == nil {
		log.Debug.Printf("toolrun: %s: done", cmd.Key())
		return nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		tail := stderr.Bytes()
		if len(tail) > stderrTail {
			tail = tail[len(tail)-stderrTail:]
		}
		return &ExitError{
			Cmd:    cmd,
			Code:   exitErr.ExitCode(),
			Stderr: strings.TrimSpace(string(tail)),
		}
	}
	return errors.E(err, "toolrun: wait", cmd.Name)
}
