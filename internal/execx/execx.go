// Package execx runs external commands with a bounded timeout and explicit
// working directory. Every directory-scoped operation receives the
// directory as a parameter; the process-wide working directory is never
// changed.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// ErrTimeout is returned when a command exceeds its deadline.
var ErrTimeout = errors.New("command timed out")

// Command describes one external command invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory for the command. Empty means the
	// current process directory.
	Dir string
	// Env holds environment overrides, applied on top of the current
	// process environment.
	Env map[string]string
	// Timeout bounds the wall-clock run time. Zero means no limit.
	Timeout time.Duration
}

// Result captures what a finished command produced.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ProcessError is returned by RunChecked when a command exits non-zero.
type ProcessError struct {
	Cmd    Command
	Result Result
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %s", e.Cmd.Name, e.Result.ExitCode, e.Result.Stderr)
}

// Runner executes commands. It is an interface so components built on
// subprocess output can be tested against faked results.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Local runs commands on the local machine.
type Local struct{}

// Run executes the command and returns its exit code and captured output.
// A non-zero exit code is not an error; whether it is fatal is the
// caller's decision. Timeout and start failures are errors.
func (Local) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		env := os.Environ()
		for k, v := range cmd.Env {
			env = append(env, k+"="+v)
		}
		c.Env = env
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctx.Err() == context.DeadlineExceeded {
		return res, fmt.Errorf("%s: %w", cmd.Name, ErrTimeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("run %s: %w", cmd.Name, err)
	}
	return res, nil
}

// RunChecked runs the command and additionally treats a non-zero exit code
// as a *ProcessError.
func RunChecked(ctx context.Context, r Runner, cmd Command) (Result, error) {
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &ProcessError{Cmd: cmd, Result: res}
	}
	return res, nil
}
