// Package jobrunner executes the command pipelines internal/interp's
// CmdStmt and CmdExpr produce. It plays the role of original_source's
// JobRunner/Process pair (source/job_runner/job_runner_linux.cpp,
// process.hpp) with Go's os/exec standing in for the original's manual
// fork/pipe/dup2 plumbing, and golang.org/x/sys/unix supplying the POSIX
// signal the teacher's test harness never needed: escalating a timed-out
// pipeline from SIGTERM to SIGKILL instead of exec.Cmd's default immediate
// kill.
package jobrunner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// Runner implements the interp.Jobs interface. The zero value is not
// usable; construct with New.
type Runner struct {
	mu         sync.Mutex
	background map[int]*os.Process

	// DefaultTimeout applies to a pipeline run with no enclosing `timeout`
	// statement (timeout == 0 passed to Run). Sourced from
	// COMMANDER_TIMEOUT_MS via internal/config; zero means no default.
	DefaultTimeout time.Duration
}

func New() *Runner {
	return &Runner{background: map[int]*os.Process{}}
}

// Run executes stages as a pipeline, stage i's stdout feeding stage i+1's
// stdin exactly like sh's `|`, and returns the last stage's captured
// stdout and exit code. A background pipeline (SPEC_FULL.md §6 item 5,
// grounded on job_runner_linux.cpp's _doBackground) is started detached
// from the caller, its final stage's PID recorded in the registry, and
// Run returns immediately with an empty result and a zero exit code — the
// registry entry is cleared once a reaper goroutine observes it exit. A
// timeout greater than zero cancels every stage in the pipeline; a stage
// still alive WaitDelay after cancellation is sent SIGKILL.
func (r *Runner) Run(stages [][]string, background bool, timeout time.Duration) (stdout string, exitCode int, err error) {
	if len(stages) == 0 {
		return "", -1, fmt.Errorf("jobrunner: empty pipeline")
	}
	if timeout == 0 {
		timeout = r.DefaultTimeout
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmds := make([]*exec.Cmd, len(stages))
	for i, stage := range stages {
		cmd := exec.CommandContext(ctx, stage[0], stage[1:]...)
		// Each stage leads its own new process group. On cancellation
		// (timeout) SIGTERM goes to the stage's own process only, not to its
		// group, so children that stage spawned are not signalled.
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		cmd.Cancel = func() error { return cmd.Process.Signal(unix.SIGTERM) }
		cmd.WaitDelay = 5 * time.Second
		cmd.Stderr = os.Stderr
		cmds[i] = cmd
	}
	for i := 0; i < len(cmds)-1; i++ {
		pipe, err := cmds[i].StdoutPipe()
		if err != nil {
			return "", -1, fmt.Errorf("jobrunner: wiring stage %d: %w", i, err)
		}
		cmds[i+1].Stdin = pipe
	}
	var out bytes.Buffer
	cmds[len(cmds)-1].Stdout = &out

	if background {
		return r.runBackground(cmds)
	}
	return r.runForeground(cmds, &out)
}

func (r *Runner) runForeground(cmds []*exec.Cmd, out *bytes.Buffer) (string, int, error) {
	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			return "", -1, fmt.Errorf("jobrunner: starting stage %d (%s): %w", i, cmd.Path, err)
		}
	}
	exitCode := 0
	for _, cmd := range cmds {
		if err := cmd.Wait(); err != nil {
			exitErr, ok := err.(*exec.ExitError)
			if !ok {
				return "", -1, err
			}
			// Keep the last stage's exit code; an earlier stage's
			// nonzero status is swallowed exactly like an un-piped
			// shell pipeline ($? only reflects the final command).
			exitCode = exitErr.ExitCode()
		}
	}
	return out.String(), exitCode, nil
}

// runBackground starts every stage without waiting for completion and
// registers the final stage's PID so a later `jobs`-style builtin can
// observe which background pipelines are still running.
func (r *Runner) runBackground(cmds []*exec.Cmd) (string, int, error) {
	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			return "", -1, fmt.Errorf("jobrunner: starting background stage %d (%s): %w", i, cmd.Path, err)
		}
	}
	last := cmds[len(cmds)-1]
	pid := last.Process.Pid

	r.mu.Lock()
	r.background[pid] = last.Process
	r.mu.Unlock()

	go func() {
		for _, cmd := range cmds {
			cmd.Wait()
		}
		r.mu.Lock()
		delete(r.background, pid)
		r.mu.Unlock()
	}()

	return "", 0, nil
}

// Background returns the PIDs of pipelines currently running in the
// background.
func (r *Runner) Background() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	pids := make([]int, 0, len(r.background))
	for pid := range r.background {
		pids = append(pids, pid)
	}
	return pids
}
