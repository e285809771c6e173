// Copyright (c) voidfemme 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/voidfemme/stash/internal/ctxlog"
	"github.com/voidfemme/stash/internal/ignore"
	"github.com/voidfemme/stash/internal/logstore"
	"github.com/voidfemme/stash/internal/signalbroker"
	"github.com/voidfemme/stash/internal/tee"
)

// Exit codes reported when the child's own code is unavailable.
const (
	// ExitAbnormal is used when the child terminated without an exit code,
	// e.g. killed by a signal.
	ExitAbnormal = 1
	// ExitNotStarted is used when the program was found but could not be started.
	ExitNotStarted = 126
	// ExitNotFound is used when the program could not be found in PATH.
	ExitNotFound = 127
)

var (
	// ErrNoCommand is returned when no command was given.
	ErrNoCommand = errors.New("no command given")
	// ErrCommandNotFound is returned when the program cannot be found or is not executable.
	ErrCommandNotFound = errors.New("command not found")
	// ErrStartProcess is returned when the process could not be started.
	ErrStartProcess = errors.New("could not start process")
	// ErrCreatePipe is returned when the operating system pipe could not be created.
	ErrCreatePipe = errors.New("failed to create pipe")
)

// Mode selects how the child's standard streams are connected.
type Mode int

const (
	// ModeCaptured redirects child stdout/stderr through pipes for logging.
	ModeCaptured Mode = iota
	// ModeBypass connects the child directly to the terminal, skipping all logging.
	ModeBypass
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeBypass {
		return "bypass"
	}

	return "captured"
}

// Supervisor runs one command under supervision, teeing its output to a
// timestamped log file unless the program is in the ignore set.
type Supervisor struct {
	LogDir string     // Directory holding the rolling logs.
	Retain int        // Number of log files to keep after rotation.
	Ignore ignore.Set // Programs that bypass logging entirely.

	Stdin  *os.File // Defaults to os.Stdin.
	Stdout *os.File // Defaults to os.Stdout.
	Stderr *os.File // Defaults to os.Stderr.

	sigCh chan os.Signal // Channel to receive signals, allows mocking in test.
}

// Result reports the outcome of one supervised invocation.
type Result struct {
	ExitCode int
	Mode     Mode
	LogPath  string // Empty in bypass mode.
}

// Run executes argv[0] with the remaining arguments under supervision and
// blocks until the child has exited and, in captured mode, both stream
// broadcasters have fully drained. The returned exit code is the child's own
// when available, or one of the fallback codes above.
func (s *Supervisor) Run(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{ExitCode: ExitNotFound}, ErrNoCommand
	}

	s.applyDefaults()

	logger := ctxlog.Logger(ctx).With("prog", argv[0])

	mode := ModeCaptured
	if s.Ignore.Contains(argv[0]) {
		mode = ModeBypass
	}

	logger.Debug("resolved mode", "mode", mode.String())

	path, ok := resolvePath(argv[0])
	if !ok {
		return Result{ExitCode: ExitNotFound, Mode: mode},
			errors.Join(ErrCommandNotFound, errors.New(argv[0]))
	}

	if mode == ModeBypass {
		return s.runBypass(ctx, path, argv)
	}

	return s.runCaptured(ctx, path, argv)
}

func (s *Supervisor) applyDefaults() {
	if s.Stdin == nil {
		s.Stdin = os.Stdin
	}

	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}

	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
}

// runBypass launches the child with all three standard streams connected
// directly to the user's terminal. No log file is created.
func (s *Supervisor) runBypass(ctx context.Context, path string, argv []string) (Result, error) {
	res := Result{Mode: ModeBypass}

	ps, err := s.start(path, argv, s.Stdout, s.Stderr)
	if err != nil {
		res.ExitCode = ExitNotStarted
		return res, errors.Join(ErrStartProcess, err)
	}

	stop := s.forwardSignals(ctx, ps)

	state, waitErr := ps.Wait()
	stop()

	res.ExitCode = exitCode(state)

	return res, waitErr //nolint:wrapcheck
}

// runCaptured rotates old logs, creates a fresh log file, launches the child
// with stdout and stderr redirected to pipes, and tees both pipes to the
// terminal and the log. Stdin is inherited.
func (s *Supervisor) runCaptured(ctx context.Context, path string, argv []string) (Result, error) {
	res := Result{Mode: ModeCaptured}
	logger := ctxlog.Logger(ctx)

	// Rotate to one below the limit: the file created next counts against
	// Retain, and rotation must never prune the file of a live invocation.
	logstore.Rotate(ctx, s.LogDir, max(s.Retain-1, 0))

	outLog, logPath, err := logstore.Create(ctx, s.LogDir)
	if err != nil {
		res.ExitCode = ExitAbnormal
		return res, err
	}

	res.LogPath = logPath

	// The second broadcaster gets its own append-mode handle so the two
	// streams never clobber each other's writes.
	errLog, err := logstore.OpenAppend(logPath)
	if err != nil {
		_ = outLog.Close()
		res.ExitCode = ExitAbnormal

		return res, err
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		closeAll(outLog, errLog)
		res.ExitCode = ExitAbnormal

		return res, errors.Join(ErrCreatePipe, err)
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(outLog, errLog, rOut, wOut)
		res.ExitCode = ExitAbnormal

		return res, errors.Join(ErrCreatePipe, err)
	}

	ps, err := s.start(path, argv, wOut, wErr)
	if err != nil {
		closeAll(outLog, errLog, rOut, wOut, rErr, wErr)
		res.ExitCode = ExitNotStarted

		// The freshly created log file is left on disk empty.
		return res, errors.Join(ErrStartProcess, err)
	}

	// The child holds the write ends now; drop ours so the broadcasters see
	// end-of-stream once the child closes its descriptors.
	_ = wOut.Close()
	_ = wErr.Close()

	termMu := &sync.Mutex{}
	outDone := tee.New(rOut, s.Stdout, outLog, termMu).Go()
	errDone := tee.New(rErr, s.Stderr, errLog, termMu).Go()

	stop := s.forwardSignals(ctx, ps)

	logger.Debug("waiting for process", "pid", ps.Pid)

	state, waitErr := ps.Wait()
	stop()

	// Child exit does not imply the pipes are drained: join both
	// broadcasters before reporting completion.
	var broadcastErr *multierror.Error
	broadcastErr = multierror.Append(broadcastErr, <-outDone, <-errDone)

	if err := broadcastErr.ErrorOrNil(); err != nil {
		logger.Warn("output duplication degraded", "error", err)
	}

	closeAll(rOut, rErr, outLog, errLog)

	res.ExitCode = exitCode(state)
	logger.Debug("process finished", "exitCode", res.ExitCode, "log", logPath)

	return res, waitErr //nolint:wrapcheck
}

// start launches the child. Argv conventions follow os.StartProcess: the
// first element is the program name as the child sees it.
func (s *Supervisor) start(path string, argv []string, stdout, stderr *os.File) (*os.Process, error) {
	args := append([]string{filepath.Base(path)}, argv[1:]...)

	return os.StartProcess(path, args, &os.ProcAttr{ //nolint:wrapcheck
		Files: []*os.File{s.Stdin, stdout, stderr},
	})
}

// forwardSignals relays signals received by the supervisor to the child so
// the child can handle or terminate on them. A repeated signal of the same
// type kills the child outright. The returned stop function must be called
// once the child has been reaped; it ends the relay goroutine and, if the
// broker was created here, unregisters it.
func (s *Supervisor) forwardSignals(ctx context.Context, ps *os.Process) func() {
	sigCh := s.sigCh
	created := sigCh == nil

	if created {
		sigCh = signalbroker.New(ctx)
	}

	logger := ctxlog.Logger(ctx)
	done := make(chan struct{})

	go func() {
		seen := make(map[os.Signal]struct{})

		for {
			select {
			case sig, open := <-sigCh:
				if !open {
					return
				}

				if _, ok := seen[sig]; ok {
					logger.Info("received duplicate signal, killing process", "signal", sig.String())

					if err := ps.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
						logger.Error("process kill error", "pid", ps.Pid, "error", err)
					}

					return
				}

				seen[sig] = struct{}{}

				logger.Info("forwarding signal", "signal", sig.String())

				if err := ps.Signal(sig); err != nil {
					logger.Info("failed to send signal", "signal", sig.String(), "error", err)
				}

			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)

		if created {
			signalbroker.Stop(sigCh)
		}
	}
}

// exitCode maps the child's process state to the supervisor's own exit code.
// A child that terminated without an exit code (e.g. killed by a signal)
// yields the fixed fallback code.
func exitCode(state *os.ProcessState) int {
	if state == nil || !state.Exited() {
		return ExitAbnormal
	}

	return state.ExitCode()
}

func closeAll(closers ...io.Closer) {
	for _, c := range closers {
		_ = c.Close()
	}
}
