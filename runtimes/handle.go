package runtimes

import (
	"fmt"
	"os/exec"
	"sync"
	"syscall"
)

// Handle tracks a launched backend process. A handle outlives the
// process itself: after exit, Done is closed and Err reports the exit
// condition.
type Handle struct {
	pid  int
	done chan struct{}

	mu        sync.Mutex
	err       error
	suspended bool

	signal func(sig syscall.Signal) error
}

// PID returns the process identifier of the launched process.
func (h *Handle) PID() int { return h.pid }

// Done is closed once the process has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the exit error after Done is closed; nil for a clean
// exit or while the process is still running.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Suspend delivers SIGSTOP and confirms delivery. A failed suspend
// leaves the process running and is reported to the caller; the
// process is never considered paused until the signal succeeds.
func (h *Handle) Suspend() error {
	if err := h.signal(syscall.SIGSTOP); err != nil {
		return fmt.Errorf("suspend pid %d: %w", h.pid, err)
	}
	h.mu.Lock()
	h.suspended = true
	h.mu.Unlock()
	return nil
}

// Resume delivers SIGCONT to a suspended process.
func (h *Handle) Resume() error {
	if err := h.signal(syscall.SIGCONT); err != nil {
		return fmt.Errorf("resume pid %d: %w", h.pid, err)
	}
	h.mu.Lock()
	h.suspended = false
	h.mu.Unlock()
	return nil
}

// Suspended reports whether the last successful signal was a suspend.
func (h *Handle) Suspended() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.suspended
}

// newExecHandle wraps a started exec.Cmd and reaps it in the
// background so Done/Err observe the real exit.
func newExecHandle(cmd *exec.Cmd) *Handle {
	h := &Handle{
		pid:  cmd.Process.Pid,
		done: make(chan struct{}),
		signal: func(sig syscall.Signal) error {
			return cmd.Process.Signal(sig)
		},
	}
	go func() {
		err := cmd.Wait()
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
		close(h.done)
	}()
	return h
}

// NewFakeHandle builds a handle that is not backed by a real process.
// Exported for tests of callers that supervise handles; exit reports
// err to waiters. The returned finish func is idempotent.
func NewFakeHandle(pid int, signal func(sig syscall.Signal) error) (*Handle, func(err error)) {
	if signal == nil {
		signal = func(syscall.Signal) error { return nil }
	}
	h := &Handle{pid: pid, done: make(chan struct{}), signal: signal}
	var once sync.Once
	finish := func(err error) {
		once.Do(func() {
			h.mu.Lock()
			h.err = err
			h.mu.Unlock()
			close(h.done)
		})
	}
	return h, finish
}
