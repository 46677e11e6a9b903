package pods

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/danmuck/phantompods/governor"
	"github.com/danmuck/phantompods/internal/testutil/testlog"
	"github.com/danmuck/phantompods/runtimes"
)

// fakeStarter produces handles that are not backed by real processes.
// Session/app exits are driven through the recorded finishers.
type fakeStarter struct {
	mu         sync.Mutex
	argvs      [][]string
	finishers  []func(error)
	suspendErr error
	failWith   error
}

func (s *fakeStarter) start(_ context.Context, argv []string, _ string, _ []string) (*runtimes.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	suspendErr := s.suspendErr
	h, finish := runtimes.NewFakeHandle(2000+len(s.argvs), func(sig syscall.Signal) error {
		if sig == syscall.SIGSTOP && suspendErr != nil {
			return suspendErr
		}
		return nil
	})
	s.argvs = append(s.argvs, argv)
	s.finishers = append(s.finishers, finish)
	return h, nil
}

func (s *fakeStarter) launchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.argvs)
}

func (s *fakeStarter) finishLast(err error) {
	s.mu.Lock()
	finish := s.finishers[len(s.finishers)-1]
	s.mu.Unlock()
	finish(err)
}

func fakeLookPath(installed ...string) func(string) (string, error) {
	set := make(map[string]bool, len(installed))
	for _, name := range installed {
		set[name] = true
	}
	return func(name string) (string, error) {
		if set[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
}

func newTestRegistry(t *testing.T, gov governor.Gateway, installed ...string) (*Registry, *fakeStarter) {
	t.Helper()
	testlog.Start(t)

	starter := &fakeStarter{}
	r, err := New(Options{
		Root:            t.TempDir(),
		Probe:           runtimes.NewProbe(runtimes.ProbeConfig{LookPath: fakeLookPath(installed...)}),
		Starter:         starter.start,
		Governor:        gov,
		GovernorTimeout: 250 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return r, starter
}

func createReady(t *testing.T, r *Registry, name string, typ runtimes.Type) *Pod {
	t.Helper()
	pod, err := r.Create(name, typ)
	if err != nil {
		t.Fatalf("create %q: %v", name, err)
	}
	if err := r.Finalize(pod); err != nil {
		t.Fatalf("finalize %q: %v", name, err)
	}
	return pod
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
