package pods

import (
	"sync"
	"time"

	"github.com/danmuck/phantompods/runtimes"
)

// Pod is a single container instance. Pods are created, owned, and
// mutated exclusively by a Registry; callers hold borrowed references
// and read through the accessors below, which synchronize on the
// registry table lock.
type Pod struct {
	mu *sync.Mutex // the owning registry's table lock

	id          uint32
	name        string
	description string
	icon        string

	podType  runtimes.Type
	state    State
	security Security

	limits  Limits
	mounts  []Mount
	envVars []EnvVar
	apps    []App

	// proc is non-nil if and only if state is StateActive. suspended
	// retains the paused session while dormant so a later activation
	// resumes the same process instead of losing track of it.
	proc      *runtimes.Handle
	suspended *runtimes.Handle

	created      time.Time
	lastActive   time.Time
	totalRuntime time.Duration

	geologyLayer string
	geologySize  uint64

	policyID uint32
	approved bool

	// resumeState is the state to return to when migration completes
	// or fails.
	resumeState State

	// busy guards a transition in flight while the table lock is
	// released for governor/launch work.
	busy bool

	lastErr string

	customCommand []string
}

func (p *Pod) ID() uint32 { return p.id }

func (p *Pod) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

func (p *Pod) Description() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.description
}

func (p *Pod) Icon() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.icon
}

func (p *Pod) Type() runtimes.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.podType
}

func (p *Pod) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pod) Security() Security {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.security
}

func (p *Pod) Limits() Limits {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.limits
}

// Mounts returns a copy of the mount table.
func (p *Pod) Mounts() []Mount {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Mount(nil), p.mounts...)
}

// EnvVars returns a copy of the environment table.
func (p *Pod) EnvVars() []EnvVar {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]EnvVar(nil), p.envVars...)
}

// Apps returns a copy of the application table.
func (p *Pod) Apps() []App {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]App(nil), p.apps...)
}

func (p *Pod) MountCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.mounts)
}

func (p *Pod) EnvCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.envVars)
}

func (p *Pod) AppCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.apps)
}

// Process returns the live session handle; non-nil if and only if the
// pod is active.
func (p *Pod) Process() *runtimes.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.proc
}

func (p *Pod) Created() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

func (p *Pod) LastActive() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActive
}

// TotalRuntime is the accumulated active time across all activations.
func (p *Pod) TotalRuntime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalRuntime
}

// GeologyLayer is the pod's storage layer path, assigned once at
// creation and immutable thereafter.
func (p *Pod) GeologyLayer() string { return p.geologyLayer }

func (p *Pod) GeologySize() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.geologySize
}

func (p *Pod) PolicyID() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.policyID
}

// Approved reports whether the governor has approved an activation of
// this pod.
func (p *Pod) Approved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.approved
}

// LastError is the most recent supervisor or migration annotation.
func (p *Pod) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// accumulateRuntime folds the elapsed active interval into the pod's
// runtime total and returns the interval. Caller holds the table lock.
func (p *Pod) accumulateRuntime(now time.Time) time.Duration {
	if p.lastActive.IsZero() {
		return 0
	}
	elapsed := now.Sub(p.lastActive)
	if elapsed < 0 {
		elapsed = 0
	}
	p.totalRuntime += elapsed
	return elapsed
}

// envStrings returns validated KEY=VALUE pairs for process launch.
// Names were validated at AddEnv time. Caller holds the table lock.
func (p *Pod) envStrings() []string {
	if len(p.envVars) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.envVars))
	for _, v := range p.envVars {
		out = append(out, v.Name+"="+v.Value)
	}
	return out
}

// workingDirFor picks the launch working directory for an app: the
// app's own directory when set, otherwise the first mount's host path.
// Caller holds the table lock.
func (p *Pod) workingDirFor(app App) string {
	if app.WorkingDir != "" {
		return app.WorkingDir
	}
	if len(p.mounts) > 0 {
		return p.mounts[0].HostPath
	}
	return ""
}
