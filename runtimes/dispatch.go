package runtimes

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

var (
	ErrUnavailable  = errors.New("runtime backend unavailable")
	ErrLaunchFailed = errors.New("runtime launch failed")
	ErrNoStrategy   = errors.New("no strategy for runtime type")
)

// Starter spawns a command and returns its handle. Injectable so
// dispatch logic is testable without real processes.
type Starter func(ctx context.Context, argv []string, dir string, env []string) (*Handle, error)

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Probe answers backend availability; required.
	Probe *Probe

	// Start spawns processes. Defaults to an os/exec starter.
	Start Starter

	// Logger for dispatch events. Defaults to a disabled logger.
	Logger zerolog.Logger
}

// Dispatcher maps a pod's runtime type to its launch strategy. It
// fails fast with ErrUnavailable and an install hint when the backend
// binary is missing, rather than failing at spawn time.
type Dispatcher struct {
	probe      *Probe
	start      Starter
	strategies map[Type]Strategy
	log        zerolog.Logger
}

// NewDispatcher creates a dispatcher over the default strategy table.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	start := cfg.Start
	if start == nil {
		start = execStarter
	}
	return &Dispatcher{
		probe:      cfg.Probe,
		start:      start,
		strategies: defaultStrategies(),
		log:        cfg.Logger,
	}
}

// Session launches the pod's long-lived session process.
func (d *Dispatcher) Session(ctx context.Context, spec LaunchSpec) (*Handle, error) {
	return d.dispatch(ctx, spec, Strategy.SessionArgv)
}

// App launches an application inside an active pod's runtime.
func (d *Dispatcher) App(ctx context.Context, spec LaunchSpec) (*Handle, error) {
	return d.dispatch(ctx, spec, Strategy.AppArgv)
}

// CheckAvailable reports whether the backend for t can launch,
// returning ErrUnavailable with remediation text when it cannot.
func (d *Dispatcher) CheckAvailable(t Type) error {
	if d.probe.Available(t) {
		return nil
	}
	return fmt.Errorf("%w: %s (%s)", ErrUnavailable, t, InstallHint(t))
}

func (d *Dispatcher) dispatch(ctx context.Context, spec LaunchSpec, argvFor func(Strategy, *Probe, LaunchSpec) []string) (*Handle, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}
	if err := d.CheckAvailable(spec.Type); err != nil {
		return nil, err
	}
	strat, ok := d.strategies[spec.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoStrategy, spec.Type)
	}

	argv := argvFor(strat, d.probe, spec)
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: empty command for pod %q", ErrLaunchFailed, spec.PodName)
	}

	handle, err := d.start(ctx, argv, spec.WorkingDir, spec.Env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}
	d.log.Info().
		Str("pod", spec.PodName).
		Str("type", spec.Type.String()).
		Str("cmd", argv[0]).
		Int("pid", handle.PID()).
		Msg("runtimes.Dispatcher launched")
	return handle, nil
}

// execStarter spawns through os/exec with the spec environment and
// working directory.
func execStarter(ctx context.Context, argv []string, dir string, env []string) (*Handle, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = env
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return newExecHandle(cmd), nil
}
