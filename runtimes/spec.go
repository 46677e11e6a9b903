package runtimes

import (
	"fmt"
	"strings"
)

// LaunchSpec describes a single launch request. The pods registry
// builds specs from pod state; this package never holds a pod
// reference.
type LaunchSpec struct {
	// Pod identity, for logging only.
	PodName string

	// Type selects the launch strategy.
	Type Type

	// Executable and Arguments describe the program to run. Empty
	// Executable requests the runtime's session process instead of an
	// application (see Dispatcher.Session).
	Executable string
	Arguments  []string

	// WorkingDir is the mount-derived working directory; empty means
	// inherit.
	WorkingDir string

	// Env is the pod environment in KEY=VALUE form.
	Env []string

	// CustomCommand is the pod-supplied launch command for TypeCustom.
	CustomCommand []string
}

// Validate checks the spec before dispatch.
func (s LaunchSpec) Validate() error {
	if !s.Type.Valid() {
		return fmt.Errorf("invalid runtime type %d", int(s.Type))
	}
	if s.Type == TypeCustom && len(s.CustomCommand) == 0 {
		return fmt.Errorf("custom pod %q has no launch command", s.PodName)
	}
	if s.Executable != "" && strings.TrimSpace(s.Executable) == "" {
		return fmt.Errorf("blank executable for pod %q", s.PodName)
	}
	return nil
}
