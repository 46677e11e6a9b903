package pods

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SetLimits replaces a pod's resource envelope. Limits cannot change
// under a live workload.
func (r *Registry) SetLimits(pod *Pod, limits Limits) error {
	if err := limits.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if pod.state == StateActive {
		return fmt.Errorf("%w: pod %q is active; limits are frozen", ErrState, pod.name)
	}
	pod.limits = limits
	return nil
}

// AddMount maps a host or geology path into the pod. Mounts whose
// host path resolves under the storage root are geology-backed.
func (r *Registry) AddMount(pod *Pod, hostPath, podPath string, readOnly bool) error {
	hostPath = strings.TrimSpace(hostPath)
	podPath = strings.TrimSpace(podPath)
	if hostPath == "" || podPath == "" {
		return fmt.Errorf("%w: mount paths must be non-empty", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(pod.mounts) >= MaxMounts {
		return fmt.Errorf("%w: %d mounts on pod %q", ErrCapacity, MaxMounts, pod.name)
	}
	pod.mounts = append(pod.mounts, Mount{
		HostPath:      hostPath,
		PodPath:       podPath,
		ReadOnly:      readOnly,
		GeologyBacked: underRoot(hostPath, r.store.Root()),
	})
	return nil
}

// AddEnv sets an environment variable. An existing name is replaced
// in place; names are unique within a pod.
func (r *Registry) AddEnv(pod *Pod, name, value string) error {
	name = strings.TrimSpace(name)
	if !validEnvName(name) {
		return fmt.Errorf("%w: env name %q", ErrValidation, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range pod.envVars {
		if pod.envVars[i].Name == name {
			pod.envVars[i].Value = value
			return nil
		}
	}
	if len(pod.envVars) >= MaxEnvVars {
		return fmt.Errorf("%w: %d env vars on pod %q", ErrCapacity, MaxEnvVars, pod.name)
	}
	pod.envVars = append(pod.envVars, EnvVar{Name: name, Value: value})
	return nil
}

// SetSecurity changes a pod's isolation tier; frozen while active.
func (r *Registry) SetSecurity(pod *Pod, level Security) error {
	if !level.Valid() {
		return fmt.Errorf("%w: unknown security level %d", ErrValidation, int(level))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if pod.state == StateActive {
		return fmt.Errorf("%w: pod %q is active; security is frozen", ErrState, pod.name)
	}
	pod.security = level
	return nil
}

// SetCustomCommand supplies the launch command for a custom-runtime
// pod; frozen while active.
func (r *Registry) SetCustomCommand(pod *Pod, argv []string) error {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return fmt.Errorf("%w: empty custom command", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if pod.state == StateActive {
		return fmt.Errorf("%w: pod %q is active; launch command is frozen", ErrState, pod.name)
	}
	pod.customCommand = append([]string(nil), argv...)
	return nil
}

// SetDescription updates the pod's display description.
func (r *Registry) SetDescription(pod *Pod, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pod.description = description
}

// SetPolicy binds the pod to a governor policy identifier.
func (r *Registry) SetPolicy(pod *Pod, policyID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pod.policyID = policyID
	pod.approved = false
}

// validEnvName accepts the names the launch path will export:
// alphanumerics and underscore, not starting with a digit.
func validEnvName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		isAlpha := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_'
		isDigit := c >= '0' && c <= '9'
		if !isAlpha && !isDigit {
			return false
		}
		if i == 0 && isDigit {
			return false
		}
	}
	return true
}

func underRoot(path string, root string) bool {
	p := filepath.Clean(path)
	r := filepath.Clean(root)
	if p == r {
		return true
	}
	return strings.HasPrefix(p, r+string(os.PathSeparator))
}
