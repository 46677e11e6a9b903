package pods

import (
	"fmt"
	"time"
)

// Capacity ceilings for the bounded tables. These express a
// deterministic footprint for the whole control plane; every mutating
// operation enforces them before touching a table.
const (
	MaxPods    = 64
	MaxMounts  = 16
	MaxEnvVars = 64
	MaxApps    = 32
)

// State is a pod's lifecycle state. There is no terminal destroyed
// state.
type State int

const (
	StateManifesting State = iota // being created/configured
	StateReady                    // configured but not running
	StateActive                   // currently running
	StateDormant                  // suspended, resumable
	StateArchived                 // preserved in geology, inactive
	StateMigrating                // backing image being transferred
)

// String returns the display name for the state.
func (s State) String() string {
	switch s {
	case StateManifesting:
		return "Manifesting"
	case StateReady:
		return "Ready"
	case StateActive:
		return "Active"
	case StateDormant:
		return "Dormant"
	case StateArchived:
		return "Archived"
	case StateMigrating:
		return "Migrating"
	default:
		return "Unknown"
	}
}

// Security is a pod's isolation tier.
type Security int

const (
	SecurityMaximum  Security = iota // no network, no host filesystem access
	SecurityHigh                     // limited network, read-only host access
	SecurityStandard                 // controlled access to resources
	SecurityRelaxed                  // broader access for trusted apps
	SecurityCustom                   // user-defined policy
)

// String returns the display name for the security level.
func (s Security) String() string {
	switch s {
	case SecurityMaximum:
		return "Maximum"
	case SecurityHigh:
		return "High"
	case SecurityStandard:
		return "Standard"
	case SecurityRelaxed:
		return "Relaxed"
	case SecurityCustom:
		return "Custom"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is a known security level.
func (s Security) Valid() bool {
	return s >= SecurityMaximum && s <= SecurityCustom
}

// Limits is the resource envelope applied to a pod. Copied by value at
// creation or template instantiation; mutable only while the pod is
// not active.
type Limits struct {
	CPUPercent   uint32 // 1-100
	MemoryMB     uint64
	StorageMB    uint64
	NetworkKbps  uint32 // 0 = no cap
	AllowGPU     bool
	AllowAudio   bool
	AllowUSB     bool
	AllowDisplay bool
}

// Validate checks the limits envelope.
func (l Limits) Validate() error {
	if l.CPUPercent < 1 || l.CPUPercent > 100 {
		return fmt.Errorf("%w: cpu_percent %d outside [1,100]", ErrValidation, l.CPUPercent)
	}
	return nil
}

// Mount maps a host or geology path into a pod.
type Mount struct {
	HostPath string
	PodPath  string
	ReadOnly bool

	// GeologyBacked marks mounts whose host path resolves under the
	// storage root, giving them automatic history/versioning.
	GeologyBacked bool
}

// EnvVar is a pod environment variable. Names are unique within a pod.
type EnvVar struct {
	Name  string
	Value string
}

// App is an installed application entry inside a pod.
type App struct {
	Name       string
	Executable string
	Arguments  string
	Icon       string
	WorkingDir string
	Installed  bool
	LastRun    time.Time
	RunCount   uint64
}
