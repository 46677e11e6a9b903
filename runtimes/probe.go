package runtimes

import (
	"os/exec"
	"sync"
)

// Binary names probed for each compatibility layer. Overridable through
// ProbeConfig for hosts with renamed or relocated binaries.
const (
	defaultWineBinary    = "wine"
	defaultWine64Binary  = "wine64"
	defaultDOSBoxBinary  = "dosbox"
	defaultFlatpakBinary = "flatpak"
	defaultQEMUBinary    = "qemu-system-x86_64"
)

// Availability is a snapshot of which compatibility layers the host has
// installed. Native, AppImage and Custom pods need no external backend
// and are always runnable.
type Availability struct {
	Wine    bool
	Wine64  bool
	DOSBox  bool
	Flatpak bool
	QEMU    bool
}

// ProbeConfig configures a compatibility probe.
type ProbeConfig struct {
	// Binary overrides; empty fields fall back to the defaults above.
	WineBinary    string
	Wine64Binary  string
	DOSBoxBinary  string
	FlatpakBinary string
	QEMUBinary    string

	// LookPath resolves a binary on the host. Defaults to exec.LookPath.
	// Injectable so tests can simulate missing backends.
	LookPath func(name string) (string, error)
}

// Probe detects which compatibility runtimes are installed. Detection
// is side-effect free beyond refreshing the cached availability flags
// and is safe to repeat.
type Probe struct {
	mu       sync.RWMutex
	avail    Availability
	binaries map[Type]string
	lookPath func(name string) (string, error)
}

// NewProbe creates a probe and runs an initial detection pass.
func NewProbe(cfg ProbeConfig) *Probe {
	lookPath := cfg.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	p := &Probe{
		binaries: map[Type]string{
			TypeWine:    orDefault(cfg.WineBinary, defaultWineBinary),
			TypeWine64:  orDefault(cfg.Wine64Binary, defaultWine64Binary),
			TypeDOSBox:  orDefault(cfg.DOSBoxBinary, defaultDOSBoxBinary),
			TypeFlatpak: orDefault(cfg.FlatpakBinary, defaultFlatpakBinary),
			TypeQEMU:    orDefault(cfg.QEMUBinary, defaultQEMUBinary),
		},
		lookPath: lookPath,
	}
	p.Refresh()
	return p
}

// Refresh re-probes the host and updates the availability flags.
func (p *Probe) Refresh() Availability {
	avail := Availability{
		Wine:    p.has(TypeWine),
		Wine64:  p.has(TypeWine64),
		DOSBox:  p.has(TypeDOSBox),
		Flatpak: p.has(TypeFlatpak),
		QEMU:    p.has(TypeQEMU),
	}
	p.mu.Lock()
	p.avail = avail
	p.mu.Unlock()
	return avail
}

// Availability returns the flags from the most recent detection pass.
func (p *Probe) Availability() Availability {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.avail
}

// Available reports whether pods of the given type can launch on this
// host, per the cached flags.
func (p *Probe) Available(t Type) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch t {
	case TypeWine:
		return p.avail.Wine
	case TypeWine64:
		return p.avail.Wine64
	case TypeDOSBox:
		return p.avail.DOSBox
	case TypeFlatpak:
		return p.avail.Flatpak
	case TypeQEMU:
		return p.avail.QEMU
	default:
		// Native, AppImage and Custom run without an external backend.
		return true
	}
}

// Binary returns the configured binary name for a backend type.
func (p *Probe) Binary(t Type) string {
	return p.binaries[t]
}

func (p *Probe) has(t Type) bool {
	_, err := p.lookPath(p.binaries[t])
	return err == nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
