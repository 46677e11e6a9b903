package runtimes

// Strategy builds command lines for one runtime type. Strategies hold
// no process state; they only translate a LaunchSpec into argv.
type Strategy interface {
	// SessionArgv is the long-lived pod session process, launched at
	// activation and supervised until the pod goes dormant.
	SessionArgv(p *Probe, spec LaunchSpec) []string

	// AppArgv wraps an application executable in the runtime's
	// invocation.
	AppArgv(p *Probe, spec LaunchSpec) []string
}

// defaultStrategies returns the strategy table keyed by runtime type.
func defaultStrategies() map[Type]Strategy {
	direct := directStrategy{}
	return map[Type]Strategy{
		TypeNative:   direct,
		TypeAppImage: direct,
		TypeWine:     wrapperStrategy{backend: TypeWine},
		TypeWine64:   wrapperStrategy{backend: TypeWine64},
		TypeDOSBox:   dosboxStrategy{},
		TypeQEMU:     qemuStrategy{},
		TypeFlatpak:  flatpakStrategy{},
		TypeCustom:   customStrategy{},
	}
}

// keeperArgv is the idle session process for runtimes whose backend
// has no daemon of its own. It anchors the pod's process handle the
// way a pause process anchors a container sandbox.
func keeperArgv() []string {
	return []string{"sleep", "infinity"}
}

// directStrategy executes the binary as-is. Covers native pods and
// AppImage (direct mount-and-execute).
type directStrategy struct{}

func (directStrategy) SessionArgv(*Probe, LaunchSpec) []string { return keeperArgv() }

func (directStrategy) AppArgv(_ *Probe, spec LaunchSpec) []string {
	return append([]string{spec.Executable}, spec.Arguments...)
}

// wrapperStrategy prefixes the executable with a compatibility binary
// (wine, wine64). The session process is the wineserver daemon, which
// both variants share.
type wrapperStrategy struct {
	backend Type
}

func (wrapperStrategy) SessionArgv(*Probe, LaunchSpec) []string {
	return []string{"wineserver", "--foreground"}
}

func (w wrapperStrategy) AppArgv(p *Probe, spec LaunchSpec) []string {
	argv := []string{p.Binary(w.backend), spec.Executable}
	return append(argv, spec.Arguments...)
}

// dosboxStrategy boots the executable inside DOSBox and exits with it.
type dosboxStrategy struct{}

func (dosboxStrategy) SessionArgv(*Probe, LaunchSpec) []string { return keeperArgv() }

func (dosboxStrategy) AppArgv(p *Probe, spec LaunchSpec) []string {
	return []string{p.Binary(TypeDOSBox), spec.Executable, "-exit"}
}

// qemuStrategy boots the executable as a disk image under full system
// emulation.
type qemuStrategy struct{}

func (qemuStrategy) SessionArgv(*Probe, LaunchSpec) []string { return keeperArgv() }

func (qemuStrategy) AppArgv(p *Probe, spec LaunchSpec) []string {
	return []string{p.Binary(TypeQEMU), "-hda", spec.Executable}
}

// flatpakStrategy runs the application ref through flatpak's own
// sandbox.
type flatpakStrategy struct{}

func (flatpakStrategy) SessionArgv(*Probe, LaunchSpec) []string { return keeperArgv() }

func (flatpakStrategy) AppArgv(p *Probe, spec LaunchSpec) []string {
	argv := []string{p.Binary(TypeFlatpak), "run", spec.Executable}
	return append(argv, spec.Arguments...)
}

// customStrategy defers to the pod-supplied launch command.
type customStrategy struct{}

func (customStrategy) SessionArgv(_ *Probe, spec LaunchSpec) []string {
	return spec.CustomCommand
}

func (customStrategy) AppArgv(_ *Probe, spec LaunchSpec) []string {
	argv := append([]string{}, spec.CustomCommand...)
	argv = append(argv, spec.Executable)
	return append(argv, spec.Arguments...)
}
