package pods

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/phantompods/runtimes"
)

type fileConfig struct {
	Root            string `toml:"root"`
	GovernorTimeout string `toml:"governor_timeout"`

	Probe struct {
		Wine    string `toml:"wine"`
		Wine64  string `toml:"wine64"`
		DOSBox  string `toml:"dosbox"`
		Flatpak string `toml:"flatpak"`
		QEMU    string `toml:"qemu"`
	} `toml:"probe"`
}

// LoadOptions reads registry options from a TOML file. Unset keys keep
// their defaults; probe entries override the binary names the
// compatibility probe looks for.
func LoadOptions(path string) (Options, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Options{}, fmt.Errorf("load pods config: %w", err)
	}

	var opts Options
	if meta.IsDefined("root") {
		opts.Root = strings.TrimSpace(raw.Root)
		if opts.Root == "" {
			return Options{}, fmt.Errorf("%w: root must be non-empty when set", ErrValidation)
		}
	}
	if meta.IsDefined("governor_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.GovernorTimeout))
		if err != nil {
			return Options{}, fmt.Errorf("%w: parse governor_timeout: %v", ErrValidation, err)
		}
		if d <= 0 {
			return Options{}, fmt.Errorf("%w: governor_timeout must be positive", ErrValidation)
		}
		opts.GovernorTimeout = d
	}
	if meta.IsDefined("probe") {
		opts.Probe = runtimes.NewProbe(runtimes.ProbeConfig{
			WineBinary:    strings.TrimSpace(raw.Probe.Wine),
			Wine64Binary:  strings.TrimSpace(raw.Probe.Wine64),
			DOSBoxBinary:  strings.TrimSpace(raw.Probe.DOSBox),
			FlatpakBinary: strings.TrimSpace(raw.Probe.Flatpak),
			QEMUBinary:    strings.TrimSpace(raw.Probe.QEMU),
		})
	}
	return opts, nil
}
