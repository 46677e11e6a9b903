package runtimes

import (
	"errors"
	"testing"
)

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

func TestProbeDetectsInstalledBackends(t *testing.T) {
	p := NewProbe(ProbeConfig{LookPath: fakeLookPath("wine", "dosbox")})

	avail := p.Availability()
	if !avail.Wine || !avail.DOSBox {
		t.Fatalf("expected wine and dosbox available, got %+v", avail)
	}
	if avail.Wine64 || avail.Flatpak || avail.QEMU {
		t.Fatalf("expected wine64/flatpak/qemu unavailable, got %+v", avail)
	}
}

func TestProbeRefreshPicksUpNewBackends(t *testing.T) {
	installed := map[string]bool{}
	p := NewProbe(ProbeConfig{LookPath: func(name string) (string, error) {
		if installed[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}})

	if p.Available(TypeWine) {
		t.Fatalf("wine should start unavailable")
	}
	installed["wine"] = true
	p.Refresh()
	if !p.Available(TypeWine) {
		t.Fatalf("wine should be available after refresh")
	}
}

func TestProbeAlwaysAvailableTypes(t *testing.T) {
	p := NewProbe(ProbeConfig{LookPath: fakeLookPath()})
	for _, typ := range []Type{TypeNative, TypeAppImage, TypeCustom} {
		if !p.Available(typ) {
			t.Fatalf("type %s should not need an external backend", typ)
		}
	}
}

func TestProbeBinaryOverrides(t *testing.T) {
	p := NewProbe(ProbeConfig{
		WineBinary: "wine-staging",
		LookPath:   fakeLookPath("wine-staging"),
	})
	if !p.Available(TypeWine) {
		t.Fatalf("override binary should satisfy wine availability")
	}
	if got := p.Binary(TypeWine); got != "wine-staging" {
		t.Fatalf("binary override not applied: got %q", got)
	}
}
