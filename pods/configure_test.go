package pods

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/danmuck/phantompods/runtimes"
)

func TestSetLimitsValidation(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	pod := createReady(t, r, "limited", runtimes.TypeNative)

	for _, cpu := range []uint32{0, 101} {
		err := r.SetLimits(pod, Limits{CPUPercent: cpu, MemoryMB: 512, StorageMB: 512})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("cpu=%d: expected ErrValidation, got %v", cpu, err)
		}
	}
	want := Limits{CPUPercent: 75, MemoryMB: 2048, StorageMB: 4096, NetworkKbps: 1000, AllowAudio: true}
	if err := r.SetLimits(pod, want); err != nil {
		t.Fatalf("set limits: %v", err)
	}
	if pod.Limits() != want {
		t.Fatalf("limits: got %+v want %+v", pod.Limits(), want)
	}
}

func TestSetLimitsFrozenWhileActive(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	pod := createReady(t, r, "live", runtimes.TypeNative)
	if err := r.Activate(context.Background(), pod); err != nil {
		t.Fatalf("activate: %v", err)
	}

	before := pod.Limits()
	err := r.SetLimits(pod, Limits{CPUPercent: 10, MemoryMB: 64, StorageMB: 64})
	if !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState, got %v", err)
	}
	if pod.Limits() != before {
		t.Fatalf("frozen limits were modified")
	}
}

func TestAddMountGeologyBacked(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	pod := createReady(t, r, "mounted", runtimes.TypeNative)

	inside := filepath.Join(pod.GeologyLayer(), "shared")
	if err := r.AddMount(pod, inside, "/mnt/shared", false); err != nil {
		t.Fatalf("add mount: %v", err)
	}
	if err := r.AddMount(pod, "/home/user/docs", "/mnt/docs", true); err != nil {
		t.Fatalf("add mount: %v", err)
	}

	mounts := pod.Mounts()
	if len(mounts) != 2 {
		t.Fatalf("mount count: got %d want 2", len(mounts))
	}
	if !mounts[0].GeologyBacked {
		t.Fatalf("mount under the storage root must be geology backed")
	}
	if mounts[1].GeologyBacked {
		t.Fatalf("mount outside the storage root must not be geology backed")
	}
	if !mounts[1].ReadOnly {
		t.Fatalf("read-only flag not recorded")
	}
}

func TestAddMountValidationAndCapacity(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	pod := createReady(t, r, "full", runtimes.TypeNative)

	if err := r.AddMount(pod, "", "/mnt/x", false); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty host path: expected ErrValidation, got %v", err)
	}
	for i := 0; i < MaxMounts; i++ {
		if err := r.AddMount(pod, fmt.Sprintf("/data/%d", i), fmt.Sprintf("/mnt/%d", i), false); err != nil {
			t.Fatalf("add mount %d: %v", i, err)
		}
	}
	if err := r.AddMount(pod, "/data/over", "/mnt/over", false); !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity at %d mounts, got %v", MaxMounts, err)
	}
	if pod.MountCount() != MaxMounts {
		t.Fatalf("mount count: got %d want %d", pod.MountCount(), MaxMounts)
	}
}

func TestAddEnvReplacesInPlace(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	pod := createReady(t, r, "envy", runtimes.TypeNative)

	if err := r.AddEnv(pod, "WINEPREFIX", "/old"); err != nil {
		t.Fatalf("add env: %v", err)
	}
	if err := r.AddEnv(pod, "LANG", "C"); err != nil {
		t.Fatalf("add env: %v", err)
	}
	if err := r.AddEnv(pod, "WINEPREFIX", "/new"); err != nil {
		t.Fatalf("replace env: %v", err)
	}

	envs := pod.EnvVars()
	if len(envs) != 2 {
		t.Fatalf("env count: got %d want 2", len(envs))
	}
	if envs[0].Name != "WINEPREFIX" || envs[0].Value != "/new" {
		t.Fatalf("replacement must keep position: got %+v", envs[0])
	}
}

func TestAddEnvNameValidationAndCapacity(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	pod := createReady(t, r, "strict", runtimes.TypeNative)

	for _, name := range []string{"", "1LEAD", "HAS-DASH", "HAS SPACE", "A=B"} {
		if err := r.AddEnv(pod, name, "v"); !errors.Is(err, ErrValidation) {
			t.Fatalf("name %q: expected ErrValidation, got %v", name, err)
		}
	}
	for i := 0; i < MaxEnvVars; i++ {
		if err := r.AddEnv(pod, fmt.Sprintf("VAR_%d", i), "v"); err != nil {
			t.Fatalf("add env %d: %v", i, err)
		}
	}
	if err := r.AddEnv(pod, "ONE_TOO_MANY", "v"); !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity at %d vars, got %v", MaxEnvVars, err)
	}
	// Replacing an existing name never counts against capacity.
	if err := r.AddEnv(pod, "VAR_0", "updated"); err != nil {
		t.Fatalf("replace at capacity: %v", err)
	}
}

func TestSetSecurityFrozenWhileActive(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	pod := createReady(t, r, "secured", runtimes.TypeNative)

	if err := r.SetSecurity(pod, Security(9)); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad level: expected ErrValidation, got %v", err)
	}
	if err := r.SetSecurity(pod, SecurityMaximum); err != nil {
		t.Fatalf("set security: %v", err)
	}
	if pod.Security() != SecurityMaximum {
		t.Fatalf("security: got %s want %s", pod.Security(), SecurityMaximum)
	}

	if err := r.Activate(context.Background(), pod); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := r.SetSecurity(pod, SecurityRelaxed); !errors.Is(err, ErrState) {
		t.Fatalf("expected ErrState while active, got %v", err)
	}
	if pod.Security() != SecurityMaximum {
		t.Fatalf("frozen security was modified")
	}
}

func TestSetPolicyResetsApproval(t *testing.T) {
	r, _ := newTestRegistry(t, nil)
	pod := createReady(t, r, "policied", runtimes.TypeNative)

	if err := r.Activate(context.Background(), pod); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !pod.Approved() {
		t.Fatalf("activation should record approval")
	}
	if err := r.MakeDormant(pod); err != nil {
		t.Fatalf("make dormant: %v", err)
	}

	r.SetPolicy(pod, 42)
	if pod.PolicyID() != 42 {
		t.Fatalf("policy id: got %d want 42", pod.PolicyID())
	}
	if pod.Approved() {
		t.Fatalf("policy change must clear the stale approval")
	}
}
