package runtimes

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

type recordingStarter struct {
	mu    sync.Mutex
	argvs [][]string
	dirs  []string
	envs  [][]string
	fail  error
}

func (s *recordingStarter) start(ctx context.Context, argv []string, dir string, env []string) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	s.argvs = append(s.argvs, argv)
	s.dirs = append(s.dirs, dir)
	s.envs = append(s.envs, env)
	h, _ := NewFakeHandle(1000+len(s.argvs), nil)
	return h, nil
}

func (s *recordingStarter) lastArgv() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.argvs) == 0 {
		return nil
	}
	return s.argvs[len(s.argvs)-1]
}

func newTestDispatcher(starter *recordingStarter, installed ...string) *Dispatcher {
	return NewDispatcher(DispatcherConfig{
		Probe: NewProbe(ProbeConfig{LookPath: fakeLookPath(installed...)}),
		Start: starter.start,
	})
}

func TestDispatchUnavailableFailsFastWithHint(t *testing.T) {
	starter := &recordingStarter{}
	d := newTestDispatcher(starter) // nothing installed

	_, err := d.App(context.Background(), LaunchSpec{PodName: "w", Type: TypeWine, Executable: "app.exe"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "Wine") {
		t.Fatalf("hint should reference the Wine compatibility layer: %v", err)
	}
	if len(starter.argvs) != 0 {
		t.Fatalf("no spawn should be attempted for a missing backend")
	}
}

func TestDispatchAppArgvPerType(t *testing.T) {
	cases := []struct {
		name string
		spec LaunchSpec
		want []string
	}{
		{
			name: "native direct",
			spec: LaunchSpec{PodName: "n", Type: TypeNative, Executable: "/opt/tool", Arguments: []string{"-v"}},
			want: []string{"/opt/tool", "-v"},
		},
		{
			name: "wine wrapper",
			spec: LaunchSpec{PodName: "w", Type: TypeWine, Executable: "app.exe", Arguments: []string{"/s"}},
			want: []string{"wine", "app.exe", "/s"},
		},
		{
			name: "wine64 wrapper",
			spec: LaunchSpec{PodName: "w64", Type: TypeWine64, Executable: "app64.exe"},
			want: []string{"wine64", "app64.exe"},
		},
		{
			name: "dosbox exits with app",
			spec: LaunchSpec{PodName: "d", Type: TypeDOSBox, Executable: "GAME.EXE"},
			want: []string{"dosbox", "GAME.EXE", "-exit"},
		},
		{
			name: "qemu boots disk image",
			spec: LaunchSpec{PodName: "q", Type: TypeQEMU, Executable: "os.img"},
			want: []string{"qemu-system-x86_64", "-hda", "os.img"},
		},
		{
			name: "flatpak sandboxed run",
			spec: LaunchSpec{PodName: "f", Type: TypeFlatpak, Executable: "org.example.App"},
			want: []string{"flatpak", "run", "org.example.App"},
		},
		{
			name: "custom command prefix",
			spec: LaunchSpec{PodName: "c", Type: TypeCustom, Executable: "payload", CustomCommand: []string{"mywrap", "--jail"}},
			want: []string{"mywrap", "--jail", "payload"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			starter := &recordingStarter{}
			d := newTestDispatcher(starter, "wine", "wine64", "dosbox", "flatpak", "qemu-system-x86_64", "mywrap")
			if _, err := d.App(context.Background(), tc.spec); err != nil {
				t.Fatalf("dispatch: %v", err)
			}
			got := starter.lastArgv()
			if len(got) != len(tc.want) {
				t.Fatalf("argv mismatch: got=%v want=%v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("argv mismatch: got=%v want=%v", got, tc.want)
				}
			}
		})
	}
}

func TestDispatchSessionUsesKeeperOrCustomCommand(t *testing.T) {
	starter := &recordingStarter{}
	d := newTestDispatcher(starter, "wine")

	if _, err := d.Session(context.Background(), LaunchSpec{PodName: "w", Type: TypeWine}); err != nil {
		t.Fatalf("session: %v", err)
	}
	if got := starter.lastArgv(); got[0] != "wineserver" {
		t.Fatalf("wine session should anchor on wineserver, got %v", got)
	}

	if _, err := d.Session(context.Background(), LaunchSpec{PodName: "n", Type: TypeNative}); err != nil {
		t.Fatalf("native session: %v", err)
	}
	if got := starter.lastArgv(); got[0] != "sleep" {
		t.Fatalf("native session should anchor on a keeper process, got %v", got)
	}

	custom := LaunchSpec{PodName: "c", Type: TypeCustom, CustomCommand: []string{"my-env", "--daemon"}}
	if _, err := d.Session(context.Background(), custom); err != nil {
		t.Fatalf("custom session: %v", err)
	}
	if got := starter.lastArgv(); got[0] != "my-env" {
		t.Fatalf("custom session should use the pod-supplied command, got %v", got)
	}
}

func TestDispatchCustomWithoutCommandFails(t *testing.T) {
	starter := &recordingStarter{}
	d := newTestDispatcher(starter)

	_, err := d.Session(context.Background(), LaunchSpec{PodName: "c", Type: TypeCustom})
	if !errors.Is(err, ErrLaunchFailed) {
		t.Fatalf("expected ErrLaunchFailed for custom pod without command, got %v", err)
	}
}

func TestDispatchStartFailureMapsToLaunchFailed(t *testing.T) {
	starter := &recordingStarter{fail: errors.New("fork: resource exhausted")}
	d := newTestDispatcher(starter)

	_, err := d.App(context.Background(), LaunchSpec{PodName: "n", Type: TypeNative, Executable: "/opt/tool"})
	if !errors.Is(err, ErrLaunchFailed) {
		t.Fatalf("expected ErrLaunchFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "resource exhausted") {
		t.Fatalf("underlying reason should be carried: %v", err)
	}
}

func TestDispatchPassesWorkingDirAndEnv(t *testing.T) {
	starter := &recordingStarter{}
	d := newTestDispatcher(starter)

	spec := LaunchSpec{
		PodName:    "n",
		Type:       TypeNative,
		Executable: "/opt/tool",
		WorkingDir: "/work",
		Env:        []string{"A=1", "B=2"},
	}
	if _, err := d.App(context.Background(), spec); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if starter.dirs[0] != "/work" {
		t.Fatalf("working dir not passed: got %q", starter.dirs[0])
	}
	if len(starter.envs[0]) != 2 || starter.envs[0][0] != "A=1" {
		t.Fatalf("env not passed: got %v", starter.envs[0])
	}
}
