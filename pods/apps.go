package pods

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/danmuck/phantompods/governor"
	"github.com/danmuck/phantompods/runtimes"
)

const defaultAppIcon = "📄"

// InstallApp records an application entry in the pod's catalog.
func (r *Registry) InstallApp(pod *Pod, name, executable, icon string) error {
	name = strings.TrimSpace(name)
	executable = strings.TrimSpace(executable)
	if name == "" || executable == "" {
		return fmt.Errorf("%w: app name and executable are required", ErrValidation)
	}
	if icon == "" {
		icon = defaultAppIcon
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(pod.apps) >= MaxApps {
		return fmt.Errorf("%w: %d apps on pod %q", ErrCapacity, MaxApps, pod.name)
	}
	pod.apps = append(pod.apps, App{
		Name:       name,
		Executable: executable,
		Icon:       icon,
		Installed:  true,
	})
	r.log.Info().Str("pod", pod.name).Str("app", name).Msg("pods.Registry installed app")
	return nil
}

// SetAppArguments updates the stored argument string for an app.
func (r *Registry) SetAppArguments(pod *Pod, appName, arguments string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := pod.appIndexLocked(appName)
	if i < 0 {
		return fmt.Errorf("%w: app %q not installed in pod %q", ErrValidation, appName, pod.name)
	}
	pod.apps[i].Arguments = arguments
	return nil
}

// RunApp launches an installed application inside an active pod. The
// pod is never activated implicitly. The governor must approve this
// specific executable and arguments; dispatch is keyed by the pod's
// runtime type. On success the app's run counter, last-run stamp, and
// the registry's total-apps-run counter advance.
func (r *Registry) RunApp(ctx context.Context, pod *Pod, appName string) (*runtimes.Handle, error) {
	r.mu.Lock()
	if pod.state != StateActive {
		state := pod.state
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: run app in pod %q in state %s", ErrState, pod.name, state)
	}
	i := pod.appIndexLocked(appName)
	if i < 0 {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: app %q not installed in pod %q", ErrValidation, appName, pod.name)
	}
	app := pod.apps[i]
	args := strings.Fields(app.Arguments)
	spec := runtimes.LaunchSpec{
		PodName:       pod.name,
		Type:          pod.podType,
		Executable:    app.Executable,
		Arguments:     args,
		WorkingDir:    pod.workingDirFor(app),
		Env:           pod.envStrings(),
		CustomCommand: append([]string(nil), pod.customCommand...),
	}
	req := governor.Request{
		PolicyID:   pod.policyID,
		PodName:    pod.name,
		PodType:    pod.podType.String(),
		Security:   pod.security.String(),
		Executable: app.Executable,
		Arguments:  args,
	}
	r.mu.Unlock()

	govCtx, cancel := context.WithTimeout(ctx, r.govTimeout)
	defer cancel()
	if err := governor.Check(govCtx, r.gov, req); err != nil {
		return nil, err
	}

	handle, err := r.dispatcher.App(ctx, spec)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	now := r.now()
	if i := pod.appIndexLocked(appName); i >= 0 {
		pod.apps[i].LastRun = now
		pod.apps[i].RunCount++
	}
	pod.lastActive = now
	r.appsRun++
	r.mu.Unlock()

	go func() {
		<-handle.Done()
		if err := handle.Err(); err != nil {
			r.log.Debug().Str("pod", pod.Name()).Str("app", appName).Err(err).Msg("pods.Registry app exited")
		}
	}()
	return handle, nil
}

// ImportExecutable copies a host executable into the pod's storage
// layer and installs it as an app, under the same capacity checks as
// the operations it composes.
func (r *Registry) ImportExecutable(pod *Pod, hostPath string) error {
	hostPath = strings.TrimSpace(hostPath)
	if hostPath == "" {
		return fmt.Errorf("%w: empty import path", ErrValidation)
	}

	r.mu.Lock()
	if len(pod.apps) >= MaxApps {
		r.mu.Unlock()
		return fmt.Errorf("%w: %d apps on pod %q", ErrCapacity, MaxApps, pod.name)
	}
	layer := pod.geologyLayer
	r.mu.Unlock()

	// Copy outside the table lock; only the catalog insert below is a
	// locked commit.
	dest, err := r.store.CopyIntoLayer(layer, hostPath)
	if err != nil {
		return err
	}
	if err := r.InstallApp(pod, filepath.Base(hostPath), dest, defaultAppIcon); err != nil {
		return err
	}
	if _, err := r.RefreshLayerSize(pod); err != nil {
		r.log.Warn().Str("pod", pod.Name()).Err(err).Msg("pods.Registry geology size refresh failed")
	}
	return nil
}

// appIndexLocked returns the catalog index for an app name. Caller
// holds the table lock.
func (p *Pod) appIndexLocked(name string) int {
	for i := range p.apps {
		if p.apps[i].Name == name {
			return i
		}
	}
	return -1
}
