package pods

import (
	"context"
	"fmt"

	"github.com/danmuck/phantompods/governor"
	"github.com/danmuck/phantompods/runtimes"
)

// Finalize moves a manifesting pod to Ready once it carries a valid
// type and security level. Activation is refused until finalized.
func (r *Registry) Finalize(pod *Pod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pod.state != StateManifesting {
		return fmt.Errorf("%w: finalize pod %q in state %s", ErrState, pod.name, pod.state)
	}
	if !pod.podType.Valid() || !pod.security.Valid() {
		return fmt.Errorf("%w: pod %q not fully configured", ErrValidation, pod.name)
	}
	if pod.podType == runtimes.TypeCustom && len(pod.customCommand) == 0 {
		return fmt.Errorf("%w: custom pod %q has no launch command", ErrValidation, pod.name)
	}
	pod.state = StateReady
	r.log.Info().Str("pod", pod.name).Msg("pods.Registry finalized")
	return nil
}

// Activate transitions a Ready or Dormant pod to Active. The backend
// availability check fails fast with an install hint; the governor
// gate and process launch run outside the table lock, and any failure
// leaves the pod exactly as it was. A dormant pod with a suspended
// session is resumed rather than relaunched.
func (r *Registry) Activate(ctx context.Context, pod *Pod) error {
	r.mu.Lock()
	if pod.busy {
		r.mu.Unlock()
		return fmt.Errorf("%w: pod %q has a transition in flight", ErrState, pod.name)
	}
	switch pod.state {
	case StateReady, StateDormant:
	case StateActive:
		r.mu.Unlock()
		return fmt.Errorf("%w: pod %q already active", ErrState, pod.name)
	default:
		state := pod.state
		r.mu.Unlock()
		return fmt.Errorf("%w: activate pod %q in state %s", ErrState, pod.name, state)
	}
	if err := r.dispatcher.CheckAvailable(pod.podType); err != nil {
		r.mu.Unlock()
		return err
	}
	req := governor.Request{
		PolicyID: pod.policyID,
		PodName:  pod.name,
		PodType:  pod.podType.String(),
		Security: pod.security.String(),
	}
	spec := r.sessionSpecLocked(pod)
	suspended := pod.suspended
	pod.busy = true
	r.mu.Unlock()

	commit := func(handle *runtimes.Handle) {
		r.mu.Lock()
		pod.busy = false
		pod.state = StateActive
		pod.proc = handle
		pod.suspended = nil
		pod.approved = true
		pod.lastActive = r.now()
		pod.lastErr = ""
		r.mu.Unlock()
		r.supervise(pod, handle)
	}
	fail := func(err error) error {
		r.mu.Lock()
		pod.busy = false
		r.mu.Unlock()
		return err
	}

	govCtx, cancel := context.WithTimeout(ctx, r.govTimeout)
	defer cancel()
	if err := governor.Check(govCtx, r.gov, req); err != nil {
		return fail(err)
	}

	if suspended != nil {
		if err := suspended.Resume(); err != nil {
			return fail(fmt.Errorf("%w: %v", runtimes.ErrLaunchFailed, err))
		}
		commit(suspended)
		r.log.Info().Str("pod", pod.Name()).Msg("pods.Registry resumed session")
		return nil
	}

	handle, err := r.dispatcher.Session(ctx, spec)
	if err != nil {
		return fail(err)
	}
	commit(handle)
	r.log.Info().Str("pod", pod.Name()).Int("pid", handle.PID()).Msg("pods.Registry activated")
	return nil
}

// MakeDormant suspends an active pod's session. The live handle is
// cleared only after the backend confirms the pause; on failure the
// pod stays Active and keeps its handle, because losing track of a
// still-running process is worse than reporting failure.
func (r *Registry) MakeDormant(pod *Pod) error {
	r.mu.Lock()
	if pod.busy {
		r.mu.Unlock()
		return fmt.Errorf("%w: pod %q has a transition in flight", ErrState, pod.name)
	}
	if pod.state != StateActive {
		state := pod.state
		r.mu.Unlock()
		return fmt.Errorf("%w: make dormant pod %q in state %s", ErrState, pod.name, state)
	}
	handle := pod.proc
	pod.busy = true
	r.mu.Unlock()

	err := handle.Suspend()

	r.mu.Lock()
	pod.busy = false
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("make dormant pod %q: %w", pod.Name(), err)
	}
	elapsed := pod.accumulateRuntime(r.now())
	r.totalRuntime += elapsed
	pod.state = StateDormant
	pod.suspended = handle
	pod.proc = nil
	r.mu.Unlock()

	r.log.Info().Str("pod", pod.Name()).Dur("session", elapsed).Msg("pods.Registry made dormant")
	return nil
}

// Archive moves a Ready or Dormant pod to Archived. An active pod must
// be made dormant first. The pod stays in the table and remains
// findable; archive is a state, not a removal.
func (r *Registry) Archive(pod *Pod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pod.busy {
		return fmt.Errorf("%w: pod %q has a transition in flight", ErrState, pod.name)
	}
	switch pod.state {
	case StateReady, StateDormant:
	case StateActive:
		return fmt.Errorf("%w: pod %q is active; make it dormant first", ErrState, pod.name)
	default:
		return fmt.Errorf("%w: archive pod %q in state %s", ErrState, pod.name, pod.state)
	}
	pod.state = StateArchived
	r.log.Info().Str("pod", pod.name).Msg("pods.Registry archived")
	return nil
}

// Restore reverses Archive. Mounts, environment variables, and apps
// are unchanged by the archive/restore round trip; a pod whose session
// is still suspended returns to Dormant, otherwise to Ready.
func (r *Registry) Restore(pod *Pod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pod.state != StateArchived {
		return fmt.Errorf("%w: restore pod %q in state %s", ErrState, pod.name, pod.state)
	}
	if pod.suspended != nil {
		pod.state = StateDormant
	} else {
		pod.state = StateReady
	}
	r.log.Info().Str("pod", pod.name).Str("state", pod.state.String()).Msg("pods.Registry restored")
	return nil
}

// BeginMigration marks a pod's backing image as in transfer. Only
// inactive operational states may enter migration; the pre-migration
// state is recorded so EndMigration can return to it.
func (r *Registry) BeginMigration(pod *Pod) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pod.busy {
		return fmt.Errorf("%w: pod %q has a transition in flight", ErrState, pod.name)
	}
	switch pod.state {
	case StateReady, StateDormant, StateArchived:
	default:
		return fmt.Errorf("%w: migrate pod %q in state %s", ErrState, pod.name, pod.state)
	}
	pod.resumeState = pod.state
	pod.state = StateMigrating
	return nil
}

// EndMigration returns a migrating pod to its pre-migration state,
// deterministically on both completion and failure.
func (r *Registry) EndMigration(pod *Pod, ok bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pod.state != StateMigrating {
		return fmt.Errorf("%w: end migration for pod %q in state %s", ErrState, pod.name, pod.state)
	}
	pod.state = pod.resumeState
	if !ok {
		pod.lastErr = "migration failed; backing image unchanged"
	}
	return nil
}

// supervise watches a session handle and, if an active pod's process
// exits unexpectedly, transitions it to Dormant with an error
// annotation. A crash is not an archival decision.
func (r *Registry) supervise(pod *Pod, handle *runtimes.Handle) {
	go func() {
		<-handle.Done()

		r.mu.Lock()
		defer r.mu.Unlock()

		if pod.suspended == handle {
			// Session died while suspended; drop the stale handle so
			// the next activation launches fresh.
			pod.suspended = nil
			pod.lastErr = "suspended session exited"
			return
		}
		if pod.proc != handle || pod.state != StateActive {
			return
		}
		elapsed := pod.accumulateRuntime(r.now())
		r.totalRuntime += elapsed
		pod.state = StateDormant
		pod.proc = nil
		if err := handle.Err(); err != nil {
			pod.lastErr = fmt.Sprintf("session exited unexpectedly: %v", err)
		} else {
			pod.lastErr = "session exited unexpectedly"
		}
		r.log.Warn().Str("pod", pod.name).Str("error", pod.lastErr).Msg("pods.Registry session exit")
	}()
}

// sessionSpecLocked builds the launch spec for a pod's session
// process. Caller holds the table lock.
func (r *Registry) sessionSpecLocked(pod *Pod) runtimes.LaunchSpec {
	return runtimes.LaunchSpec{
		PodName:       pod.name,
		Type:          pod.podType,
		Env:           pod.envStrings(),
		CustomCommand: append([]string(nil), pod.customCommand...),
	}
}
