// Package pods owns the pod lifecycle control plane.
//
// Ownership boundary:
// - pod entity, state machine, and transition guards
// - bounded registry table, identity allocation, host aggregates
// - mount/env/app sub-tables and the template catalog
// - governor gating and geofs integration for privileged actions
//
// Pods are never destroyed. Every lifecycle operation moves a pod
// between states; nothing removes one from the registry table, and no
// such operation exists in this API. Process execution is delegated to
// the runtimes package; policy approval to the governor package;
// persistent artifacts to the geofs package.
package pods
