// Package runtimes owns compatibility runtime dispatch.
//
// Ownership boundary:
// - runtime type enumeration and install hints
// - host compatibility probing
// - per-type launch strategies and process handles
//
// Runtimes does not decide whether a pod may run; that gate belongs to
// the governor package and is enforced by the pods registry.
package runtimes
