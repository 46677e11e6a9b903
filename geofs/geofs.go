// Package geofs owns the storage-layer gateway contract.
//
// Ownership boundary:
// - layer creation/size/copy gateway shape
// - directory-backed default store
//
// The versioned storage backend itself is an external collaborator;
// pods only require the mount/versioning contract below. Layers are
// immutable-history by convention: nothing in this module ever deletes
// one.
package geofs

import "errors"

// ErrStorage wraps any layer creation or copy failure.
var ErrStorage = errors.New("geofs storage error")

// Gateway is the storage-layer surface consulted at pod creation, for
// geology size refreshes, and for imports into a pod's layer.
type Gateway interface {
	// CreateLayer provisions the versioned layer for a pod and returns
	// its path. Called exactly once per pod.
	CreateLayer(podID uint32, podName string) (string, error)

	// LayerSize reports the current size of a layer in bytes.
	LayerSize(layerPath string) (uint64, error)

	// CopyIntoLayer copies a host source file into the layer and
	// returns the in-layer destination path.
	CopyIntoLayer(layerPath string, source string) (string, error)

	// Root is the storage root; host paths under it are
	// geology-backed when mounted into a pod.
	Root() string
}
