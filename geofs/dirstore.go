package geofs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirStore is a plain-directory gateway implementation. Each pod gets
// <root>/<name>/geology; copies land under the layer keyed by base
// name. It provides the gateway contract without the versioning
// machinery of a real GeoFS backend.
type DirStore struct {
	root string
}

// NewDirStore creates a store rooted at the given directory.
func NewDirStore(root string) (*DirStore, error) {
	resolved := strings.TrimSpace(root)
	if resolved == "" {
		return nil, fmt.Errorf("%w: empty store root", ErrStorage)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root: %v", ErrStorage, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create root: %v", ErrStorage, err)
	}
	return &DirStore{root: abs}, nil
}

// Root returns the absolute store root.
func (s *DirStore) Root() string { return s.root }

// CreateLayer provisions the geology directory for a pod.
func (s *DirStore) CreateLayer(podID uint32, podName string) (string, error) {
	if strings.TrimSpace(podName) == "" {
		return "", fmt.Errorf("%w: empty pod name", ErrStorage)
	}
	layer := filepath.Join(s.root, podName, "geology")
	if !isWithin(layer, s.root) {
		return "", fmt.Errorf("%w: layer path escapes root for pod %q", ErrStorage, podName)
	}
	if err := os.MkdirAll(layer, 0o755); err != nil {
		return "", fmt.Errorf("%w: create layer for pod %d: %v", ErrStorage, podID, err)
	}
	return layer, nil
}

// LayerSize walks the layer and sums file sizes.
func (s *DirStore) LayerSize(layerPath string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(layerPath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += uint64(info.Size())
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: size of %s: %v", ErrStorage, layerPath, err)
	}
	return total, nil
}

// CopyIntoLayer copies a host file into the layer under its base name.
func (s *DirStore) CopyIntoLayer(layerPath string, source string) (string, error) {
	if !isWithin(layerPath, s.root) {
		return "", fmt.Errorf("%w: layer %s outside store root", ErrStorage, layerPath)
	}
	src, err := os.Open(source)
	if err != nil {
		return "", fmt.Errorf("%w: open source: %v", ErrStorage, err)
	}
	defer src.Close()

	dest := filepath.Join(layerPath, filepath.Base(source))
	dst, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
	if err != nil {
		return "", fmt.Errorf("%w: create destination: %v", ErrStorage, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("%w: copy %s: %v", ErrStorage, source, err)
	}
	return dest, nil
}

func isWithin(path string, root string) bool {
	p := filepath.Clean(path)
	r := filepath.Clean(root)
	if p == r {
		return true
	}
	return strings.HasPrefix(p, r+string(os.PathSeparator))
}

var _ Gateway = (*DirStore)(nil)
