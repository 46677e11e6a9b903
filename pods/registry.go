package pods

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/phantompods/geofs"
	"github.com/danmuck/phantompods/governor"
	"github.com/danmuck/phantompods/internal/logging"
	"github.com/danmuck/phantompods/runtimes"
)

// DefaultRoot is the pods root when none is configured.
const DefaultRoot = "/var/phantom/pods"

const defaultGovernorTimeout = 5 * time.Second

// Options configures a Registry. Zero-value fields fall back to
// defaults: a DirStore under Root, an approve-all static governor, a
// fresh compatibility probe, and the shared logger.
type Options struct {
	// Root is the directory holding one subdirectory per pod.
	Root string

	// Store is the storage-layer gateway.
	Store geofs.Gateway

	// Governor gates every activation and app run.
	Governor governor.Gateway

	// GovernorTimeout bounds each policy evaluation.
	GovernorTimeout time.Duration

	// Probe answers compatibility availability.
	Probe *runtimes.Probe

	// Starter overrides process spawning (tests).
	Starter runtimes.Starter

	// Logger for registry events.
	Logger *zerolog.Logger
}

// Registry owns the bounded pod table. All mutating operations run
// under one exclusive lock over the table; long-running work (policy
// evaluation, process launch, layer copies) happens outside it with a
// short locked commit at the end.
type Registry struct {
	mu     sync.Mutex
	pods   []*Pod
	nextID uint32

	root          string
	templatesPath string

	probe      *runtimes.Probe
	dispatcher *runtimes.Dispatcher
	store      geofs.Gateway
	gov        governor.Gateway
	govTimeout time.Duration

	podsCreated  uint64
	appsRun      uint64
	totalRuntime time.Duration

	now func() time.Time
	log zerolog.Logger
}

// New allocates a registry, prepares the pods root, and runs the
// compatibility probe once.
func New(opts Options) (*Registry, error) {
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = DefaultRoot
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root %q: %v", ErrValidation, root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create root: %v", geofs.ErrStorage, err)
	}

	store := opts.Store
	if store == nil {
		store, err = geofs.NewDirStore(abs)
		if err != nil {
			return nil, err
		}
	}

	gov := opts.Governor
	if gov == nil {
		gov = &governor.Static{Default: governor.DecisionApprove}
	}
	govTimeout := opts.GovernorTimeout
	if govTimeout <= 0 {
		govTimeout = defaultGovernorTimeout
	}

	probe := opts.Probe
	if probe == nil {
		probe = runtimes.NewProbe(runtimes.ProbeConfig{})
	}

	logger := logging.Default()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	r := &Registry{
		nextID:        1,
		root:          abs,
		templatesPath: filepath.Join(abs, "templates"),
		probe:         probe,
		store:         store,
		gov:           gov,
		govTimeout:    govTimeout,
		now:           time.Now,
		log:           logger,
	}
	r.dispatcher = runtimes.NewDispatcher(runtimes.DispatcherConfig{
		Probe:  probe,
		Start:  opts.Starter,
		Logger: logger,
	})

	avail := probe.Availability()
	r.log.Info().
		Str("root", abs).
		Bool("wine", avail.Wine).
		Bool("wine64", avail.Wine64).
		Bool("dosbox", avail.DOSBox).
		Bool("flatpak", avail.Flatpak).
		Msg("pods.Registry initialized")
	return r, nil
}

// Shutdown suspends every active pod and releases registry resources.
// Persisted storage layers are never touched; pods outlive the
// process.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	active := make([]*Pod, 0)
	for _, pod := range r.pods {
		if pod.state == StateActive {
			active = append(active, pod)
		}
	}
	preserved := len(r.pods)
	r.mu.Unlock()

	for _, pod := range active {
		if err := r.MakeDormant(pod); err != nil {
			r.log.Warn().Str("pod", pod.Name()).Err(err).Msg("pods.Registry shutdown suspend failed")
		}
	}
	r.log.Info().Int("preserved", preserved).Msg("pods.Registry shutdown complete")
}

// Create inserts a fresh pod in state Manifesting with template-free
// defaults and a newly provisioned storage layer.
func (r *Registry) Create(name string, t runtimes.Type) (*Pod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty pod name", ErrValidation)
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown runtime type %d", ErrValidation, int(t))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findByNameLocked(name) != nil {
		return nil, fmt.Errorf("%w: pod name %q already exists", ErrValidation, name)
	}
	if len(r.pods) >= MaxPods {
		return nil, fmt.Errorf("%w: %d pods", ErrCapacity, MaxPods)
	}

	layer, err := r.store.CreateLayer(r.nextID, name)
	if err != nil {
		return nil, err
	}

	pod := &Pod{
		mu:       &r.mu,
		id:       r.nextID,
		name:     name,
		icon:     iconForType(t),
		podType:  t,
		state:    StateManifesting,
		security: SecurityStandard,
		limits: Limits{
			CPUPercent: 50, MemoryMB: 1024, StorageMB: 2048,
			AllowAudio: true, AllowDisplay: true,
		},
		created:      r.now(),
		geologyLayer: layer,
	}
	r.nextID++
	r.pods = append(r.pods, pod)
	r.podsCreated++

	r.log.Info().
		Str("pod", name).
		Uint32("id", pod.id).
		Str("type", t.String()).
		Msg("pods.Registry created")
	return pod, nil
}

// CreateFromTemplate creates a pod and copies the template's type,
// security level, and default limits verbatim.
func (r *Registry) CreateFromTemplate(name string, tmpl Template) (*Pod, error) {
	if !tmpl.Type.Valid() || !tmpl.Security.Valid() {
		return nil, fmt.Errorf("%w: malformed template %q", ErrValidation, tmpl.Name)
	}
	pod, err := r.Create(name, tmpl.Type)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	pod.description = tmpl.Description
	if tmpl.Icon != "" {
		pod.icon = tmpl.Icon
	}
	pod.security = tmpl.Security
	pod.limits = tmpl.DefaultLimits
	r.mu.Unlock()
	return pod, nil
}

// FindByID returns the pod with the given identity. The table is
// small and bounded; lookup is a linear scan.
func (r *Registry) FindByID(id uint32) (*Pod, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pod := range r.pods {
		if pod.id == id {
			return pod, true
		}
	}
	return nil, false
}

// FindByName returns the pod with the given name.
func (r *Registry) FindByName(name string) (*Pod, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pod := r.findByNameLocked(name)
	return pod, pod != nil
}

// Pods returns a snapshot of the table in insertion (identity) order.
func (r *Registry) Pods() []*Pod {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Pod(nil), r.pods...)
}

// PodCount returns the number of pods in the table.
func (r *Registry) PodCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pods)
}

// ActiveCount returns the number of pods in state Active.
func (r *Registry) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, pod := range r.pods {
		if pod.state == StateActive {
			count++
		}
	}
	return count
}

// DetectCompatibility re-probes the host and refreshes the
// availability flags. Side-effect free otherwise; safe to repeat.
func (r *Registry) DetectCompatibility() runtimes.Availability {
	return r.probe.Refresh()
}

// Availability returns the flags from the most recent probe pass.
func (r *Registry) Availability() runtimes.Availability {
	return r.probe.Availability()
}

// Root returns the configured pods root directory.
func (r *Registry) Root() string { return r.root }

// PodsCreated returns the lifetime count of pods created.
func (r *Registry) PodsCreated() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.podsCreated
}

// AppsRun returns the lifetime count of successful app launches.
func (r *Registry) AppsRun() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appsRun
}

// TotalRuntime returns cumulative active time across all pods.
func (r *Registry) TotalRuntime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalRuntime
}

// RefreshLayerSize re-reads a pod's geology size through the storage
// gateway.
func (r *Registry) RefreshLayerSize(pod *Pod) (uint64, error) {
	size, err := r.store.LayerSize(pod.GeologyLayer())
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	pod.geologySize = size
	r.mu.Unlock()
	return size, nil
}

func (r *Registry) findByNameLocked(name string) *Pod {
	for _, pod := range r.pods {
		if pod.name == name {
			return pod
		}
	}
	return nil
}

func iconForType(t runtimes.Type) string {
	switch t {
	case runtimes.TypeNative:
		return "🐧"
	case runtimes.TypeWine, runtimes.TypeWine64:
		return "🪟"
	case runtimes.TypeDOSBox:
		return "👾"
	case runtimes.TypeAppImage:
		return "📀"
	default:
		return "📦"
	}
}
