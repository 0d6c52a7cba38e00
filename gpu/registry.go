package gpu

import "sync"

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Backend)
)

// RegisterBackend registers a Backend implementation under its Name.
// Called from a backend package's init(), mirroring the teacher's
// hal.RegisterBackend; the blank import of gpu/softgpu is what triggers
// it. Registering the same name twice replaces the previous registration.
func RegisterBackend(backend Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends[backend.Name()] = backend
}

// GetBackend returns a registered backend by name.
func GetBackend(name string) (Backend, bool) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[name]
	return b, ok
}

// AvailableBackends returns the names of all registered backends. Order is
// non-deterministic. This backs the root package's GetAvailableGPUs
// enumeration.
func AvailableBackends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}
