package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/artn/hgfsd/internal/locker"
	"github.com/artn/hgfsd/internal/metrics"
)

// Lock ordering required whenever a caller needs more than one of these
// locks at once: FileIOLock, then NodeArrayLock, then SearchArrayLock
// (spec.md §5). Acquiring out of order risks deadlock against a second
// goroutine processing another request on the same session.
type Session struct {
	ID uuid.UUID

	// FileIOLock serializes read/write sequences on a single handle so
	// that, within one handle, operations observe program order (spec.md
	// §5).
	FileIOLock sync.Mutex

	nodeArrayLock sync.Mutex
	Nodes         *FileTable

	searchArrayLock sync.Mutex
	Searches        *SearchTable
}

// Config bounds a session's resource tables; values come from
// internal/cfg.Config.
type Config struct {
	MaxFileNodes       int
	MaxCachedOpenNodes int
	MaxSearches        int
}

func New(cfg Config) *Session {
	return &Session{
		ID:       uuid.New(),
		Nodes:    NewFileTable(cfg.MaxFileNodes, cfg.MaxCachedOpenNodes),
		Searches: NewSearchTable(cfg.MaxSearches),
	}
}

// WithNodes runs fn with the node-array lock held. Callers that also need
// FileIOLock must acquire it before calling WithNodes, never after
// (spec.md §5 lock ordering).
func (s *Session) WithNodes(fn func(*FileTable)) {
	s.nodeArrayLock.Lock()
	defer s.nodeArrayLock.Unlock()
	fn(s.Nodes)
}

// WithSearches runs fn with the search-array lock held.
func (s *Session) WithSearches(fn func(*SearchTable)) {
	s.searchArrayLock.Lock()
	defer s.searchArrayLock.Unlock()
	fn(s.Searches)
}

// ReportMetrics publishes this session's current cache occupancy and
// active-search count to the process-wide gauges. Called by the
// dispatcher after each request so the numbers stay close to live without
// every table mutation needing to know about metrics.
func (s *Session) ReportMetrics() {
	label := s.ID.String()
	s.WithNodes(func(t *FileTable) {
		metrics.CachedNodes.With(map[string]string{"session": label}).Set(float64(t.NumCached()))
	})
	s.WithSearches(func(t *SearchTable) {
		metrics.SearchesActive.With(map[string]string{"session": label}).Set(float64(t.NumActive()))
	})
}

// Manager owns every live session, keyed by the uuid the transport layer
// assigns at connect time (spec.md §3.8). Get is the hot path (once per
// request); Create/Destroy are rare by comparison, so the map is guarded
// by an RWLocker rather than a plain mutex, letting concurrent requests
// on different sessions all take the map lock for reading at once.
type Manager struct {
	mu       locker.RWLocker
	sessions map[uuid.UUID]*Session
	cfg      Config
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		mu:       locker.NewRW("session.Manager", func() {}),
		sessions: make(map[uuid.UUID]*Session),
		cfg:      cfg,
	}
}

// Create allocates a new session and registers it under a fresh uuid.
func (m *Manager) Create() *Session {
	s := New(m.cfg)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return s
}

// CreateWithID allocates a new session registered under a caller-chosen
// id, for transports (like a loopback) that assign their own session
// identifiers rather than letting the manager mint one.
func (m *Manager) CreateWithID(id uuid.UUID) *Session {
	s := New(m.cfg)
	s.ID = id
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
	return s
}

// Get returns the session registered under id, or nil if none exists
// (e.g. the guest sent a request after the transport already tore the
// session down).
func (m *Manager) Get(id uuid.UUID) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Destroy removes a session from the manager. Open file descriptors and
// cached nodes belonging to it are the caller's responsibility to close
// before calling Destroy.
func (m *Manager) Destroy(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
