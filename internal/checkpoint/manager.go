package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/trusteehq/trustee/internal/applog"
)

// RemoteDiscoverer reports the VCS remote URL for a live project directory.
// Registration consults it best-effort; a project without a repository or
// remote is simply recorded with none.
type RemoteDiscoverer interface {
	Discover(path string) (url string, ok bool)
}

// Manager orchestrates per-project checkpoint storage under one explicit
// root. It is the only writer of metadata records; reads go through the same
// store. Construct one per storage root and thread it through callers —
// there is no package-level instance, so tests run against disposable roots.
//
// The two lookup paths have different contracts: registration
// (GetOrCreateProjectStorage) derives identity from a live path and can fail
// on path resolution; lookup by hash (GetProjectStorageByHash) treats the
// hash as an opaque key and never inspects the recorded path.
type Manager struct {
	store  *MetadataStore
	log    *applog.Logger
	remote RemoteDiscoverer
	cache  listCache
}

// NewManager returns a manager over the storage root directory.
func NewManager(root string) *Manager {
	return &Manager{
		store: NewMetadataStore(root),
		log:   applog.Log,
	}
}

// Store exposes the underlying metadata store (used by tests and diagnostics).
func (m *Manager) Store() *MetadataStore { return m.store }

// Root returns the storage root directory.
func (m *Manager) Root() string { return m.store.Root() }

// SetLogger replaces the manager's logger.
func (m *Manager) SetLogger(l *applog.Logger) { m.log = l }

// SetRemoteDiscoverer wires a VCS remote source used at registration time.
func (m *Manager) SetRemoteDiscoverer(d RemoteDiscoverer) { m.remote = d }

// SetCacheTTL enables list caching with the given time-to-live. Zero
// disables caching (the default).
func (m *Manager) SetCacheTTL(d time.Duration) { m.cache.setTTL(d) }

// ResetCache drops any cached list result, forcing the next ListProjects to
// rescan the root.
func (m *Manager) ResetCache() { m.cache.reset() }

// GetOrCreateProjectStorage registers the project at originalPath, or loads
// it if a record already exists. The path is canonicalized and hashed here —
// and only here: this is the single place identity is ever derived from the
// filesystem.
//
// For a brand-new project the path must resolve; failures surface as
// ErrPathNotFound or ErrPermissionDenied and leave no record behind. An
// existing record is returned with last_accessed freshened best-effort.
// A corrupt record is never silently overwritten; the caller gets
// ErrCorruptEntry and repair stays an explicit, external act.
func (m *Manager) GetOrCreateProjectStorage(ctx context.Context, originalPath string) (*ProjectStorage, error) {
	canonical, err := CanonicalizePath(originalPath)
	if err != nil {
		return nil, err
	}
	hash := HashPath(canonical)

	meta, err := m.store.Load(hash)
	switch {
	case err == nil:
		m.Touch(hash)
		meta.LastAccessed = time.Now().UTC()
		return &ProjectStorage{Hash: hash, Dir: m.store.ProjectDir(hash), Metadata: meta}, nil

	case errors.Is(err, ErrNotFound):
		now := time.Now().UTC()
		meta = ProjectMetadata{
			ProjectHash:  hash,
			ProjectPath:  canonical,
			Name:         filepath.Base(canonical),
			CreatedAt:    now,
			LastAccessed: now,
		}
		if m.remote != nil {
			if url, ok := m.remote.Discover(canonical); ok {
				meta.GitRemote = &url
			}
		}
		if err := m.store.Upsert(meta); err != nil {
			return nil, fmt.Errorf("register %s: %w", canonical, err)
		}
		projectsCreatedTotal.Inc()
		m.cache.reset()
		m.log.Info("project registered", "hash", hash.Short(), "path", canonical)
		return &ProjectStorage{Hash: hash, Dir: m.store.ProjectDir(hash), Metadata: meta}, nil

	default:
		// Corrupt or unreadable record for this path's hash.
		return nil, err
	}
}

// GetProjectStorageByHash loads a registered project by identifier alone.
// It never canonicalizes, stats, or otherwise touches the recorded
// project_path — a project whose directory has been moved or deleted is
// still fully resolvable here. Fails with ErrNotFound or ErrCorruptEntry
// (or ErrIOFailure on a read fault).
func (m *Manager) GetProjectStorageByHash(hash ProjectHash) (*ProjectStorage, error) {
	if !hash.Valid() {
		lookupsTotal.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("%w: malformed hash %q", ErrNotFound, hash)
	}

	meta, err := m.store.Load(hash)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			lookupsTotal.WithLabelValues("not_found").Inc()
		case errors.Is(err, ErrCorruptEntry):
			lookupsTotal.WithLabelValues("corrupt").Inc()
		default:
			lookupsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	lookupsTotal.WithLabelValues("ok").Inc()
	resumesTotal.Inc()
	return &ProjectStorage{Hash: hash, Dir: m.store.ProjectDir(hash), Metadata: meta}, nil
}

// Touch bumps last_accessed for hash, best-effort. Failures are logged and
// swallowed: access tracking is advisory telemetry and must never break a
// resume. Concurrent touches are safe — each write is atomic, last writer
// wins.
func (m *Manager) Touch(hash ProjectHash) {
	meta, err := m.store.Load(hash)
	if err != nil {
		touchFailuresTotal.Inc()
		m.log.Warn("touch skipped", "hash", hash.Short(), "error", err)
		return
	}
	meta.LastAccessed = time.Now().UTC()
	if err := m.store.Upsert(meta); err != nil {
		touchFailuresTotal.Inc()
		m.log.Warn("touch failed", "hash", hash.Short(), "error", err)
		return
	}
	m.cache.reset()
}

// RecordSession increments session_count and bumps last_accessed for hash.
// Called when a new work session starts in a registered project.
func (m *Manager) RecordSession(hash ProjectHash) error {
	meta, err := m.store.Load(hash)
	if err != nil {
		return err
	}
	meta.SessionCount++
	meta.LastAccessed = time.Now().UTC()
	if err := m.store.Upsert(meta); err != nil {
		return err
	}
	m.cache.reset()
	return nil
}

// AddUsage adds delta bytes to the project's recorded storage footprint.
func (m *Manager) AddUsage(hash ProjectHash, delta int64) error {
	meta, err := m.store.Load(hash)
	if err != nil {
		return err
	}
	meta.SizeBytes += delta
	if meta.SizeBytes < 0 {
		meta.SizeBytes = 0
	}
	if err := m.store.Upsert(meta); err != nil {
		return err
	}
	m.cache.reset()
	return nil
}

// ProjectSummary is one row of a project listing, built purely from the
// stored record. Nothing here reflects whether the recorded path still
// exists; liveness is the caller's (display-level) concern.
type ProjectSummary struct {
	Hash         ProjectHash `json:"hash"`
	Name         string      `json:"name"`
	Path         string      `json:"path"`
	CreatedAt    time.Time   `json:"created_at"`
	LastAccessed time.Time   `json:"last_accessed"`
	SessionCount int         `json:"session_count"`
	SizeBytes    int64       `json:"size_bytes"`
	GitRemote    string      `json:"git_remote,omitempty"`
}

func summarize(meta ProjectMetadata) ProjectSummary {
	s := ProjectSummary{
		Hash:         meta.ProjectHash,
		Name:         meta.Name,
		Path:         meta.ProjectPath,
		CreatedAt:    meta.CreatedAt,
		LastAccessed: meta.LastAccessed,
		SessionCount: meta.SessionCount,
		SizeBytes:    meta.SizeBytes,
	}
	if meta.GitRemote != nil {
		s.GitRemote = *meta.GitRemote
	}
	return s
}

// ListDiagnostics counts entries skipped during enumeration. Skips are
// normal operation over an aging storage root, not errors: the listing that
// carries them succeeded.
type ListDiagnostics struct {
	Corrupt    int      `json:"corrupt"`
	Unreadable int      `json:"unreadable"`
	Details    []string `json:"details,omitempty"`
}

// Skipped returns the total number of entries excluded from a listing.
func (d ListDiagnostics) Skipped() int { return d.Corrupt + d.Unreadable }

// ListProjects returns a summary for every valid record under the root,
// ordered by last_accessed descending (name ascending on ties). Corrupt or
// unreadable entries are skipped and counted in the diagnostics — one bad
// record never aborts the listing. The only error returned is the storage
// root itself being inaccessible, or ctx cancellation.
func (m *Manager) ListProjects(ctx context.Context) ([]ProjectSummary, ListDiagnostics, error) {
	if summaries, diags, ok := m.cache.get(); ok {
		return summaries, diags, nil
	}

	defer m.log.Timed("list projects")()
	start := time.Now()

	var (
		summaries []ProjectSummary
		diags     ListDiagnostics
	)
	for rec := range m.store.List() {
		if err := ctx.Err(); err != nil {
			return nil, diags, err
		}

		if rec.Err != nil {
			if errors.Is(rec.Err, ErrStorageRootInaccessible) {
				return nil, diags, rec.Err
			}
			diags.Unreadable++
			diags.Details = append(diags.Details, rec.Err.Error())
			entriesSkippedTotal.WithLabelValues("unreadable").Inc()
			m.log.Warn("skipping unreadable entry", "hash", rec.Hash.Short(), "error", rec.Err)
			continue
		}

		meta, err := m.store.DecodeRecord(rec.Hash, rec.Raw)
		if err != nil {
			diags.Corrupt++
			diags.Details = append(diags.Details, err.Error())
			entriesSkippedTotal.WithLabelValues("corrupt").Inc()
			m.log.Warn("skipping corrupt entry", "hash", rec.Hash.Short(), "error", err)
			continue
		}

		summaries = append(summaries, summarize(meta))
	}

	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].LastAccessed.Equal(summaries[j].LastAccessed) {
			return summaries[i].LastAccessed.After(summaries[j].LastAccessed)
		}
		return summaries[i].Name < summaries[j].Name
	})

	listDurationSeconds.Observe(time.Since(start).Seconds())
	m.cache.set(summaries, diags)
	return summaries, diags, nil
}
