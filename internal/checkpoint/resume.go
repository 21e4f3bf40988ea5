package checkpoint

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/trusteehq/trustee/internal/applog"
)

// SessionLister is the coordinator's view of the session store: everything it
// needs is "which sessions belong to this hash". The session store's file
// formats and internals stay on the other side of this boundary.
type SessionLister interface {
	ListSessions(ctx context.Context, hash ProjectHash) ([]SessionRecord, error)
}

// ResumableProject is one entry of the resume view: a project summary plus
// its sessions, or a marker that the sessions could not be listed. A project
// is never dropped because its session listing failed.
type ResumableProject struct {
	ProjectSummary
	Sessions            []SessionRecord `json:"sessions,omitempty"`
	SessionsUnavailable bool            `json:"sessions_unavailable,omitempty"`
}

// ResumeDiagnostics accompanies a resume view: entries skipped during
// enumeration plus per-project session-listing failures. All of it is
// advisory; the view itself succeeded.
type ResumeDiagnostics struct {
	Skipped         ListDiagnostics        `json:"skipped"`
	SessionFailures map[ProjectHash]string `json:"session_failures,omitempty"`
}

// Summary renders a one-line account of what the view had to leave out,
// or "" when nothing was skipped.
func (d ResumeDiagnostics) Summary() string {
	var parts []string
	if n := d.Skipped.Skipped(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable or corrupt entries skipped", n))
	}
	if len(d.SessionFailures) > 0 {
		parts = append(parts, fmt.Sprintf("sessions unavailable for %d projects", len(d.SessionFailures)))
	}
	return strings.Join(parts, "; ")
}

// sessionListLimit bounds concurrent session-store scans during a resume
// listing.
const sessionListLimit = 8

// Coordinator produces the resumable view of the whole store: every known
// project joined with its sessions, tolerant of per-entry failure. The only
// fatal condition is the storage root being inaccessible.
type Coordinator struct {
	manager  *Manager
	sessions SessionLister
	log      *applog.Logger
}

// NewCoordinator returns a coordinator over the manager and session store.
func NewCoordinator(manager *Manager, sessions SessionLister) *Coordinator {
	return &Coordinator{
		manager:  manager,
		sessions: sessions,
		log:      applog.Log,
	}
}

// SetLogger replaces the coordinator's logger.
func (c *Coordinator) SetLogger(l *applog.Logger) { c.log = l }

// Manager exposes the underlying storage manager.
func (c *Coordinator) Manager() *Manager { return c.manager }

// ListResumable enumerates every valid project, newest last_accessed first,
// each joined with its sessions. A project whose session listing fails is
// included with SessionsUnavailable set and the failure recorded in the
// diagnostics; enumeration skips are carried over from ListProjects. Nothing
// here resolves or stats any project's recorded path.
func (c *Coordinator) ListResumable(ctx context.Context) ([]ResumableProject, ResumeDiagnostics, error) {
	summaries, skipped, err := c.manager.ListProjects(ctx)
	diags := ResumeDiagnostics{Skipped: skipped}
	if err != nil {
		return nil, diags, err
	}

	entries := make([]ResumableProject, len(summaries))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sessionListLimit)
	for i, summary := range summaries {
		g.Go(func() error {
			entry := ResumableProject{ProjectSummary: summary}
			if c.sessions != nil {
				records, err := c.sessions.ListSessions(gctx, summary.Hash)
				if err != nil {
					entry.SessionsUnavailable = true
					mu.Lock()
					if diags.SessionFailures == nil {
						diags.SessionFailures = make(map[ProjectHash]string)
					}
					diags.SessionFailures[summary.Hash] = err.Error()
					mu.Unlock()
					c.log.Warn("sessions unavailable", "hash", summary.Hash.Short(), "error", err)
				} else {
					entry.Sessions = records
				}
			}
			entries[i] = entry
			return nil
		})
	}
	g.Wait() // goroutines record failures instead of returning them

	if err := ctx.Err(); err != nil {
		return nil, diags, err
	}
	return entries, diags, nil
}

// Resume resolves a previously listed project by its hash and marks the
// access. Strictly identifier-based: a stale recorded path does not matter
// here, and never will — only registering a brand-new project needs a live
// path.
func (c *Coordinator) Resume(hash ProjectHash) (*ProjectStorage, error) {
	storage, err := c.manager.GetProjectStorageByHash(hash)
	if err != nil {
		return nil, err
	}
	c.manager.Touch(hash)
	return storage, nil
}

// ResumeInfo describes how to hand a resumed project to the agent process:
// the command to run, assembled from the configured template, plus the
// working directory when the recorded path is still live.
type ResumeInfo struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
	Dir     string   `json:"dir,omitempty"`
}

// BuildResumeInfo expands a command template against a resumed project.
// Placeholders: {hash}, {dir} (storage dir), {path} (recorded project path),
// {session} (session id, may be empty). An empty template yields nil: the
// caller falls back to printing the resume context.
func BuildResumeInfo(template []string, storage *ProjectStorage, sessionID string) *ResumeInfo {
	if len(template) == 0 {
		return nil
	}
	expand := func(s string) string {
		s = strings.ReplaceAll(s, "{hash}", string(storage.Hash))
		s = strings.ReplaceAll(s, "{dir}", storage.Dir)
		s = strings.ReplaceAll(s, "{path}", storage.Metadata.ProjectPath)
		s = strings.ReplaceAll(s, "{session}", sessionID)
		return s
	}
	info := &ResumeInfo{Command: expand(template[0])}
	for _, arg := range template[1:] {
		info.Args = append(info.Args, expand(arg))
	}
	return info
}
