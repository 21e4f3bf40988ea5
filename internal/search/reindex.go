package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trusteehq/trustee/internal/applog"
	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/session"
)

// readConcurrency bounds parallel transcript reads during a reindex pass.
// Index writes stay serialized behind a mutex; DuckDB dislikes concurrent
// write transactions on one connection.
const readConcurrency = 4

// ProjectLister enumerates the projects whose transcripts get indexed.
// *checkpoint.Manager satisfies it.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]checkpoint.ProjectSummary, checkpoint.ListDiagnostics, error)
}

// TranscriptReader loads session records and entries for indexing.
// *session.Store satisfies it.
type TranscriptReader interface {
	ListSessions(ctx context.Context, hash checkpoint.ProjectHash) ([]checkpoint.SessionRecord, error)
	ReadSession(ctx context.Context, hash checkpoint.ProjectHash, id string) ([]session.Entry, int, error)
}

// Reindexer keeps the index in sync with the transcripts on disk.
type Reindexer struct {
	index       *Index
	projects    ProjectLister
	transcripts TranscriptReader
	log         *applog.Logger

	writeMu sync.Mutex
}

// NewReindexer wires an index to its transcript sources.
func NewReindexer(index *Index, projects ProjectLister, transcripts TranscriptReader) *Reindexer {
	return &Reindexer{
		index:       index,
		projects:    projects,
		transcripts: transcripts,
		log:         applog.Log,
	}
}

// SetLogger replaces the reindexer's logger.
func (r *Reindexer) SetLogger(l *applog.Logger) { r.log = l }

// Summary reports what a reindex pass did.
type Summary struct {
	Projects int `json:"projects"`
	Indexed  int `json:"indexed"`
	Skipped  int `json:"skipped"` // up to date, left alone
	Pruned   int `json:"pruned"`  // removed from index, transcript gone
	Failed   int `json:"failed"`
}

// ReindexAll walks every project and brings the index up to date. Sessions
// whose transcript size matches the indexed size are skipped; indexed
// sessions whose transcript disappeared are pruned. Per-session failures
// are logged and counted, never fatal.
func (r *Reindexer) ReindexAll(ctx context.Context) (Summary, error) {
	start := time.Now()
	defer r.log.Timed("reindex all")()

	projects, _, err := r.projects.ListProjects(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list projects for reindex: %w", err)
	}

	var (
		mu      sync.Mutex
		summary Summary
	)
	summary.Projects = len(projects)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readConcurrency)

	for _, p := range projects {
		g.Go(func() error {
			s, err := r.reindexProject(gctx, p)
			mu.Lock()
			summary.Indexed += s.Indexed
			summary.Skipped += s.Skipped
			summary.Pruned += s.Pruned
			summary.Failed += s.Failed
			if err != nil {
				summary.Failed++
			}
			mu.Unlock()
			if err != nil {
				r.log.Warn("reindex project failed", "hash", p.Hash.Short(), "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	reindexDurationSeconds.Observe(time.Since(start).Seconds())
	r.log.Info("reindex complete",
		"projects", summary.Projects, "indexed", summary.Indexed,
		"skipped", summary.Skipped, "pruned", summary.Pruned, "failed", summary.Failed)
	return summary, nil
}

// ReindexProject refreshes one project's sessions by hash. Used by the
// watcher when transcripts under a single project change.
func (r *Reindexer) ReindexProject(ctx context.Context, hash checkpoint.ProjectHash) (Summary, error) {
	projects, _, err := r.projects.ListProjects(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list projects for reindex: %w", err)
	}
	for _, p := range projects {
		if p.Hash == hash {
			s, err := r.reindexProject(ctx, p)
			s.Projects = 1
			return s, err
		}
	}
	return Summary{}, fmt.Errorf("%w: project %s", checkpoint.ErrNotFound, hash.Short())
}

func (r *Reindexer) reindexProject(ctx context.Context, p checkpoint.ProjectSummary) (Summary, error) {
	var summary Summary

	records, err := r.transcripts.ListSessions(ctx, p.Hash)
	if err != nil {
		return summary, fmt.Errorf("list sessions: %w", err)
	}

	live := make(map[string]bool, len(records))
	for _, rec := range records {
		live[rec.SessionID] = true

		indexed, err := r.index.IndexedSize(ctx, rec.SessionID)
		if err != nil {
			return summary, err
		}
		if indexed == rec.SizeBytes {
			summary.Skipped++
			continue
		}

		entries, _, err := r.transcripts.ReadSession(ctx, p.Hash, rec.SessionID)
		if err != nil {
			summary.Failed++
			r.log.Warn("reindex: unreadable transcript", "session", rec.SessionID, "error", err)
			continue
		}

		r.writeMu.Lock()
		err = r.index.UpsertSession(ctx, rec, p.Name, entries)
		r.writeMu.Unlock()
		if err != nil {
			summary.Failed++
			r.log.Warn("reindex: index write failed", "session", rec.SessionID, "error", err)
			continue
		}
		summary.Indexed++
		sessionsIndexedTotal.Inc()
	}

	// Prune index rows for transcripts that no longer exist.
	indexedIDs, err := r.index.SessionsForProject(ctx, p.Hash)
	if err != nil {
		return summary, err
	}
	for _, id := range indexedIDs {
		if live[id] {
			continue
		}
		r.writeMu.Lock()
		err := r.index.DeleteSession(ctx, id)
		r.writeMu.Unlock()
		if err != nil {
			summary.Failed++
			r.log.Warn("reindex: prune failed", "session", id, "error", err)
			continue
		}
		summary.Pruned++
	}

	return summary, nil
}
