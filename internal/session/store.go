package session

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/trusteehq/trustee/internal/applog"
	"github.com/trusteehq/trustee/internal/checkpoint"
)

// sessionExt is the transcript filename extension.
const sessionExt = ".jsonl"

// maxLineBytes bounds a single transcript line; tool output can get large.
const maxLineBytes = 10 * 1024 * 1024

// Store reads and writes session transcripts under a storage root. It shares
// the root with the checkpoint manager but owns everything below
// <root>/<hash>/sessions/ exclusively.
type Store struct {
	root string
	log  *applog.Logger
}

// NewStore returns a session store over the given storage root.
func NewStore(root string) *Store {
	return &Store{root: root, log: applog.Log}
}

// SetLogger replaces the store's logger.
func (s *Store) SetLogger(l *applog.Logger) { s.log = l }

// SessionsDir returns the transcript directory for a project.
func (s *Store) SessionsDir(hash checkpoint.ProjectHash) string {
	return filepath.Join(s.root, string(hash), "sessions")
}

// SessionPath returns the transcript file for a session id.
func (s *Store) SessionPath(hash checkpoint.ProjectHash, id string) string {
	return filepath.Join(s.SessionsDir(hash), id+sessionExt)
}

// ListSessions returns a record for every readable transcript of the project,
// newest started_at first. A project with no sessions directory simply has no
// sessions. One unreadable transcript is skipped (and logged), not fatal —
// the same per-entry tolerance the checkpoint listing applies to records.
//
// Satisfies checkpoint.SessionLister.
func (s *Store) ListSessions(ctx context.Context, hash checkpoint.ProjectHash) ([]checkpoint.SessionRecord, error) {
	dir := s.SessionsDir(hash)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list sessions for %s: %w", hash.Short(), err)
	}

	var records []checkpoint.SessionRecord
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sessionExt) {
			continue
		}

		record, err := s.describeSession(hash, entry.Name())
		if err != nil {
			s.log.Warn("skipping unreadable session", "hash", hash.Short(), "file", entry.Name(), "error", err)
			continue
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].StartedAt.Equal(records[j].StartedAt) {
			return records[i].StartedAt.After(records[j].StartedAt)
		}
		return records[i].SessionID < records[j].SessionID
	})
	return records, nil
}

// describeSession derives a SessionRecord from a transcript file without
// materializing the entries: started_at comes from the first entry (file
// mtime when the transcript is empty), ended_at from a trailing end marker.
func (s *Store) describeSession(hash checkpoint.ProjectHash, filename string) (checkpoint.SessionRecord, error) {
	path := filepath.Join(s.SessionsDir(hash), filename)

	info, err := os.Stat(path)
	if err != nil {
		return checkpoint.SessionRecord{}, err
	}

	record := checkpoint.SessionRecord{
		SessionID:   strings.TrimSuffix(filename, sessionExt),
		ProjectHash: hash,
		StartedAt:   info.ModTime().UTC(),
		SizeBytes:   info.Size(),
	}

	f, err := os.Open(path)
	if err != nil {
		return checkpoint.SessionRecord{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	first := true
	var last Entry
	var sawEntry bool
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			// Tolerate individual mangled lines; the transcript as a
			// whole still counts.
			continue
		}
		if first {
			if !e.At.IsZero() {
				record.StartedAt = e.At
			}
			first = false
		}
		last = e
		sawEntry = true
	}
	if err := scanner.Err(); err != nil {
		return checkpoint.SessionRecord{}, err
	}

	if sawEntry && last.IsEndMarker() && !last.At.IsZero() {
		ended := last.At
		record.EndedAt = &ended
	}
	return record, nil
}

// ReadSession returns all entries of a transcript in order. Mangled lines
// are skipped and counted; a missing transcript is checkpoint.ErrNotFound.
func (s *Store) ReadSession(ctx context.Context, hash checkpoint.ProjectHash, id string) ([]Entry, int, error) {
	f, err := os.Open(s.SessionPath(hash, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: session %s", checkpoint.ErrNotFound, id)
		}
		return nil, 0, fmt.Errorf("open session %s: %w", id, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		entries []Entry
		skipped int
	)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("read session %s: %w", id, err)
	}
	return entries, skipped, nil
}
