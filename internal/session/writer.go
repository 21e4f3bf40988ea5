package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/trusteehq/trustee/internal/checkpoint"
)

// Writer appends entries to one session transcript. Transcripts are
// append-only; there is no rewrite path, so a crash costs at most the
// buffered tail of the file.
type Writer struct {
	id    string
	hash  checkpoint.ProjectHash
	path  string
	f     *os.File
	buf   *bufio.Writer
	bytes int64
	done  bool
}

// StartSession creates a new transcript for the project and returns its
// writer. An empty id gets a generated UUID. Refuses to overwrite an
// existing transcript.
func (s *Store) StartSession(hash checkpoint.ProjectHash, id string) (*Writer, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := os.MkdirAll(s.SessionsDir(hash), 0o755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}

	path := s.SessionPath(hash, id)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}

	return &Writer{
		id:   id,
		hash: hash,
		path: path,
		f:    f,
		buf:  bufio.NewWriter(f),
	}, nil
}

// ID returns the session id.
func (w *Writer) ID() string { return w.id }

// Bytes returns the number of transcript bytes written so far.
func (w *Writer) Bytes() int64 { return w.bytes }

// Append writes one entry as a JSONL line. A zero timestamp is filled with
// the current time.
func (w *Writer) Append(e Entry) error {
	if w.done {
		return fmt.Errorf("session %s already closed", w.id)
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	line = append(line, '\n')

	n, err := w.buf.Write(line)
	w.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("append to session %s: %w", w.id, err)
	}
	return nil
}

// Close appends the end marker, flushes, and syncs the transcript. Safe to
// call once; subsequent appends fail.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	endErr := func() error {
		line, err := json.Marshal(Entry{Role: RoleSystem, Text: endMarkerText, At: time.Now().UTC()})
		if err != nil {
			return err
		}
		n, err := w.buf.Write(append(line, '\n'))
		w.bytes += int64(n)
		return err
	}()

	if err := w.buf.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("flush session %s: %w", w.id, err)
	}
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("sync session %s: %w", w.id, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close session %s: %w", w.id, err)
	}
	return endErr
}

// ImportSession ingests an existing transcript file into the project's
// storage as a new session: valid entry lines are copied, anything else is
// counted and dropped. Returns the new session's record and the number of
// skipped lines.
func (s *Store) ImportSession(ctx context.Context, hash checkpoint.ProjectHash, srcPath string) (checkpoint.SessionRecord, int, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return checkpoint.SessionRecord{}, 0, fmt.Errorf("open transcript: %w", err)
	}
	defer src.Close()

	w, err := s.StartSession(hash, "")
	if err != nil {
		return checkpoint.SessionRecord{}, 0, err
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	skipped := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			w.Close()
			return checkpoint.SessionRecord{}, skipped, err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil || e.Role == "" {
			skipped++
			continue
		}
		if e.IsEndMarker() {
			// Close writes its own marker.
			continue
		}
		if err := w.Append(e); err != nil {
			w.Close()
			return checkpoint.SessionRecord{}, skipped, err
		}
	}
	if err := scanner.Err(); err != nil {
		w.Close()
		return checkpoint.SessionRecord{}, skipped, fmt.Errorf("read transcript: %w", err)
	}
	if err := w.Close(); err != nil {
		return checkpoint.SessionRecord{}, skipped, err
	}

	record, err := s.describeSession(hash, w.ID()+sessionExt)
	if err != nil {
		return checkpoint.SessionRecord{}, skipped, fmt.Errorf("describe imported session: %w", err)
	}
	return record, skipped, nil
}
