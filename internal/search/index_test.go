package search_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/search"
	"github.com/trusteehq/trustee/internal/session"
)

func openTestIndex(t *testing.T) *search.Index {
	t.Helper()
	ix, err := search.Open(filepath.Join(t.TempDir(), "index.duckdb"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func record(sessionID string, hash checkpoint.ProjectHash, size int64) checkpoint.SessionRecord {
	return checkpoint.SessionRecord{
		SessionID:   sessionID,
		ProjectHash: hash,
		StartedAt:   time.Now().UTC(),
		SizeBytes:   size,
	}
}

func TestIndexUpsertAndQuery(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	hash := checkpoint.HashPath("/home/dev/api")

	entries := []session.Entry{
		{Role: session.RoleUser, Text: "the deploy script times out", At: time.Now().UTC()},
		{Role: session.RoleAssistant, Text: "raise the timeout in deploy.sh", At: time.Now().UTC()},
	}
	if err := ix.UpsertSession(ctx, record("sess-1", hash, 128), "api", entries); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	opts := search.DefaultOptions()
	opts.Query = "timeout"
	results, total, err := ix.Query(ctx, opts)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != 2 || len(results) != 1 {
		t.Fatalf("expected 2 matches in one session, got total=%d sessions=%d", total, len(results))
	}
	got := results[0]
	if got.SessionID != "sess-1" || got.ProjectName != "api" {
		t.Errorf("unexpected session result: %+v", got)
	}
	for _, m := range got.Matches {
		if m.Preview[m.MatchStart:m.MatchEnd] == "" {
			t.Errorf("match offsets empty in preview %q", m.Preview)
		}
	}
}

func TestIndexUpsertReplacesEntries(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	hash := checkpoint.HashPath("/home/dev/api")

	first := []session.Entry{{Role: session.RoleUser, Text: "old text", At: time.Now().UTC()}}
	if err := ix.UpsertSession(ctx, record("sess-1", hash, 10), "api", first); err != nil {
		t.Fatal(err)
	}

	second := []session.Entry{{Role: session.RoleUser, Text: "new text", At: time.Now().UTC()}}
	if err := ix.UpsertSession(ctx, record("sess-1", hash, 20), "api", second); err != nil {
		t.Fatal(err)
	}

	opts := search.DefaultOptions()
	opts.Query = "old text"
	_, total, err := ix.Query(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("stale entries survived the upsert: %d matches", total)
	}

	size, err := ix.IndexedSize(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if size != 20 {
		t.Errorf("IndexedSize = %d, want 20", size)
	}
}

func TestIndexQueryProjectFilter(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	hashA := checkpoint.HashPath("/home/dev/a")
	hashB := checkpoint.HashPath("/home/dev/b")

	entry := []session.Entry{{Role: session.RoleUser, Text: "shared keyword", At: time.Now().UTC()}}
	if err := ix.UpsertSession(ctx, record("sess-a", hashA, 1), "a", entry); err != nil {
		t.Fatal(err)
	}
	if err := ix.UpsertSession(ctx, record("sess-b", hashB, 1), "b", entry); err != nil {
		t.Fatal(err)
	}

	opts := search.DefaultOptions()
	opts.Query = "shared keyword"
	opts.ProjectHash = hashA
	results, _, err := ix.Query(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].SessionID != "sess-a" {
		t.Errorf("project filter leaked results: %+v", results)
	}
}

func TestIndexQueryLimitPerSession(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	hash := checkpoint.HashPath("/home/dev/api")

	var entries []session.Entry
	for i := 0; i < 10; i++ {
		entries = append(entries, session.Entry{
			Role: session.RoleUser,
			Text: fmt.Sprintf("repeated phrase %d", i),
			At:   time.Now().UTC(),
		})
	}
	if err := ix.UpsertSession(ctx, record("sess-1", hash, 1), "api", entries); err != nil {
		t.Fatal(err)
	}

	opts := search.DefaultOptions()
	opts.Query = "repeated phrase"
	results, _, err := ix.Query(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one session, got %d", len(results))
	}
	if len(results[0].Matches) != opts.LimitPerSession {
		t.Errorf("got %d matches, want per-session cap of %d",
			len(results[0].Matches), opts.LimitPerSession)
	}
}

func TestIndexQueryEmpty(t *testing.T) {
	ix := openTestIndex(t)

	opts := search.DefaultOptions()
	if _, _, err := ix.Query(context.Background(), opts); err == nil {
		t.Error("empty query should be rejected")
	}
}

func TestIndexDeleteSession(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	hash := checkpoint.HashPath("/home/dev/api")

	entry := []session.Entry{{Role: session.RoleUser, Text: "ephemeral", At: time.Now().UTC()}}
	if err := ix.UpsertSession(ctx, record("sess-1", hash, 1), "api", entry); err != nil {
		t.Fatal(err)
	}
	if err := ix.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatal(err)
	}

	size, err := ix.IndexedSize(ctx, "sess-1")
	if err != nil {
		t.Fatal(err)
	}
	if size != -1 {
		t.Errorf("deleted session still indexed, size=%d", size)
	}

	ids, err := ix.SessionsForProject(ctx, hash)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("SessionsForProject after delete: %v", ids)
	}
}

func TestIndexStats(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	hash := checkpoint.HashPath("/home/dev/api")

	entries := []session.Entry{
		{Role: session.RoleUser, Text: "one", At: time.Now().UTC()},
		{Role: session.RoleAssistant, Text: "two", At: time.Now().UTC()},
	}
	if err := ix.UpsertSession(ctx, record("sess-1", hash, 1), "api", entries); err != nil {
		t.Fatal(err)
	}

	stats, err := ix.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Sessions != 1 || stats.Entries != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Path != ix.Path() {
		t.Errorf("stats path %q, want %q", stats.Path, ix.Path())
	}
}
