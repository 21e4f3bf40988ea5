package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeSessionStore serves canned session records per hash and can be told to
// fail for specific hashes.
type fakeSessionStore struct {
	records map[ProjectHash][]SessionRecord
	fail    map[ProjectHash]bool
}

func (f *fakeSessionStore) ListSessions(_ context.Context, hash ProjectHash) ([]SessionRecord, error) {
	if f.fail[hash] {
		return nil, fmt.Errorf("session store offline for %s", hash.Short())
	}
	return f.records[hash], nil
}

// registerProject creates a live directory, registers it, and backdates
// last_accessed so orderings are deterministic.
func registerProject(t *testing.T, mgr *Manager, base, name string, accessed time.Time) *ProjectStorage {
	t.Helper()

	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
	storage, err := mgr.GetOrCreateProjectStorage(context.Background(), dir)
	if err != nil {
		t.Fatalf("registering %s: %v", name, err)
	}
	meta := storage.Metadata
	meta.LastAccessed = accessed
	if err := mgr.Store().Upsert(meta); err != nil {
		t.Fatalf("backdating %s: %v", name, err)
	}
	storage.Metadata = meta
	return storage
}

func TestCoordinator_ListResumable(t *testing.T) {
	base := t.TempDir()
	mgr := NewManager(filepath.Join(base, "store"))

	registerProject(t, mgr, base, "older", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := registerProject(t, mgr, base, "newer", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))

	sessions := &fakeSessionStore{
		records: map[ProjectHash][]SessionRecord{
			newer.Hash: {
				{SessionID: "s1", ProjectHash: newer.Hash, StartedAt: time.Now(), SizeBytes: 100},
				{SessionID: "s2", ProjectHash: newer.Hash, StartedAt: time.Now(), SizeBytes: 200},
			},
		},
	}

	coord := NewCoordinator(mgr, sessions)
	entries, diags, err := coord.ListResumable(context.Background())
	if err != nil {
		t.Fatalf("ListResumable: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "newer" || entries[1].Name != "older" {
		t.Errorf("expected order [newer older], got [%s %s]", entries[0].Name, entries[1].Name)
	}
	if len(entries[0].Sessions) != 2 {
		t.Errorf("expected 2 sessions for newer, got %d", len(entries[0].Sessions))
	}
	if len(entries[1].Sessions) != 0 || entries[1].SessionsUnavailable {
		t.Errorf("expected older with no sessions and no failure marker, got %+v", entries[1])
	}
	if diags.Skipped.Skipped() != 0 || len(diags.SessionFailures) != 0 {
		t.Errorf("expected clean diagnostics, got %+v", diags)
	}
}

func TestCoordinator_SessionFailureDoesNotDropProject(t *testing.T) {
	base := t.TempDir()
	mgr := NewManager(filepath.Join(base, "store"))

	good := registerProject(t, mgr, base, "good", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	bad := registerProject(t, mgr, base, "bad", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	sessions := &fakeSessionStore{
		records: map[ProjectHash][]SessionRecord{
			good.Hash: {{SessionID: "s1", ProjectHash: good.Hash}},
		},
		fail: map[ProjectHash]bool{bad.Hash: true},
	}

	coord := NewCoordinator(mgr, sessions)
	entries, diags, err := coord.ListResumable(context.Background())
	if err != nil {
		t.Fatalf("ListResumable: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected both projects listed, got %d", len(entries))
	}
	var badEntry *ResumableProject
	for i := range entries {
		if entries[i].Hash == bad.Hash {
			badEntry = &entries[i]
		}
	}
	if badEntry == nil {
		t.Fatal("project with failing session store was dropped from the view")
	}
	if !badEntry.SessionsUnavailable {
		t.Error("expected SessionsUnavailable marker on the failing project")
	}
	if _, ok := diags.SessionFailures[bad.Hash]; !ok {
		t.Error("expected a session failure diagnostic for the failing project")
	}
	if diags.Summary() == "" {
		t.Error("expected a non-empty diagnostics summary")
	}
}

func TestCoordinator_CorruptEntriesReported(t *testing.T) {
	base := t.TempDir()
	mgr := NewManager(filepath.Join(base, "store"))

	registerProject(t, mgr, base, "valid-a", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	registerProject(t, mgr, base, "valid-b", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	writeRawRecord(t, mgr.Root(), HashPath("/corrupt/x"), []byte("junk"))

	coord := NewCoordinator(mgr, &fakeSessionStore{})
	entries, diags, err := coord.ListResumable(context.Background())
	if err != nil {
		t.Fatalf("ListResumable: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 valid entries, got %d", len(entries))
	}
	if diags.Skipped.Corrupt != 1 {
		t.Errorf("expected 1 corrupt entry reported, got %d", diags.Skipped.Corrupt)
	}
}

func TestCoordinator_RootInaccessibleIsFatal(t *testing.T) {
	rootFile := filepath.Join(t.TempDir(), "projects")
	if err := os.WriteFile(rootFile, []byte("x"), 0o644); err != nil {
		t.Fatalf("creating root file: %v", err)
	}

	coord := NewCoordinator(NewManager(rootFile), &fakeSessionStore{})
	_, _, err := coord.ListResumable(context.Background())
	if !errors.Is(err, ErrStorageRootInaccessible) {
		t.Errorf("expected ErrStorageRootInaccessible, got %v", err)
	}
}

func TestCoordinator_ResumeAfterMove(t *testing.T) {
	// The end-to-end shape of the defect fix: register, move the directory,
	// list, resume by hash. No step may need the old or new path.
	base := t.TempDir()
	mgr := NewManager(filepath.Join(base, "store"))

	projectDir := filepath.Join(base, "proj")
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		t.Fatalf("creating project: %v", err)
	}
	storage, err := mgr.GetOrCreateProjectStorage(context.Background(), projectDir)
	if err != nil {
		t.Fatalf("registering: %v", err)
	}
	if err := mgr.RecordSession(storage.Hash); err != nil {
		t.Fatalf("recording session: %v", err)
	}
	recordedPath := storage.Metadata.ProjectPath

	if err := os.Rename(projectDir, filepath.Join(base, "proj-moved")); err != nil {
		t.Fatalf("moving project dir: %v", err)
	}

	coord := NewCoordinator(mgr, &fakeSessionStore{})
	entries, _, err := coord.ListResumable(context.Background())
	if err != nil {
		t.Fatalf("ListResumable after move: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected the moved project listed, got %d entries", len(entries))
	}
	if entries[0].Path != recordedPath {
		t.Errorf("expected stale recorded path %q, got %q", recordedPath, entries[0].Path)
	}
	if entries[0].SessionCount != 1 {
		t.Errorf("expected session_count 1, got %d", entries[0].SessionCount)
	}

	resumed, err := coord.Resume(entries[0].Hash)
	if err != nil {
		t.Fatalf("Resume after move: %v", err)
	}
	if resumed.Metadata.ProjectPath != recordedPath {
		t.Errorf("resume returned path %q, want stored %q", resumed.Metadata.ProjectPath, recordedPath)
	}
	if resumed.Metadata.SessionCount != 1 {
		t.Errorf("resume returned session_count %d, want 1", resumed.Metadata.SessionCount)
	}
}

func TestCoordinator_ResumeUnknownHash(t *testing.T) {
	coord := NewCoordinator(NewManager(t.TempDir()), &fakeSessionStore{})

	_, err := coord.Resume(HashPath("/never/registered"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestBuildResumeInfo(t *testing.T) {
	url := "git@example.com:dev/proj.git"
	storage := &ProjectStorage{
		Hash: HashPath("/home/dev/proj"),
		Dir:  "/data/store/abc",
		Metadata: ProjectMetadata{
			ProjectHash: HashPath("/home/dev/proj"),
			ProjectPath: "/home/dev/proj",
			Name:        "proj",
			GitRemote:   &url,
		},
	}

	info := BuildResumeInfo([]string{"agent", "--continue", "{session}", "--dir", "{path}"}, storage, "sess-9")
	if info == nil {
		t.Fatal("expected resume info, got nil")
	}
	if info.Command != "agent" {
		t.Errorf("expected command 'agent', got %q", info.Command)
	}
	want := []string{"--continue", "sess-9", "--dir", "/home/dev/proj"}
	if len(info.Args) != len(want) {
		t.Fatalf("expected %d args, got %d", len(want), len(info.Args))
	}
	for i, arg := range want {
		if info.Args[i] != arg {
			t.Errorf("arg %d: expected %q, got %q", i, arg, info.Args[i])
		}
	}

	if BuildResumeInfo(nil, storage, "") != nil {
		t.Error("expected nil info for empty template")
	}
}
