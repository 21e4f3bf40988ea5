package checkpoint

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeRawRecord plants raw bytes as the metadata record for hash, creating
// the project directory if needed.
func writeRawRecord(t *testing.T, root string, hash ProjectHash, raw []byte) {
	t.Helper()

	dir := filepath.Join(root, string(hash))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("creating project dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), raw, 0o644); err != nil {
		t.Fatalf("writing record: %v", err)
	}
}

// storeWith seeds a store with n valid records and returns their hashes.
func storeWith(t *testing.T, root string, n int) (*MetadataStore, []ProjectHash) {
	t.Helper()

	store := NewMetadataStore(root)
	hashes := make([]ProjectHash, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join("/home/dev", "project"+string(rune('a'+i)))
		meta := validMetadata()
		meta.ProjectHash = HashPath(path)
		meta.ProjectPath = path
		meta.Name = filepath.Base(path)
		if err := store.Upsert(meta); err != nil {
			t.Fatalf("seeding record %d: %v", i, err)
		}
		hashes = append(hashes, meta.ProjectHash)
	}
	return store, hashes
}

func TestMetadataStore_UpsertLoad(t *testing.T) {
	store := NewMetadataStore(filepath.Join(t.TempDir(), "projects"))

	meta := validMetadata()
	url := "https://example.com/dev/project.git"
	meta.GitRemote = &url

	if err := store.Upsert(meta); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.Load(meta.ProjectHash)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ProjectPath != meta.ProjectPath {
		t.Errorf("expected path %q, got %q", meta.ProjectPath, got.ProjectPath)
	}
	if got.Name != meta.Name {
		t.Errorf("expected name %q, got %q", meta.Name, got.Name)
	}
	if !got.CreatedAt.Equal(meta.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", meta.CreatedAt, got.CreatedAt)
	}
	if got.SessionCount != meta.SessionCount {
		t.Errorf("expected session_count %d, got %d", meta.SessionCount, got.SessionCount)
	}
	if got.GitRemote == nil || *got.GitRemote != url {
		t.Errorf("expected git_remote %q, got %v", url, got.GitRemote)
	}
}

func TestMetadataStore_UpsertRejectsInvalid(t *testing.T) {
	store := NewMetadataStore(t.TempDir())

	meta := validMetadata()
	meta.SessionCount = -1
	if err := store.Upsert(meta); err == nil {
		t.Fatal("expected error writing invalid record, got nil")
	}
}

func TestMetadataStore_UpsertLeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	store := NewMetadataStore(root)
	meta := validMetadata()

	for i := 0; i < 3; i++ {
		meta.SessionCount = i
		if err := store.Upsert(meta); err != nil {
			t.Fatalf("Upsert %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(root, string(meta.ProjectHash)))
	if err != nil {
		t.Fatalf("reading project dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "metadata.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("expected only metadata.json, got %v", names)
	}
}

func TestMetadataStore_RecordFieldNames(t *testing.T) {
	// The on-disk field names are a compatibility contract.
	root := t.TempDir()
	store := NewMetadataStore(root)
	meta := validMetadata()
	if err := store.Upsert(meta); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(root, string(meta.ProjectHash), "metadata.json"))
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("parsing record: %v", err)
	}
	for _, name := range []string{
		"project_hash", "project_path", "name", "created_at",
		"last_accessed", "session_count", "size_bytes", "git_remote",
	} {
		if _, ok := fields[name]; !ok {
			t.Errorf("record missing field %q", name)
		}
	}
	if string(fields["git_remote"]) != "null" {
		t.Errorf("expected unset git_remote serialized as null, got %s", fields["git_remote"])
	}
}

func TestMetadataStore_LoadNotFound(t *testing.T) {
	store := NewMetadataStore(t.TempDir())

	_, err := store.Load(HashPath("/never/registered"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMetadataStore_LoadCorrupt(t *testing.T) {
	invalid := validMetadata()
	invalid.SessionCount = -5
	invalidRaw, _ := json.Marshal(invalid)

	mismatched := validMetadata()
	mismatchedRaw, _ := json.Marshal(mismatched)

	tests := []struct {
		name string
		raw  []byte
		hash ProjectHash
	}{
		{"garbage bytes", []byte("{not json at all"), HashPath("/a")},
		{"truncated json", []byte(`{"project_hash": "`), HashPath("/b")},
		{"fails validation", invalidRaw, invalid.ProjectHash},
		{"hash mismatch", mismatchedRaw, HashPath("/somewhere/else")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeRawRecord(t, root, tt.hash, tt.raw)

			_, err := NewMetadataStore(root).Load(tt.hash)
			if !errors.Is(err, ErrCorruptEntry) {
				t.Errorf("expected ErrCorruptEntry, got %v", err)
			}
		})
	}
}

func TestMetadataStore_List(t *testing.T) {
	root := t.TempDir()
	store, hashes := storeWith(t, root, 3)

	// Entries that enumeration must ignore entirely.
	if err := os.MkdirAll(filepath.Join(root, "not-a-hash"), 0o755); err != nil {
		t.Fatalf("creating decoy dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("creating decoy file: %v", err)
	}

	// A hash-named directory missing its record yields a per-entry error.
	empty := HashPath("/home/dev/empty")
	if err := os.MkdirAll(filepath.Join(root, string(empty)), 0o755); err != nil {
		t.Fatalf("creating recordless dir: %v", err)
	}

	seen := make(map[ProjectHash]bool)
	var failed []ProjectHash
	for rec := range store.List() {
		if rec.Err != nil {
			failed = append(failed, rec.Hash)
			continue
		}
		if len(rec.Raw) == 0 {
			t.Errorf("record %s yielded no bytes", rec.Hash.Short())
		}
		seen[rec.Hash] = true
	}

	for _, h := range hashes {
		if !seen[h] {
			t.Errorf("valid record %s not enumerated", h.Short())
		}
	}
	if len(seen) != len(hashes) {
		t.Errorf("expected %d readable records, got %d", len(hashes), len(seen))
	}
	if len(failed) != 1 || failed[0] != empty {
		t.Errorf("expected one failed entry for the recordless dir, got %v", failed)
	}
}

func TestMetadataStore_ListMissingRoot(t *testing.T) {
	store := NewMetadataStore(filepath.Join(t.TempDir(), "never-created"))

	count := 0
	for rec := range store.List() {
		count++
		if rec.Err != nil {
			t.Errorf("unexpected element error: %v", rec.Err)
		}
	}
	if count != 0 {
		t.Errorf("expected empty enumeration, got %d elements", count)
	}
}

func TestMetadataStore_ListRootInaccessible(t *testing.T) {
	// A root that exists but cannot be opened as a directory.
	rootFile := filepath.Join(t.TempDir(), "projects")
	if err := os.WriteFile(rootFile, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("creating root file: %v", err)
	}

	var got error
	for rec := range NewMetadataStore(rootFile).List() {
		got = rec.Err
	}
	if !errors.Is(got, ErrStorageRootInaccessible) {
		t.Errorf("expected ErrStorageRootInaccessible, got %v", got)
	}
}

func TestMetadataStore_ListEarlyBreak(t *testing.T) {
	store, _ := storeWith(t, t.TempDir(), 5)

	consumed := 0
	for range store.List() {
		consumed++
		if consumed == 2 {
			break
		}
	}
	if consumed != 2 {
		t.Errorf("expected to consume 2 elements, got %d", consumed)
	}
}

func TestMetadataStore_ConcurrentReadDuringUpsert(t *testing.T) {
	// A reader must always see a complete record, old or new.
	store := NewMetadataStore(t.TempDir())
	meta := validMetadata()
	if err := store.Upsert(meta); err != nil {
		t.Fatalf("initial Upsert: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			m := meta
			m.SessionCount = i
			m.LastAccessed = time.Now().UTC()
			if err := store.Upsert(m); err != nil {
				t.Errorf("Upsert %d: %v", i, err)
				return
			}
		}
	}()

	for i := 0; i < 50; i++ {
		if _, err := store.Load(meta.ProjectHash); err != nil {
			t.Fatalf("Load during writes: %v", err)
		}
	}
	<-done
}

func TestMetadataStore_ProjectDir(t *testing.T) {
	store := NewMetadataStore("/data/trustee/projects")
	hash := HashPath("/home/dev/project")
	want := filepath.Join("/data/trustee/projects", string(hash))
	if got := store.ProjectDir(hash); got != want {
		t.Errorf("ProjectDir = %q, want %q", got, want)
	}
}
