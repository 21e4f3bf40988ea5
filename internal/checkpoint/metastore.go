package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
)

// metadataFile is the record filename inside each project directory.
const metadataFile = "metadata.json"

// MetadataStore reads and writes per-project metadata records under a single
// storage root. The root is explicit state, never ambient: callers construct
// a store per root, and tests point one at a throwaway temp directory.
//
// Layout: <root>/<hash>/metadata.json, one directory per registered project.
// Session data lives under the same <root>/<hash>/ but is owned by the
// session store, not by this type.
type MetadataStore struct {
	root string
}

// NewMetadataStore returns a store over the given root directory. The root
// does not have to exist yet; it is created on first Upsert.
func NewMetadataStore(root string) *MetadataStore {
	return &MetadataStore{root: root}
}

// Root returns the storage root directory.
func (s *MetadataStore) Root() string { return s.root }

// ProjectDir returns the storage directory for a hash.
func (s *MetadataStore) ProjectDir(hash ProjectHash) string {
	return filepath.Join(s.root, string(hash))
}

func (s *MetadataStore) recordPath(hash ProjectHash) string {
	return filepath.Join(s.root, string(hash), metadataFile)
}

// Load reads and parses the record for hash. Outcomes: the metadata,
// ErrNotFound (no record), ErrCorruptEntry (present but does not parse or
// validate, or claims a different hash), or ErrIOFailure (read fault on an
// existing record). Corruption is a recoverable per-entry condition, never a
// panic or a store-wide failure.
func (s *MetadataStore) Load(hash ProjectHash) (ProjectMetadata, error) {
	data, err := os.ReadFile(s.recordPath(hash))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ProjectMetadata{}, fmt.Errorf("%w: %s", ErrNotFound, hash.Short())
		}
		return ProjectMetadata{}, fmt.Errorf("%w: read %s: %v", ErrIOFailure, hash.Short(), err)
	}
	return s.DecodeRecord(hash, data)
}

// DecodeRecord parses and validates raw record bytes for hash. Any failure,
// including a record whose project_hash disagrees with the directory it was
// read from, is ErrCorruptEntry.
func (s *MetadataStore) DecodeRecord(hash ProjectHash, raw []byte) (ProjectMetadata, error) {
	var meta ProjectMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return ProjectMetadata{}, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, hash.Short(), err)
	}
	if err := meta.Validate(); err != nil {
		return ProjectMetadata{}, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, hash.Short(), err)
	}
	if meta.ProjectHash != hash {
		return ProjectMetadata{}, fmt.Errorf("%w: %s: record claims hash %s", ErrCorruptEntry, hash.Short(), meta.ProjectHash.Short())
	}
	return meta, nil
}

// Upsert writes the record for meta.ProjectHash, creating the project
// directory (and the root) as needed. The write goes to a uniquely named temp
// file in the project directory followed by an atomic rename, so a crash
// mid-write never leaves a partially written record and a concurrent reader
// sees either the old or the new complete record.
func (s *MetadataStore) Upsert(meta ProjectMetadata) error {
	if err := meta.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid record: %w", err)
	}

	dir := s.ProjectDir(meta.ProjectHash)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIOFailure, dir, err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	data = append(data, '\n')

	return writeFileAtomic(filepath.Join(dir, metadataFile), data)
}

// writeFileAtomic writes data to path via temp-file-then-rename. Concurrent
// writers each rename their own temp file, so the record on disk is always
// one writer's complete output.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp in %s: %v", ErrIOFailure, dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // stray-file cleanup; fails harmlessly after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrIOFailure, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", ErrIOFailure, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIOFailure, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %v", ErrIOFailure, tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: rename to %s: %v", ErrIOFailure, path, err)
	}
	return nil
}

// RawRecord is one element of a lazy enumeration: the directory's hash plus
// either the raw record bytes or the per-entry failure. A RawRecord with no
// hash carries the terminal root failure.
type RawRecord struct {
	Hash ProjectHash
	Raw  []byte
	Err  error
}

// List lazily enumerates (hash, raw bytes) for every hash-named directory
// under the root. Enumeration is decoupled from parsing: elements carry raw
// bytes, and one unreadable entry yields an element with Err set while the
// rest keep flowing. Breaking out of the range stops all further I/O.
//
// A root that does not exist yet enumerates as empty (nothing has been
// registered). Any other failure to open the root yields a single element
// wrapping ErrStorageRootInaccessible. Non-directories and directories whose
// names are not well-formed hashes are ignored.
func (s *MetadataStore) List() iter.Seq[RawRecord] {
	return func(yield func(RawRecord) bool) {
		entries, err := os.ReadDir(s.root)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return
			}
			yield(RawRecord{Err: fmt.Errorf("%w: %s: %v", ErrStorageRootInaccessible, s.root, err)})
			return
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			hash := ProjectHash(entry.Name())
			if !hash.Valid() {
				continue
			}

			data, err := os.ReadFile(s.recordPath(hash))
			if err != nil {
				rerr := fmt.Errorf("%w: read %s: %v", ErrIOFailure, hash.Short(), err)
				if errors.Is(err, fs.ErrNotExist) {
					rerr = fmt.Errorf("%w: %s has no metadata record", ErrNotFound, hash.Short())
				}
				if !yield(RawRecord{Hash: hash, Err: rerr}) {
					return
				}
				continue
			}

			if !yield(RawRecord{Hash: hash, Raw: data}) {
				return
			}
		}
	}
}
