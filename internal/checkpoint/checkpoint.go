// Package checkpoint implements trustee's per-project checkpoint storage:
// content-addressed project directories under a single storage root, with
// metadata records that survive the original project path being moved or
// deleted. Identity is derived from a path exactly once, at registration;
// every later lookup goes by the derived hash alone.
package checkpoint

import (
	"fmt"
	"time"
)

// ProjectHash is the stable identifier of a registered project: the SHA-256
// digest of its canonical path at registration time, hex-encoded. It is never
// recomputed for lookups; the storage directory name is the hash itself.
type ProjectHash string

// hashLen is the length of a hex-encoded SHA-256 digest.
const hashLen = 64

// Valid reports whether h looks like a well-formed project hash
// (64 lowercase hex characters). Used to screen directory names during
// enumeration so unrelated entries in the storage root are ignored.
func (h ProjectHash) Valid() bool {
	if len(h) != hashLen {
		return false
	}
	for _, c := range h {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Short returns a 12-character prefix for display. Storage always uses the
// full hash.
func (h ProjectHash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// ProjectMetadata is the persisted record for one registered project.
// ProjectPath is the last known location and is advisory only: it is written
// at registration, kept verbatim when the directory later moves or disappears,
// and never used for lookups.
type ProjectMetadata struct {
	ProjectHash  ProjectHash `json:"project_hash"`
	ProjectPath  string      `json:"project_path"`
	Name         string      `json:"name"`
	CreatedAt    time.Time   `json:"created_at"`
	LastAccessed time.Time   `json:"last_accessed"`
	SessionCount int         `json:"session_count"`
	SizeBytes    int64       `json:"size_bytes"`
	GitRemote    *string     `json:"git_remote"`
}

// Validate reports whether the record is well-formed. A record that fails
// validation is treated as a corrupt entry; there is no partially-valid state.
func (m *ProjectMetadata) Validate() error {
	if !m.ProjectHash.Valid() {
		return fmt.Errorf("invalid project_hash %q", m.ProjectHash)
	}
	if m.ProjectPath == "" {
		return fmt.Errorf("missing project_path")
	}
	if m.Name == "" {
		return fmt.Errorf("missing name")
	}
	if m.CreatedAt.IsZero() {
		return fmt.Errorf("missing created_at")
	}
	if m.LastAccessed.IsZero() {
		return fmt.Errorf("missing last_accessed")
	}
	if m.SessionCount < 0 {
		return fmt.Errorf("negative session_count %d", m.SessionCount)
	}
	if m.SizeBytes < 0 {
		return fmt.Errorf("negative size_bytes %d", m.SizeBytes)
	}
	return nil
}

// ProjectStorage is the manager's view of one project: where its data lives
// and what the metadata record said when it was loaded. Dir exists by the
// time a ProjectStorage is handed out; Metadata is a transient copy, the
// on-disk record stays authoritative.
type ProjectStorage struct {
	Hash     ProjectHash
	Dir      string
	Metadata ProjectMetadata
}

// SessionRecord summarizes one stored work session. Records are owned by the
// session store and joined to projects through ProjectHash.
type SessionRecord struct {
	SessionID   string      `json:"session_id"`
	ProjectHash ProjectHash `json:"project_hash"`
	StartedAt   time.Time   `json:"started_at"`
	EndedAt     *time.Time  `json:"ended_at,omitempty"`
	SizeBytes   int64       `json:"size"`
}
