// Package session implements trustee's transcript store: one JSONL file per
// work session, kept under the owning project's storage directory
// (<root>/<hash>/sessions/<id>.jsonl). The checkpoint layer addresses
// sessions only through ProjectHash; nothing here reads or resolves project
// paths.
package session

import "time"

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// Entry is one line of a session transcript.
type Entry struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// endMarkerText closes a transcript. A session whose last entry is the end
// marker is considered ended; anything else is still open (or was cut off).
const endMarkerText = "session ended"

// IsEndMarker reports whether e is the closing entry written by Writer.Close.
func (e Entry) IsEndMarker() bool {
	return e.Role == RoleSystem && e.Text == endMarkerText
}
