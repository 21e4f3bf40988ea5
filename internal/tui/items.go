package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/i18n"
)

// projectItem wraps a resumable project for the picker list.
type projectItem struct {
	project checkpoint.ResumableProject
}

func (i projectItem) Title() string {
	if i.stale() {
		return i.project.Name + " ⚠"
	}
	return i.project.Name
}

func (i projectItem) Description() string {
	var parts []string

	path := collapseHome(i.project.Path)
	if len(path) > 50 {
		path = "..." + path[len(path)-47:]
	}
	parts = append(parts, path)

	if i.project.SessionsUnavailable {
		parts = append(parts, "sessions unavailable")
	} else {
		parts = append(parts, i18n.Tn("tui.picker.sessions",
			"{{.Count}} session", "{{.Count}} sessions", len(i.project.Sessions)))
	}

	if !i.project.LastAccessed.IsZero() {
		parts = append(parts, i18n.RelativeTime(i.project.LastAccessed))
	}

	return strings.Join(parts, "  •  ")
}

func (i projectItem) FilterValue() string {
	return i.project.Name + " " + i.project.Path + " " + string(i.project.Hash)
}

// stale reports whether the recorded path no longer exists. Display only;
// selection always resumes by hash.
func (i projectItem) stale() bool {
	if i.project.Path == "" {
		return true
	}
	_, err := os.Stat(i.project.Path)
	return err != nil
}

// sessionItem wraps a session record for the picker list.
type sessionItem struct {
	record checkpoint.SessionRecord
}

func (i sessionItem) Title() string {
	id := i.record.SessionID
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (i sessionItem) Description() string {
	var parts []string

	if !i.record.StartedAt.IsZero() {
		parts = append(parts, i.record.StartedAt.Local().Format("Jan 02, 3:04 PM"))
	}
	if i.record.EndedAt == nil {
		parts = append(parts, i18n.T("tui.sessions.open", "open"))
	}
	if i.record.SizeBytes > 0 {
		parts = append(parts, formatFileSize(i.record.SizeBytes))
	}

	return strings.Join(parts, "  •  ")
}

func (i sessionItem) FilterValue() string {
	return i.record.SessionID
}

// formatFileSize returns a human-readable file size string.
func formatFileSize(size int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
	)
	switch {
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/float64(MB))
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/float64(KB))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func collapseHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}
