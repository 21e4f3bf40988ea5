package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/trusteehq/trustee/internal/checkpoint"
)

// DefaultSummaryTemplate is the default template for project summaries.
const DefaultSummaryTemplate = `{{range .}}{{.Path}}
  Hash:     {{.Hash}}
  Sessions: {{.SessionCount}}
  Size:     {{.Size}}
  Accessed: {{.LastAccessed}}
{{- if .GitRemote}}
  Remote:   {{.GitRemote}}
{{- end}}
{{- if .Stale}}
  Note:     recorded path no longer exists (resume still works by hash)
{{- end}}
{{end}}`

// SummaryTemplateHelp documents the template variables available.
const SummaryTemplateHelp = `Template Variables
==================

Each project in the list has:
  .Hash          string  - Full project hash (the stable identifier)
  .ShortHash     string  - 12-character hash prefix
  .Name          string  - Project name (last path component at registration)
  .Path          string  - Recorded project path (advisory; may be stale)
  .SessionCount  int     - Number of recorded sessions
  .Size          string  - Human-readable storage footprint
  .Created       string  - Registration time
  .LastAccessed  string  - Last access time
  .GitRemote     string  - Git origin URL (may be empty)
  .Stale         bool    - True when the recorded path no longer exists

Example custom template:
  {{range .}}{{.ShortHash}}  {{.Name}}: {{.SessionCount}} sessions
  {{end}}`

// SummaryOptions configures summary output formatting.
type SummaryOptions struct {
	SortBy     string // "name" or "time"
	Descending bool   // sort order
}

// ProjectRow holds template-friendly project data.
type ProjectRow struct {
	Hash         string
	ShortHash    string
	Name         string
	Path         string
	SessionCount int
	Size         string
	Created      string
	LastAccessed string
	GitRemote    string
	Stale        bool
}

// ProjectsFormatter formats project listings for CLI output.
type ProjectsFormatter struct {
	w io.Writer
}

// NewProjectsFormatter creates a new projects formatter.
func NewProjectsFormatter(w io.Writer) *ProjectsFormatter {
	return &ProjectsFormatter{w: w}
}

// projectRow builds the display row for one summary. Staleness is a
// display-level stat of the recorded path; the listing itself never needed
// the path to resolve.
func projectRow(p checkpoint.ProjectSummary) ProjectRow {
	return ProjectRow{
		Hash:         string(p.Hash),
		ShortHash:    p.Hash.Short(),
		Name:         p.Name,
		Path:         CollapseHome(p.Path),
		SessionCount: p.SessionCount,
		Size:         FormatSize(p.SizeBytes),
		Created:      FormatTime(p.CreatedAt),
		LastAccessed: FormatTime(p.LastAccessed),
		GitRemote:    p.GitRemote,
		Stale:        PathIsStale(p.Path),
	}
}

// PathIsStale reports whether a recorded project path no longer exists on
// disk. Used only to decorate listings; lookups never consult it.
func PathIsStale(path string) bool {
	if path == "" {
		return true
	}
	_, err := os.Stat(path)
	return err != nil
}

// FormatShort writes recorded project paths, one per line.
func (f *ProjectsFormatter) FormatShort(projects []checkpoint.ProjectSummary) error {
	for _, p := range projects {
		fmt.Fprintln(f.w, CollapseHome(p.Path))
	}
	return nil
}

// FormatVerbose writes projects with hash and metadata in aligned columns.
func (f *ProjectsFormatter) FormatVerbose(projects []checkpoint.ProjectSummary) error {
	w := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)

	for _, p := range projects {
		row := projectRow(p)
		marker := ""
		if row.Stale {
			marker = " (stale)"
		}
		sessions := fmt.Sprintf("%d sessions", row.SessionCount)
		fmt.Fprintf(w, "%s\t%s%s\t%s\t%s\t%s\n",
			row.ShortHash, row.Path, marker, sessions, row.Size, row.LastAccessed)
	}

	return w.Flush()
}

// FormatJSON writes projects as a JSON array.
func (f *ProjectsFormatter) FormatJSON(projects []checkpoint.ProjectSummary) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(projects)
}

// FormatInfo writes the full record of a single project.
func (f *ProjectsFormatter) FormatInfo(storage *checkpoint.ProjectStorage) error {
	meta := storage.Metadata
	w := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Hash:\t%s\n", meta.ProjectHash)
	fmt.Fprintf(w, "Name:\t%s\n", meta.Name)
	fmt.Fprintf(w, "Path:\t%s\n", meta.ProjectPath)
	if PathIsStale(meta.ProjectPath) {
		fmt.Fprintf(w, "\t(no longer exists; resume works by hash)\n")
	}
	fmt.Fprintf(w, "Storage:\t%s\n", storage.Dir)
	fmt.Fprintf(w, "Created:\t%s\n", FormatTime(meta.CreatedAt))
	fmt.Fprintf(w, "Accessed:\t%s\n", FormatTime(meta.LastAccessed))
	fmt.Fprintf(w, "Sessions:\t%d\n", meta.SessionCount)
	fmt.Fprintf(w, "Size:\t%s\n", FormatSize(meta.SizeBytes))
	if meta.GitRemote != nil {
		fmt.Fprintf(w, "Remote:\t%s\n", *meta.GitRemote)
	}
	return w.Flush()
}

// FormatSummary writes detailed project information using a template.
// If tmplStr is empty, uses DefaultSummaryTemplate.
func (f *ProjectsFormatter) FormatSummary(projects []checkpoint.ProjectSummary, tmplStr string, opts SummaryOptions) error {
	if tmplStr == "" {
		tmplStr = DefaultSummaryTemplate
	}

	tmpl, err := template.New("summary").Parse(tmplStr)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	sortProjects(projects, opts)

	rows := make([]ProjectRow, len(projects))
	for i, p := range projects {
		rows[i] = projectRow(p)
	}

	return tmpl.Execute(f.w, rows)
}

// sortProjects sorts projects based on options.
func sortProjects(projects []checkpoint.ProjectSummary, opts SummaryOptions) {
	switch opts.SortBy {
	case "name":
		sort.Slice(projects, func(i, j int) bool {
			cmp := strings.Compare(strings.ToLower(projects[i].Name), strings.ToLower(projects[j].Name))
			if opts.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
	case "time", "":
		sort.Slice(projects, func(i, j int) bool {
			if opts.Descending {
				return projects[i].LastAccessed.After(projects[j].LastAccessed)
			}
			return projects[i].LastAccessed.Before(projects[j].LastAccessed)
		})
	}
}
