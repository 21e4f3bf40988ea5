package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/trusteehq/trustee/internal/checkpoint"
)

// Options contains all options for a search operation.
type Options struct {
	Query           string
	ProjectHash     checkpoint.ProjectHash // empty = all projects
	Limit           int
	LimitPerSession int
	CaseSensitive   bool
	UseRegex        bool
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		Limit:           50,
		LimitPerSession: 2,
	}
}

// Match represents a single match within a session transcript.
type Match struct {
	LineNum    int       `json:"line_num"`
	Role       string    `json:"role"`
	At         time.Time `json:"at"`
	Preview    string    `json:"preview"`
	MatchStart int       `json:"match_start"` // Start offset of match within Preview
	MatchEnd   int       `json:"match_end"`   // End offset of match within Preview
}

// SessionResult represents all matches found in a single session.
type SessionResult struct {
	SessionID   string  `json:"session_id"`
	ProjectHash string  `json:"project_hash"`
	ProjectName string  `json:"project_name"`
	Matches     []Match `json:"matches"`
}

// Matcher encapsulates the in-memory matching strategy used for previews.
// The SQL layer narrows candidates; the matcher pins down offsets.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher creates a matcher from the query and flags. For plain substring
// search it compiles a regexp.QuoteMeta'd pattern; for regex it uses the
// query directly. Case-insensitivity is handled via the (?i) flag.
func NewMatcher(query string, caseSensitive, useRegex bool) (*Matcher, error) {
	pattern := query
	if !useRegex {
		pattern = regexp.QuoteMeta(query)
	}
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", query, err)
	}
	return &Matcher{re: re}, nil
}

func (m *Matcher) Match(text string) bool {
	return m.re.MatchString(text)
}

// FindIndex returns the byte offsets [start, end) of the first match in text,
// or (-1, -1) if there is no match.
func (m *Matcher) FindIndex(text string) (int, int) {
	loc := m.re.FindStringIndex(text)
	if loc == nil {
		return -1, -1
	}
	return loc[0], loc[1]
}

// Query runs a search against the index and groups matches by session,
// newest entries first.
func (ix *Index) Query(ctx context.Context, opts Options) ([]SessionResult, int, error) {
	if opts.Query == "" {
		return nil, 0, fmt.Errorf("empty search query")
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	matcher, err := NewMatcher(opts.Query, opts.CaseSensitive, opts.UseRegex)
	if err != nil {
		return nil, 0, err
	}

	query, args := buildEntryQuery(opts)

	start := time.Now()
	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search entries: %w", err)
	}
	defer rows.Close()

	sessionGroups := make(map[string]*SessionResult)
	var sessionOrder []string

	totalMatches := 0
	for rows.Next() {
		var (
			sessionID   string
			projectHash string
			projectName string
			lineNum     int
			role        string
			at          time.Time
			text        string
		)
		if err := rows.Scan(&sessionID, &projectHash, &projectName, &lineNum, &role, &at, &text); err != nil {
			return nil, 0, fmt.Errorf("scan search result: %w", err)
		}

		group, exists := sessionGroups[sessionID]
		if !exists {
			group = &SessionResult{
				SessionID:   sessionID,
				ProjectHash: projectHash,
				ProjectName: projectName,
				Matches:     []Match{},
			}
			sessionGroups[sessionID] = group
			sessionOrder = append(sessionOrder, sessionID)
		}

		if opts.LimitPerSession > 0 && len(group.Matches) >= opts.LimitPerSession {
			continue
		}

		preview, matchStart, matchEnd := extractPreview(text, matcher)
		group.Matches = append(group.Matches, Match{
			LineNum:    lineNum,
			Role:       role,
			At:         at,
			Preview:    preview,
			MatchStart: matchStart,
			MatchEnd:   matchEnd,
		})
		totalMatches++

		if totalMatches >= opts.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate search results: %w", err)
	}
	queryDurationSeconds.Observe(time.Since(start).Seconds())
	queriesTotal.Inc()

	results := make([]SessionResult, 0, len(sessionOrder))
	for _, id := range sessionOrder {
		res := sessionGroups[id]
		if len(res.Matches) > 0 {
			results = append(results, *res)
		}
	}

	return results, totalMatches, nil
}

// buildEntryQuery translates Options into SQL. Plain queries use LIKE with
// escaped wildcards; regex queries use DuckDB's regexp_matches, which shares
// RE2 syntax with the Go matcher.
func buildEntryQuery(opts Options) (string, []any) {
	query := `
		SELECT e.session_id, s.project_hash, s.project_name, e.line_num, e.role, e."at", e.text
		FROM indexed_entries e
		JOIN indexed_sessions s ON s.session_id = e.session_id
		WHERE `

	var args []any
	if opts.UseRegex {
		pattern := opts.Query
		if !opts.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		query += `regexp_matches(e.text, ?)`
		args = append(args, pattern)
	} else {
		op := "ILIKE"
		if opts.CaseSensitive {
			op = "LIKE"
		}
		query += fmt.Sprintf(`e.text %s ? ESCAPE '\'`, op)
		args = append(args, "%"+escapeLike(opts.Query)+"%")
	}

	if opts.ProjectHash != "" {
		query += ` AND s.project_hash = ?`
		args = append(args, string(opts.ProjectHash))
	}

	query += ` ORDER BY e."at" DESC, e.session_id, e.line_num`
	// Overfetch so per-session trimming still fills the global limit.
	fetch := opts.Limit
	if opts.LimitPerSession > 0 {
		fetch *= 4
	}
	query += fmt.Sprintf(" LIMIT %d", fetch)

	return query, args
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// extractPreview extracts a window of text around the match and returns the
// preview along with the match offsets within it.
func extractPreview(line string, m *Matcher) (preview string, matchStart, matchEnd int) {
	start, end := m.FindIndex(line)
	if start == -1 {
		return "", 0, 0
	}

	const window = 100

	pStart := start - window
	if pStart < 0 {
		pStart = 0
	}
	pEnd := end + window
	if pEnd > len(line) {
		pEnd = len(line)
	}

	preview = line[pStart:pEnd]
	matchStart = start - pStart
	matchEnd = matchStart + (end - start)

	if pStart > 0 {
		preview = "..." + preview
		matchStart += 3
		matchEnd += 3
	}
	if pEnd < len(line) {
		preview = preview + "..."
	}

	return preview, matchStart, matchEnd
}
