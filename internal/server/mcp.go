package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/trusteehq/trustee/internal/applog"
	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/search"
	"github.com/trusteehq/trustee/internal/session"
	"github.com/trusteehq/trustee/internal/version"
)

// MCPServer exposes the checkpoint store to agent tooling over the Model
// Context Protocol. Tools are read-only except resume_command, which only
// bumps last_accessed.
type MCPServer struct {
	server      *mcp.Server
	coordinator *checkpoint.Coordinator
	manager     *checkpoint.Manager
	sessions    *session.Store
	index       *search.Index // nil disables search_transcripts
	resumeTmpl  []string
	log         *applog.Logger
}

// NewMCPServer creates an MCP server over the checkpoint coordinator.
// resumeTemplate is the configured resume command template; empty means
// resume_command returns the storage context instead of a command line.
func NewMCPServer(coordinator *checkpoint.Coordinator, sessions *session.Store, index *search.Index, resumeTemplate []string) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "trustee",
		Version: version.Get(),
	}, nil)

	ms := &MCPServer{
		server:      server,
		coordinator: coordinator,
		manager:     coordinator.Manager(),
		sessions:    sessions,
		index:       index,
		resumeTmpl:  resumeTemplate,
		log:         applog.Log,
	}
	ms.registerTools()
	return ms
}

// registerTools adds the trustee tools to the MCP server.
func (ms *MCPServer) registerTools() {
	mcp.AddTool(ms.server, &mcp.Tool{
		Name:        "list_projects",
		Description: "List registered projects with their hashes, paths and session counts. Unreadable entries are skipped and counted, never fatal.",
	}, ms.handleListProjects)

	mcp.AddTool(ms.server, &mcp.Tool{
		Name:        "get_project",
		Description: "Get one project's stored metadata by hash. Works even when the recorded path no longer exists.",
	}, ms.handleGetProject)

	mcp.AddTool(ms.server, &mcp.Tool{
		Name:        "list_sessions",
		Description: "List the stored work sessions of a project, newest first.",
	}, ms.handleListSessions)

	mcp.AddTool(ms.server, &mcp.Tool{
		Name:        "resume_command",
		Description: "Resolve a project by hash, mark it accessed, and return the command to resume work in it.",
	}, ms.handleResumeCommand)

	if ms.index != nil {
		mcp.AddTool(ms.server, &mcp.Tool{
			Name:        "search_transcripts",
			Description: "Full-text search across stored session transcripts. Results are grouped by session, limited to 50 matches by default.",
		}, ms.handleSearchTranscripts)
	}
}

// Tool input/output types

type mcpListProjectsInput struct {
	Query string `json:"query,omitempty"` // Substring filter on name or path
}

type mcpProjectInfo struct {
	Hash         string `json:"hash"`
	Name         string `json:"name"`
	Path         string `json:"path"`
	PathExists   bool   `json:"path_exists"`
	LastAccessed string `json:"last_accessed"`
	SessionCount int    `json:"session_count"`
	SizeBytes    int64  `json:"size_bytes"`
	GitRemote    string `json:"git_remote,omitempty"`
}

type mcpListProjectsOutput struct {
	Projects []mcpProjectInfo `json:"projects"`
	Skipped  int              `json:"skipped_entries"`
}

type mcpGetProjectInput struct {
	Hash string `json:"hash"`
}

type mcpGetProjectOutput struct {
	Project mcpProjectInfo `json:"project"`
	Created string         `json:"created_at"`
}

type mcpListSessionsInput struct {
	Hash string `json:"hash"`
}

type mcpSessionInfo struct {
	SessionID string `json:"session_id"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
}

type mcpListSessionsOutput struct {
	Sessions []mcpSessionInfo `json:"sessions"`
}

type mcpResumeCommandInput struct {
	Hash      string `json:"hash"`
	SessionID string `json:"session_id,omitempty"`
}

type mcpResumeCommandOutput struct {
	Hash       string   `json:"hash"`
	StorageDir string   `json:"storage_dir"`
	Path       string   `json:"path"`
	PathExists bool     `json:"path_exists"`
	Command    string   `json:"command,omitempty"`
	Args       []string `json:"args,omitempty"`
	Dir        string   `json:"dir,omitempty"`
}

type mcpSearchInput struct {
	Query string `json:"query"`
	Hash  string `json:"hash,omitempty"` // Restrict to one project
	Limit int    `json:"limit,omitempty"`
}

type mcpSearchOutput struct {
	Results []search.SessionResult `json:"results"`
	Total   int                    `json:"total"`
}

// Tool handlers

func (ms *MCPServer) handleListProjects(ctx context.Context, req *mcp.CallToolRequest, input mcpListProjectsInput) (*mcp.CallToolResult, mcpListProjectsOutput, error) {
	summaries, diags, err := ms.manager.ListProjects(ctx)
	if err != nil {
		return nil, mcpListProjectsOutput{}, err
	}

	infos := make([]mcpProjectInfo, 0, len(summaries))
	for _, p := range summaries {
		if input.Query != "" && !matchesQuery(p, input.Query) {
			continue
		}
		infos = append(infos, projectToInfo(p))
	}

	output := mcpListProjectsOutput{Projects: infos, Skipped: diags.Skipped()}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

func (ms *MCPServer) handleGetProject(ctx context.Context, req *mcp.CallToolRequest, input mcpGetProjectInput) (*mcp.CallToolResult, mcpGetProjectOutput, error) {
	storage, err := ms.manager.GetProjectStorageByHash(checkpoint.ProjectHash(input.Hash))
	if err != nil {
		return nil, mcpGetProjectOutput{}, err
	}

	meta := storage.Metadata
	info := mcpProjectInfo{
		Hash:         string(meta.ProjectHash),
		Name:         meta.Name,
		Path:         meta.ProjectPath,
		PathExists:   pathExists(meta.ProjectPath),
		LastAccessed: meta.LastAccessed.Format(time.RFC3339),
		SessionCount: meta.SessionCount,
		SizeBytes:    meta.SizeBytes,
	}
	if meta.GitRemote != nil {
		info.GitRemote = *meta.GitRemote
	}

	output := mcpGetProjectOutput{Project: info, Created: meta.CreatedAt.Format(time.RFC3339)}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

func (ms *MCPServer) handleListSessions(ctx context.Context, req *mcp.CallToolRequest, input mcpListSessionsInput) (*mcp.CallToolResult, mcpListSessionsOutput, error) {
	records, err := ms.sessions.ListSessions(ctx, checkpoint.ProjectHash(input.Hash))
	if err != nil {
		return nil, mcpListSessionsOutput{}, err
	}

	infos := make([]mcpSessionInfo, len(records))
	for i, r := range records {
		infos[i] = mcpSessionInfo{
			SessionID: r.SessionID,
			StartedAt: r.StartedAt.Format(time.RFC3339),
			SizeBytes: r.SizeBytes,
		}
		if r.EndedAt != nil {
			infos[i].EndedAt = r.EndedAt.Format(time.RFC3339)
		}
	}

	output := mcpListSessionsOutput{Sessions: infos}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

func (ms *MCPServer) handleResumeCommand(ctx context.Context, req *mcp.CallToolRequest, input mcpResumeCommandInput) (*mcp.CallToolResult, mcpResumeCommandOutput, error) {
	storage, err := ms.coordinator.Resume(checkpoint.ProjectHash(input.Hash))
	if err != nil {
		return nil, mcpResumeCommandOutput{}, err
	}

	output := mcpResumeCommandOutput{
		Hash:       string(storage.Hash),
		StorageDir: storage.Dir,
		Path:       storage.Metadata.ProjectPath,
		PathExists: pathExists(storage.Metadata.ProjectPath),
	}
	if info := checkpoint.BuildResumeInfo(ms.resumeTmpl, storage, input.SessionID); info != nil {
		output.Command = info.Command
		output.Args = info.Args
		output.Dir = info.Dir
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

func (ms *MCPServer) handleSearchTranscripts(ctx context.Context, req *mcp.CallToolRequest, input mcpSearchInput) (*mcp.CallToolResult, mcpSearchOutput, error) {
	opts := search.DefaultOptions()
	opts.Query = input.Query
	opts.ProjectHash = checkpoint.ProjectHash(input.Hash)
	if input.Limit > 0 {
		opts.Limit = input.Limit
	}

	results, total, err := ms.index.Query(ctx, opts)
	if err != nil {
		return nil, mcpSearchOutput{}, err
	}

	output := mcpSearchOutput{Results: results, Total: total}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: formatJSON(output)}},
	}, output, nil
}

func matchesQuery(p checkpoint.ProjectSummary, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Path), q)
}

func projectToInfo(p checkpoint.ProjectSummary) mcpProjectInfo {
	return mcpProjectInfo{
		Hash:         string(p.Hash),
		Name:         p.Name,
		Path:         p.Path,
		PathExists:   pathExists(p.Path),
		LastAccessed: p.LastAccessed.Format(time.RFC3339),
		SessionCount: p.SessionCount,
		SizeBytes:    p.SizeBytes,
		GitRemote:    p.GitRemote,
	}
}

func pathExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// RunStdio serves MCP over stdin/stdout until ctx is cancelled. Protocol
// traffic is logged to stderr so it stays out of the transport stream.
func (ms *MCPServer) RunStdio(ctx context.Context) error {
	return ms.server.Run(ctx, &mcp.LoggingTransport{Transport: &mcp.StdioTransport{}, Writer: os.Stderr})
}

// RunHTTP serves MCP over SSE on the given address.
func (ms *MCPServer) RunHTTP(ctx context.Context, host string, port int) error {
	handler := mcp.NewSSEHandler(func(req *http.Request) *mcp.Server { return ms.server }, nil)

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{Addr: addr, Handler: handler}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	ms.log.Info("mcp server listening", "addr", addr)
	if err := srv.Serve(ln); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Server returns the underlying MCP server.
func (ms *MCPServer) Server() *mcp.Server { return ms.server }

func formatJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
