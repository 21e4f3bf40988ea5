package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/trusteehq/trustee/internal/applog"
	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/config"
	"github.com/trusteehq/trustee/internal/fingerprint"
	"github.com/trusteehq/trustee/internal/search"
	"github.com/trusteehq/trustee/internal/server"
)

var (
	serveHost    string
	servePort    int
	serveToken   string
	serveNoWatch bool
	mcpStdio     bool
	mcpPort      int
	mcpHost      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the checkpoint store over HTTP: the resumable view, transcripts,
search, Prometheus metrics and a websocket event stream. While serving, the
storage root is watched and the search index kept current (disable with
--no-watch or search.watch=false).

Authentication is bearer-token: --token, then server.auth_token from the
config, then TRUSTEE_API_TOKEN. Without any of them the API is open —
fine on 127.0.0.1, unwise anywhere else.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverConfig := server.DefaultConfig()
	serverConfig.Host = app.cfg.Server.Host
	serverConfig.Port = app.cfg.Server.Port
	if serveHost != "" {
		serverConfig.Host = serveHost
	}
	if servePort != 0 {
		serverConfig.Port = servePort
	}
	serverConfig.Token = serveToken
	if serverConfig.Token == "" {
		serverConfig.Token = app.cfg.Server.AuthToken
	}
	if serverConfig.Token == "" {
		serverConfig.Token = os.Getenv("TRUSTEE_API_TOKEN")
	}

	// Search is optional: a failed index open disables /search, not the server.
	var index *search.Index
	if idx, err := app.openIndex(); err != nil {
		applog.Log.Warn("search index unavailable", "error", err)
		fmt.Fprintf(os.Stderr, "search disabled: %v\n", err)
	} else {
		index = idx
		defer index.Close()
	}

	srv := server.New(app.coordinator, app.sessions, index, serverConfig)

	if !serveNoWatch && app.cfg.Search.Watch {
		watcher, err := server.NewWatcher(app.manager.Root(), srv.Hub())
		if err != nil {
			applog.Log.Warn("storage watch unavailable", "error", err)
		} else {
			if index != nil {
				reindexer := search.NewReindexer(index, app.manager, app.sessions)
				watcher.OnSessionChange = func(hash checkpoint.ProjectHash, sessionID string) {
					if _, err := reindexer.ReindexProject(ctx, hash); err != nil {
						applog.Log.Warn("live reindex failed", "hash", hash.Short(), "error", err)
					}
				}
			}
			if err := watcher.Start(ctx); err == nil {
				defer watcher.Stop()
			}
		}
	}

	if other := config.FindInstanceByPort(serverConfig.Port); other != nil && other.PID != os.Getpid() {
		return fmt.Errorf("port %d already held by %s (pid %d)", serverConfig.Port, other.Type, other.PID)
	}
	fp, _ := fingerprint.GetFingerprint()
	config.RegisterInstance(config.Instance{
		Type:        config.InstanceServe,
		PID:         os.Getpid(),
		Host:        serverConfig.Host,
		Port:        serverConfig.Port,
		Fingerprint: fp,
		StartedAt:   time.Now(),
	})
	defer config.UnregisterInstance(os.Getpid())

	return srv.ListenAndServe(ctx)
}

var serveTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate an API bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := server.GenerateToken()
		if err != nil {
			return err
		}
		fmt.Println(token)
		fmt.Fprintln(os.Stderr, `Persist it with: trustee config set server.auth_token <token>`)
		return nil
	},
}

var serveMcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the store over the Model Context Protocol",
	Long: `Expose the checkpoint store as MCP tools (list_projects, get_project,
list_sessions, resume_command, search_transcripts). Default transport is
stdio for direct use by agent hosts; --port serves MCP over HTTP/SSE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var index *search.Index
		if idx, err := app.openIndex(); err == nil {
			index = idx
			defer index.Close()
		} else {
			applog.Log.Warn("search index unavailable", "error", err)
		}

		ms := server.NewMCPServer(app.coordinator, app.sessions, index, app.resumeTemplate())

		if mcpPort > 0 && !mcpStdio {
			fp, _ := fingerprint.GetFingerprint()
			config.RegisterInstance(config.Instance{
				Type:        config.InstanceServeMCP,
				PID:         os.Getpid(),
				Host:        mcpHost,
				Port:        mcpPort,
				Fingerprint: fp,
				StartedAt:   time.Now(),
			})
			defer config.UnregisterInstance(os.Getpid())
			return ms.RunHTTP(ctx, mcpHost, mcpPort)
		}
		return ms.RunStdio(ctx)
	},
}
