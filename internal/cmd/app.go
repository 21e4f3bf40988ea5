package cmd

import (
	"fmt"
	"strings"

	"github.com/trusteehq/trustee/internal/checkpoint"
	"github.com/trusteehq/trustee/internal/config"
	"github.com/trusteehq/trustee/internal/gitremote"
	"github.com/trusteehq/trustee/internal/search"
	"github.com/trusteehq/trustee/internal/session"
)

// app bundles the storage stack every command needs: config, the checkpoint
// manager over the storage root, the session store sharing that root, and
// the coordinator joining them. Built per command invocation; nothing here
// is process-global.
type app struct {
	cfg         config.Config
	manager     *checkpoint.Manager
	sessions    *session.Store
	coordinator *checkpoint.Coordinator
}

// newApp loads the config and wires the storage stack.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	root, err := cfg.StorageRootPath()
	if err != nil {
		return nil, err
	}

	manager := checkpoint.NewManager(root)
	manager.SetRemoteDiscoverer(gitremote.Discoverer{})
	sessions := session.NewStore(root)

	return &app{
		cfg:         cfg,
		manager:     manager,
		sessions:    sessions,
		coordinator: checkpoint.NewCoordinator(manager, sessions),
	}, nil
}

// openIndex opens the search index at its configured path.
func (a *app) openIndex() (*search.Index, error) {
	path, err := a.cfg.SearchIndexPath()
	if err != nil {
		return nil, err
	}
	return search.Open(path)
}

// resumeTemplate returns the configured resume command template, split into
// argv form. Empty when not configured.
func (a *app) resumeTemplate() []string {
	return strings.Fields(a.cfg.ResumeCommand)
}

// resolveHash turns a command-line project argument into a hash. A 64-char
// hex string is taken as the hash itself; anything else is treated as a path,
// canonicalized and hashed the same way registration does. Neither form
// requires the project's directory to still exist when a full hash is given.
func resolveHash(arg string) (checkpoint.ProjectHash, error) {
	if h := checkpoint.ProjectHash(arg); h.Valid() {
		return h, nil
	}
	canonical, err := checkpoint.CanonicalizePath(arg)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", arg, err)
	}
	return checkpoint.HashPath(canonical), nil
}
