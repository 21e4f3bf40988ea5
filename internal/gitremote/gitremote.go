// Package gitremote discovers a project's git remote URL at registration
// time. Discovery is strictly best-effort: a directory that is not a
// repository, a repository without an origin remote, or any git error all
// mean "no remote", never a failure.
package gitremote

import (
	"strings"

	git "github.com/go-git/go-git/v5"
)

// originRemote is the only remote consulted. Projects tracked against an
// unconventionally named remote are recorded without one.
const originRemote = "origin"

// Discoverer resolves origin remote URLs from working directories. The zero
// value is ready to use; it satisfies checkpoint.RemoteDiscoverer.
type Discoverer struct{}

// Discover returns the origin remote URL of the repository containing path.
// path may point anywhere inside the work tree. Reports ok=false when there
// is no repository, no origin remote, or no URL configured.
func (Discoverer) Discover(path string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}

	remote, err := repo.Remote(originRemote)
	if err != nil {
		return "", false
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", false
	}
	url := strings.TrimSpace(urls[0])
	if url == "" {
		return "", false
	}
	return url, true
}
