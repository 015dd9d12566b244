// Package site checks configured sites for new releases, with one
// strategy per site type.
package site

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dupgit/versions/internal/cache"
	"github.com/dupgit/versions/internal/config"
	"github.com/dupgit/versions/internal/feed"
)

// Fetcher downloads a feed and returns its entries in feed order.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]feed.Entry, error)
}

// Strategy checks one site for new versions and persists its state.
type Strategy interface {
	Check(ctx context.Context) error
}

// New returns the check strategy for the site's declared type.
func New(site config.Site, stateDir string, f Fetcher, n cache.Notifier, log *slog.Logger) Strategy {
	if site.Type == config.TypeByProject {
		return &byProject{site: site, stateDir: stateDir, fetcher: f, notifier: n, log: log}
	}
	return &byList{site: site, stateDir: stateDir, fetcher: f, notifier: n, log: log}
}

// CachePath returns the version cache file for a site.
func CachePath(dir, site string) string {
	return filepath.Join(dir, site+".cache")
}

func cursorPath(dir, site string) string {
	return filepath.Join(dir, site+".feed")
}

// Per-project cursors sit next to the site cursor with the project name
// appended. Slashes in project names would create directories.
func projectCursorPath(dir, site, project string) string {
	return filepath.Join(dir, site+"_"+strings.ReplaceAll(project, "/", "_")+".feed")
}
