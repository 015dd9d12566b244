// Package cache implements the plain-text state files that make runs
// incremental: the per-site version cache and the feed position cursor.
package cache

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
)

// Notifier receives one notification per project whose version changed.
type Notifier interface {
	Notify(project, version string)
}

// ProjectVersion is one version cache entry.
type ProjectVersion struct {
	Project string
	Version string
}

// VersionCache holds the last version seen for each project tracked by
// one site. It is backed by a file with one "<project> <version>" line
// per project, rewritten in full on save.
type VersionCache struct {
	path     string
	notifier Notifier
	entries  map[string]string
}

// NewVersionCache loads the cache file at path. A missing file yields an
// empty cache. Version changes are reported to n.
func NewVersionCache(path string, n Notifier) (*VersionCache, error) {
	c := &VersionCache{
		path:     path,
		notifier: n,
		entries:  make(map[string]string),
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		project, version := splitLine(line)
		c.entries[project] = version
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	return c, nil
}

// Get returns the cached version for project and whether one is present.
func (c *VersionCache) Get(project string) (string, bool) {
	version, ok := c.entries[project]
	return version, ok
}

// ReportIfChanged notifies when the cached version for project is absent
// or differs from version. The cache itself is left untouched; call
// Update to record the new version.
func (c *VersionCache) ReportIfChanged(project, version string) {
	if old, ok := c.entries[project]; !ok || old != version {
		c.notifier.Notify(project, version)
	}
}

// Update records version as the latest seen for project.
func (c *VersionCache) Update(project, version string) {
	c.entries[project] = version
}

// Len returns the number of cached projects.
func (c *VersionCache) Len() int {
	return len(c.entries)
}

// Sorted returns all entries ordered case-insensitively by project name.
func (c *VersionCache) Sorted() []ProjectVersion {
	out := make([]ProjectVersion, 0, len(c.entries))
	for project, version := range c.entries {
		out = append(out, ProjectVersion{Project: project, Version: version})
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := strings.ToLower(out[i].Project), strings.ToLower(out[j].Project)
		if pi != pj {
			return pi < pj
		}
		return out[i].Project < out[j].Project
	})
	return out
}

// Save rewrites the cache file from scratch. Entries are written sorted
// so that saving unchanged state reproduces the file byte for byte.
func (c *VersionCache) Save() error {
	var b strings.Builder
	for _, e := range c.Sorted() {
		fmt.Fprintf(&b, "%s %s\n", e.Project, e.Version)
	}
	if err := os.WriteFile(c.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// splitLine splits a cache line on its first run of whitespace. A line
// without whitespace is a project with an empty version.
func splitLine(line string) (string, string) {
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeftFunc(line[i:], unicode.IsSpace)
}
