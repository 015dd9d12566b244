package site

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dupgit/versions/internal/cache"
	"github.com/dupgit/versions/internal/config"
	"github.com/dupgit/versions/internal/feed"
	"github.com/dupgit/versions/internal/title"
)

// byList checks a site whose single feed announces releases for many
// projects, keeping only the ones on the configured list.
type byList struct {
	site     config.Site
	stateDir string
	fetcher  Fetcher
	notifier cache.Notifier
	log      *slog.Logger
}

// Check fetches the site feed once, reports configured projects whose
// version changed, and persists the cache and cursor. A failed fetch is
// logged and leaves the stored state as it was.
func (s *byList) Check(ctx context.Context) error {
	vc, err := cache.NewVersionCache(CachePath(s.stateDir, s.site.Name), s.notifier)
	if err != nil {
		return fmt.Errorf("site %s: %w", s.site.Name, err)
	}
	cur, err := cache.NewCursor(cursorPath(s.stateDir, s.site.Name))
	if err != nil {
		return fmt.Errorf("site %s: %w", s.site.Name, err)
	}
	s.log.Debug("checking site", "site", s.site.Name, "cached", vc.Len(), "cursor", cur)

	s.checkFeed(ctx, vc, cur)

	if err := vc.Save(); err != nil {
		return fmt.Errorf("site %s: %w", s.site.Name, err)
	}
	if err := cur.Save(); err != nil {
		return fmt.Errorf("site %s: %w", s.site.Name, err)
	}
	return nil
}

func (s *byList) checkFeed(ctx context.Context, vc *cache.VersionCache, cur *cache.Cursor) {
	entries, err := s.fetcher.Fetch(ctx, s.site.URL)
	if err != nil {
		s.log.Error("fetch feed", "site", s.site.Name, "url", s.site.URL, "error", err)
		return
	}

	fresh, err := feed.SelectNew(entries, cur)
	if err != nil {
		s.log.Error("skipping feed", "site", s.site.Name, "url", s.site.URL, "error", err)
		return
	}
	s.log.Debug("feed checked", "site", s.site.Name, "entries", len(entries), "new", len(fresh))

	tracked := make(map[string]bool, len(s.site.Projects))
	for _, p := range s.site.Projects {
		tracked[strings.ToLower(p.Name)] = true
	}

	// Entries come newest first, so the first mention of a project is
	// its latest release; older mentions in the same batch are stale.
	handled := make(map[string]bool)
	for _, e := range fresh {
		for _, t := range title.SplitMulti(e.Title, s.site.Multi) {
			project, version := title.Extract(t, s.site.Regex)
			key := strings.ToLower(project)
			if !tracked[key] || handled[key] {
				continue
			}
			handled[key] = true
			vc.ReportIfChanged(project, version)
			vc.Update(project, version)
		}
	}
}
