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

// byProject checks a site that publishes one release feed per project,
// like GitHub or GitLab tag feeds.
type byProject struct {
	site     config.Site
	stateDir string
	fetcher  Fetcher
	notifier cache.Notifier
	log      *slog.Logger
}

// Check polls every configured project's feed and persists the site
// cache once at the end. Failures are dealt with per project: a project
// whose feed or cursor is unusable is logged and skipped, the others
// are still checked.
func (s *byProject) Check(ctx context.Context) error {
	vc, err := cache.NewVersionCache(CachePath(s.stateDir, s.site.Name), s.notifier)
	if err != nil {
		return fmt.Errorf("site %s: %w", s.site.Name, err)
	}

	for _, p := range s.site.Projects {
		if ctx.Err() != nil {
			break
		}
		s.checkProject(ctx, p, vc)
	}

	if err := vc.Save(); err != nil {
		return fmt.Errorf("site %s: %w", s.site.Name, err)
	}
	return nil
}

func (s *byProject) checkProject(ctx context.Context, p config.Project, vc *cache.VersionCache) {
	url := strings.ReplaceAll(s.site.URL, "{}", p.Name)
	s.log.Debug("checking project", "site", s.site.Name, "project", p.Name, "url", url)

	entries, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.log.Error("fetch feed", "site", s.site.Name, "project", p.Name, "url", url, "error", err)
		return
	}
	if len(entries) == 0 {
		s.log.Debug("empty feed", "site", s.site.Name, "project", p.Name)
		return
	}

	if p.Mode == config.SinceLastChecked {
		s.checkSinceLastChecked(p, entries, vc)
		return
	}
	s.checkLatest(p, entries[0], vc)
}

// checkLatest considers only the entry the feed presents first.
func (s *byProject) checkLatest(p config.Project, newest feed.Entry, vc *cache.VersionCache) {
	version := title.Version(newest.Title, p.Regex)
	vc.ReportIfChanged(p.Name, version)
	vc.Update(p.Name, version)
}

// checkSinceLastChecked walks every entry newer than the project's own
// cursor. The newest one becomes the cached version; the older ones are
// reported as catch-up lines without touching the cache.
func (s *byProject) checkSinceLastChecked(p config.Project, entries []feed.Entry, vc *cache.VersionCache) {
	cur, err := cache.NewCursor(projectCursorPath(s.stateDir, s.site.Name, p.Name))
	if err != nil {
		s.log.Error("skipping project", "site", s.site.Name, "project", p.Name, "error", err)
		return
	}

	fresh, err := feed.SelectNew(entries, cur)
	if err != nil {
		s.log.Error("skipping project", "site", s.site.Name, "project", p.Name, "error", err)
		return
	}

	if len(fresh) > 0 {
		newest := title.Version(fresh[0].Title, p.Regex)
		vc.ReportIfChanged(p.Name, newest)
		vc.Update(p.Name, newest)
		for _, e := range fresh[1:] {
			s.notifier.Notify(p.Name, title.Version(e.Title, p.Regex))
		}
	}

	if err := cur.Save(); err != nil {
		s.log.Error("save cursor", "site", s.site.Name, "project", p.Name, "error", err)
	}
}
