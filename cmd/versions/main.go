package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dupgit/versions/internal/cache"
	"github.com/dupgit/versions/internal/config"
	"github.com/dupgit/versions/internal/feed"
	"github.com/dupgit/versions/internal/report"
	"github.com/dupgit/versions/internal/site"
	"github.com/dupgit/versions/internal/version"
)

func main() {
	var (
		cfgPath     string
		listCache   bool
		debug       bool
		showVersion bool
	)
	flag.StringVar(&cfgPath, "f", "", "path to the configuration file")
	flag.StringVar(&cfgPath, "file", "", "path to the configuration file")
	flag.BoolVar(&listCache, "l", false, "list cached versions and exit")
	flag.BoolVar(&listCache, "list-cache", false, "list cached versions and exit")
	flag.BoolVar(&debug, "d", false, "enable debug logging")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.BoolVar(&showVersion, "v", false, "print the program version and exit")
	flag.BoolVar(&showVersion, "version", false, "print the program version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("versions %s\n", version.Number)
		return
	}

	log := newLogger(debug)

	home, err := os.UserHomeDir()
	if err != nil {
		log.Error("locate home directory", "error", err)
		os.Exit(1)
	}
	configDir := filepath.Join(home, ".config", "versions")
	stateDir := filepath.Join(home, ".local", "versions")
	for _, dir := range []string{configDir, stateDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}
	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, "versions.yaml")
	}

	cfg, err := config.Load(cfgPath, log)
	if err != nil {
		log.Error("load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	rep := report.New(os.Stdout)

	if listCache {
		listCaches(cfg, stateDir, rep, log)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fetcher := feed.New(&http.Client{Timeout: 30 * time.Second})

	log.Debug("starting checks", "config", cfgPath, "sites", len(cfg.Sites))
	checkSites(ctx, cfg, stateDir, fetcher, rep, log)
}

// checkSites polls every configured site. A failing site is logged and
// does not stop the run or change the exit code.
func checkSites(ctx context.Context, cfg *config.Config, stateDir string, f site.Fetcher, n cache.Notifier, log *slog.Logger) {
	sites := cfg.SitesOfType(config.TypeByProject)
	sites = append(sites, cfg.SitesOfType(config.TypeList)...)
	for _, sc := range sites {
		if ctx.Err() != nil {
			return
		}
		if err := site.New(sc, stateDir, f, n, log).Check(ctx); err != nil {
			log.Error("check site", "site", sc.Name, "error", err)
		}
	}
}

// listCaches prints the cached versions of every configured site in
// configuration order.
func listCaches(cfg *config.Config, stateDir string, rep *report.Printer, log *slog.Logger) {
	for _, sc := range cfg.Sites {
		vc, err := cache.NewVersionCache(site.CachePath(stateDir, sc.Name), rep)
		if err != nil {
			log.Error("load cache", "site", sc.Name, "error", err)
			continue
		}
		rep.Listing(sc.Name, vc.Sorted())
	}
}

func newLogger(debug bool) *slog.Logger {
	lvl := slog.LevelInfo
	if debug {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
