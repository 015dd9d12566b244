package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Compiled patterns compare by their source text.
var regexCmp = cmp.Comparer(func(a, b *regexp.Regexp) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
})

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "versions.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     *Config
		wantErr  bool
	}{
		{
			name: "list site with regex and projects",
			contents: `freshcode.club:
  type: list
  url: https://freshcode.club/projects.rss
  regex: '([\w\s]+)\s([\d.]+)'
  multiproject: ' and | & '
  projects:
    - curl
    - tmux
`,
			want: &Config{Sites: []Site{
				{
					Name:  "freshcode.club",
					Type:  TypeList,
					URL:   "https://freshcode.club/projects.rss",
					Regex: regexp.MustCompile(`^(?:([\w\s]+)\s([\d.]+))`),
					Multi: regexp.MustCompile(` and | & `),
					Projects: []Project{
						{Name: "curl"},
						{Name: "tmux"},
					},
				},
			}},
		},
		{
			name: "byproject site with per-project overrides",
			contents: `github.com:
  type: byproject
  url: https://github.com/{}/releases.atom
  entry: last checked
  projects:
    - odrevet/versions
    - name: tmux/tmux
      regex: 'v?([\d.]+)'
      entry: latest
`,
			want: &Config{Sites: []Site{
				{
					Name:  "github.com",
					Type:  TypeByProject,
					URL:   "https://github.com/{}/releases.atom",
					Entry: SinceLastChecked,
					Projects: []Project{
						{Name: "odrevet/versions", Mode: SinceLastChecked},
						{
							Name:  "tmux/tmux",
							Regex: regexp.MustCompile(`^(?:v?([\d.]+))`),
							Mode:  LatestOnly,
						},
					},
				},
			}},
		},
		{
			name: "unknown site type",
			contents: `somewhere:
  type: scraping
  url: https://example.com/
`,
			wantErr: true,
		},
		{
			name: "missing site type",
			contents: `somewhere:
  url: https://example.com/
`,
			wantErr: true,
		},
		{
			name: "invalid site regex",
			contents: `somewhere:
  type: list
  url: https://example.com/rss
  regex: '([invalid'
`,
			wantErr: true,
		},
		{
			name: "invalid multiproject regex",
			contents: `somewhere:
  type: list
  url: https://example.com/rss
  multiproject: '*bad'
`,
			wantErr: true,
		},
		{
			name: "invalid project regex",
			contents: `somewhere:
  type: byproject
  url: https://example.com/{}.rss
  projects:
    - name: thing
      regex: '([invalid'
`,
			wantErr: true,
		},
		{
			name: "project mapping without a name",
			contents: `somewhere:
  type: byproject
  url: https://example.com/{}.rss
  projects:
    - regex: 'v([\d.]+)'
`,
			wantErr: true,
		},
		{
			name:     "empty file",
			contents: "",
			wantErr:  true,
		},
		{
			name:     "top level is not a mapping",
			contents: "just a string\n",
			wantErr:  true,
		},
		{
			name:     "site definition is not a mapping",
			contents: "somewhere: [list, url]\n",
			wantErr:  true,
		},
		{
			name:     "malformed yaml",
			contents: "somewhere:\n\ttype: list\n",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.contents)
			got, err := Load(path, discardLogger())

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, regexCmp); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), discardLogger())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestLoadKeepsDocumentOrder(t *testing.T) {
	path := writeConfig(t, `zebra.org:
  type: list
  url: https://zebra.org/rss
alpha.net:
  type: byproject
  url: https://alpha.net/{}.atom
middle.io:
  type: list
  url: https://middle.io/rss
`)
	cfg, err := Load(path, discardLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var got []string
	for _, s := range cfg.Sites {
		got = append(got, s.Name)
	}
	want := []string{"zebra.org", "alpha.net", "middle.io"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("site order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadWarnsOnNullField(t *testing.T) {
	path := writeConfig(t, `freshcode.club:
  type: list
  url: https://freshcode.club/projects.rss
  regex:
  projects:
    - curl
`)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	cfg, err := Load(path, log)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Sites[0].Regex != nil {
		t.Errorf("null regex should load as absent, got %v", cfg.Sites[0].Regex)
	}
	logged := buf.String()
	if !strings.Contains(logged, "field=regex") || !strings.Contains(logged, "site=freshcode.club") {
		t.Errorf("expected a warning naming the field and site, got %q", logged)
	}
}

func TestLoadAnchorsTitleRegex(t *testing.T) {
	path := writeConfig(t, `freshcode.club:
  type: list
  url: https://freshcode.club/projects.rss
  regex: '(\w+)\s([\d.]+)'
`)
	cfg, err := Load(path, discardLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	re := cfg.Sites[0].Regex
	if m := re.FindStringSubmatch("curl 7.80.0"); m == nil {
		t.Error("expected match at the start of the title")
	}
	// The pattern only applies at the start, not anywhere in the title.
	if m := re.FindStringSubmatch("GNU tar 1.34"); m != nil {
		t.Errorf("expected no match away from the start, got %v", m)
	}
}

func TestSitesOfType(t *testing.T) {
	path := writeConfig(t, `one.org:
  type: list
  url: https://one.org/rss
two.com:
  type: byproject
  url: https://two.com/{}.atom
three.net:
  type: list
  url: https://three.net/rss
`)
	cfg, err := Load(path, discardLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var lists []string
	for _, s := range cfg.SitesOfType(TypeList) {
		lists = append(lists, s.Name)
	}
	if diff := cmp.Diff([]string{"one.org", "three.net"}, lists); diff != "" {
		t.Errorf("list sites mismatch (-want +got):\n%s", diff)
	}

	var byProject []string
	for _, s := range cfg.SitesOfType(TypeByProject) {
		byProject = append(byProject, s.Name)
	}
	if diff := cmp.Diff([]string{"two.com"}, byProject); diff != "" {
		t.Errorf("byproject sites mismatch (-want +got):\n%s", diff)
	}
}
