// Package config loads the YAML file describing which sites to poll
// and which projects to track on each of them.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// SiteType tells how a site publishes releases.
type SiteType string

const (
	// TypeList marks a site with one feed announcing many projects.
	TypeList SiteType = "list"
	// TypeByProject marks a site with one feed per project.
	TypeByProject SiteType = "byproject"
)

// EntryMode selects which feed entries a by-project site considers.
type EntryMode int

const (
	// LatestOnly looks at the newest entry of the feed only.
	LatestOnly EntryMode = iota
	// SinceLastChecked walks every entry newer than the stored cursor.
	SinceLastChecked
)

// The configuration value that selects SinceLastChecked.
const sinceLastCheckedValue = "last checked"

// Config is the parsed configuration file. Sites keep the document
// order of the file.
type Config struct {
	Sites []Site
}

// Site is one feed source to poll.
type Site struct {
	Name     string
	Type     SiteType
	URL      string
	Entry    EntryMode
	Regex    *regexp.Regexp
	Multi    *regexp.Regexp
	Projects []Project
}

// Project is one tracked project within a site.
type Project struct {
	Name  string
	Regex *regexp.Regexp
	Mode  EntryMode
}

// SitesOfType returns the sites of the given type in document order.
func (c *Config) SitesOfType(t SiteType) []Site {
	var sites []Site
	for _, s := range c.Sites {
		if s.Type == t {
			sites = append(sites, s)
		}
	}
	return sites
}

type rawSite struct {
	Type     string       `yaml:"type"`
	URL      string       `yaml:"url"`
	Entry    *string      `yaml:"entry"`
	Regex    *string      `yaml:"regex"`
	Multi    *string      `yaml:"multiproject"`
	Projects []rawProject `yaml:"projects"`
}

type rawProject struct {
	Name  string
	Regex *string
	Entry *string
}

// UnmarshalYAML accepts either a bare project name or a mapping with
// name, regex and entry keys.
func (p *rawProject) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&p.Name)
	}

	var m struct {
		Name  string  `yaml:"name"`
		Regex *string `yaml:"regex"`
		Entry *string `yaml:"entry"`
	}
	if err := value.Decode(&m); err != nil {
		return err
	}
	if m.Name == "" {
		return errors.New("project without a name")
	}
	p.Name, p.Regex, p.Entry = m.Name, m.Regex, m.Entry
	return nil
}

// Load reads and validates the configuration file at path. Site order
// follows the document. All regexes are compiled here so a bad pattern
// fails the whole load instead of one check at poll time.
func Load(path string, log *slog.Logger) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, errors.New("no sites configured")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top level must map site names to site definitions")
	}

	cfg := &Config{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		node := root.Content[i+1]
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("site %q: mapping expected", name)
		}
		warnNullFields(name, node, log)

		var raw rawSite
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("site %q: %w", name, err)
		}
		site, err := buildSite(name, raw)
		if err != nil {
			return nil, err
		}
		cfg.Sites = append(cfg.Sites, site)
	}
	return cfg, nil
}

// A field left empty in the file ("regex:" with nothing after it)
// decodes as null and is treated as absent.
func warnNullFields(site string, node *yaml.Node, log *slog.Logger) {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i+1].Tag == "!!null" {
			log.Warn("configuration field has no value",
				"site", site, "field", node.Content[i].Value)
		}
	}
}

func buildSite(name string, raw rawSite) (Site, error) {
	s := Site{Name: name, URL: raw.URL}

	switch raw.Type {
	case string(TypeList):
		s.Type = TypeList
	case string(TypeByProject):
		s.Type = TypeByProject
	default:
		return Site{}, fmt.Errorf("site %q: unknown type %q", name, raw.Type)
	}

	if raw.Entry != nil {
		s.Entry = modeFor(*raw.Entry)
	}

	var err error
	if s.Regex, err = compileTitleRegex(raw.Regex); err != nil {
		return Site{}, fmt.Errorf("site %q: regex: %w", name, err)
	}
	if raw.Multi != nil {
		if s.Multi, err = regexp.Compile(*raw.Multi); err != nil {
			return Site{}, fmt.Errorf("site %q: multiproject: %w", name, err)
		}
	}

	for _, rp := range raw.Projects {
		p := Project{Name: rp.Name, Mode: s.Entry}
		if rp.Entry != nil {
			p.Mode = modeFor(*rp.Entry)
		}
		if p.Regex, err = compileTitleRegex(rp.Regex); err != nil {
			return Site{}, fmt.Errorf("site %q: project %q: regex: %w", name, rp.Name, err)
		}
		s.Projects = append(s.Projects, p)
	}
	return s, nil
}

func modeFor(value string) EntryMode {
	if value == sinceLastCheckedValue {
		return SinceLastChecked
	}
	return LatestOnly
}

// Title regexes match from the start of the title.
func compileTitleRegex(pattern *string) (*regexp.Regexp, error) {
	if pattern == nil {
		return nil, nil
	}
	return regexp.Compile("^(?:" + *pattern + ")")
}
