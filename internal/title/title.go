// Package title extracts project names and versions from feed entry titles.
package title

import (
	"regexp"
	"strings"
	"unicode"
)

// Extract derives a project name and a version from an entry title.
// If re is non-nil and matches the title with at least two capture
// groups, group 1 is the project and group 2 is the version.
// Otherwise the trimmed title is split on its first run of whitespace:
// the first field is the project and the remainder is the version.
// A title without whitespace yields the whole title and an empty version.
func Extract(s string, re *regexp.Regexp) (project, version string) {
	if re != nil {
		if m := re.FindStringSubmatch(s); len(m) >= 3 {
			return m[1], m[2]
		}
	}
	return split(s)
}

// Version extracts a version from a release title. If re is non-nil and
// matches the title with at least one capture group, group 1 is returned.
// Otherwise the title itself is the version.
func Version(s string, re *regexp.Regexp) string {
	if re != nil {
		if m := re.FindStringSubmatch(s); len(m) >= 2 {
			return m[1]
		}
	}
	return s
}

// SplitMulti splits a title announcing several releases at once into
// per-release sub-titles. A nil separator yields the title unchanged.
func SplitMulti(s string, sep *regexp.Regexp) []string {
	if sep == nil {
		return []string{s}
	}
	return sep.Split(s, -1)
}

func split(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}
