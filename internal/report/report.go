// Package report writes the user-facing output: one line per new
// version, and the cache listings.
package report

import (
	"fmt"
	"io"

	"github.com/dupgit/versions/internal/cache"
)

// Printer writes report lines to a single destination, stdout in
// production. Diagnostics never go through it.
type Printer struct {
	w io.Writer
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Notify prints one "<project> <version>" line.
func (p *Printer) Notify(project, version string) {
	fmt.Fprintf(p.w, "%s %s\n", project, version)
}

// Listing prints a site name followed by its cached projects, one
// indented "<project> <version>" line each, and a closing blank line.
func (p *Printer) Listing(site string, entries []cache.ProjectVersion) {
	fmt.Fprintf(p.w, "%s:\n", site)
	for _, e := range entries {
		fmt.Fprintf(p.w, "\t%s %s\n", e.Project, e.Version)
	}
	fmt.Fprintln(p.w)
}
