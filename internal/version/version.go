// Package version holds the release number shared by the command line
// and the feed fetcher's User-Agent header.
package version

// Number is the current release.
const Number = "1.6.0"
