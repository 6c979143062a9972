package clasp

import (
	"fmt"
	"regexp"
	"strings"
)

// RemoteProject is one row of clasp list output.
type RemoteProject struct {
	Name     string
	ScriptID string
	URL      string
}

// ListResult is the parsed form of clasp list output. Unrecognized counts
// non-empty lines that matched no known pattern; UnknownFormat is set when
// the output was non-empty but produced no rows at all, which usually
// means clasp changed its text format.
type ListResult struct {
	Projects      []RemoteProject
	Unrecognized  int
	UnknownFormat bool
}

// listRow matches "name – https://script.google.com/d/<id>/edit". clasp
// has used both an en dash and a hyphen as the separator across versions.
var listRow = regexp.MustCompile(`^(.*?)\s+[–-]\s+(https://script\.google\.com/d/([^/\s]+)/edit)\s*$`)

// noProjects lines are informational, not rows.
var noProjects = regexp.MustCompile(`(?i)^no clasp projects`)

// ParseProjectList parses clasp list output. It never fails: unparseable
// output comes back as an empty list with UnknownFormat set.
func ParseProjectList(stdout string) *ListResult {
	result := &ListResult{}
	sawContent := false

	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if noProjects.MatchString(line) {
			return result
		}
		sawContent = true
		m := listRow.FindStringSubmatch(line)
		if m == nil {
			result.Unrecognized++
			continue
		}
		result.Projects = append(result.Projects, RemoteProject{
			Name:     strings.TrimSpace(m[1]),
			ScriptID: m[3],
			URL:      m[2],
		})
	}

	if sawContent && len(result.Projects) == 0 {
		result.UnknownFormat = true
	}
	return result
}

// pullFile matches clasp's per-file tree lines, e.g. "└─ src/Code.js".
var pullFile = regexp.MustCompile(`^└─\s+(.+)$`)

// pullSummary matches the trailing "Pulled N files." / "Cloned N files."
// line.
var pullSummary = regexp.MustCompile(`(?i)^(?:pulled|cloned)\s+(\d+)\s+files?\.?$`)

// ParsePullOutput extracts the file names a pull (or clone) wrote. Output
// that contains content but neither file lines nor a summary is reported
// as an unknown format.
func ParsePullOutput(stdout string) ([]string, error) {
	var files []string
	sawContent := false
	sawSummary := false

	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sawContent = true
		if m := pullFile.FindStringSubmatch(line); m != nil {
			files = append(files, strings.TrimSpace(m[1]))
			continue
		}
		if pullSummary.MatchString(line) {
			sawSummary = true
		}
	}

	if sawContent && len(files) == 0 && !sawSummary {
		return nil, fmt.Errorf("unknown output format: %q", firstLine(stdout))
	}
	return files, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
