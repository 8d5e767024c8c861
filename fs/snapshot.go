// Package fs stores page snapshots on the local filesystem.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/scrapesense"
)

// Ensure SnapshotStore implements scrapesense.SnapshotStore at compile time.
var _ scrapesense.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore writes each snapshot to baseDir/<target>/<time>-<hash>.html.
// Files are written to a temporary name and renamed into place, so a
// snapshot is either complete or absent.
type SnapshotStore struct {
	baseDir string
}

// NewSnapshotStore creates a new SnapshotStore rooted at baseDir.
func NewSnapshotStore(baseDir string) *SnapshotStore {
	return &SnapshotStore{baseDir: baseDir}
}

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, report *scrapesense.RunReport, markup string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	relPath, err := SnapshotPath(report)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(s.baseDir, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(FormatSnapshot(report, markup)), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	return fullPath, nil
}

// SnapshotPath returns the path of a report's snapshot relative to the
// store root. Target IDs that would escape the root are rejected.
func SnapshotPath(report *scrapesense.RunReport) (string, error) {
	if report.TargetID == "" || !filepath.IsLocal(report.TargetID) || strings.ContainsAny(report.TargetID, `/\`) {
		return "", scrapesense.Errorf(scrapesense.EINVALID, "target ID %q cannot be used as a directory name", report.TargetID)
	}
	name := fmt.Sprintf("%s-%s.html", report.StartedAt.UTC().Format("20060102T150405Z"), report.MarkupHash)
	return filepath.Join(report.TargetID, name), nil
}

// FormatSnapshot prefixes markup with an HTML comment describing the run.
func FormatSnapshot(report *scrapesense.RunReport, markup string) string {
	var b strings.Builder
	b.WriteString("<!--\n")
	b.WriteString("source: ")
	b.WriteString(report.URL)
	b.WriteString("\nrun: ")
	b.WriteString(report.ID)
	b.WriteString("\nfetched: ")
	b.WriteString(report.StartedAt.UTC().Format("2006-01-02T15:04:05Z"))
	for _, f := range report.Fields {
		if f.Outcome != scrapesense.StatusSuccess {
			fmt.Fprintf(&b, "\nbroken: %s (%s, selector %q)", f.Name, f.Outcome, f.Selector)
		}
	}
	b.WriteString("\n-->\n")
	b.WriteString(markup)
	return b.String()
}
