package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/scrapesense"
	"github.com/fwojciec/scrapesense/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReport(targetID string) *scrapesense.RunReport {
	return &scrapesense.RunReport{
		ID:         "run-1",
		TargetID:   targetID,
		URL:        "https://example.com/widget",
		MarkupHash: "abc123",
		StartedAt:  time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		Fields: []scrapesense.FieldReport{
			{Name: "product_title", Outcome: scrapesense.StatusNotFound, Selector: "h2.title"},
			{Name: "price", Outcome: scrapesense.StatusSuccess, Selector: "span.price"},
		},
	}
}

func TestSnapshotStore_SaveSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("writes markup under the target directory", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		store := fs.NewSnapshotStore(base)

		path, err := store.SaveSnapshot(context.Background(), newReport("widget"), "<h2 class=\"title\">Widget Pro</h2>")

		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "widget", "20260301T123000Z-abc123.html"), path)
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "<h2 class=\"title\">Widget Pro</h2>")
		assert.NoFileExists(t, path+".tmp")
	})

	t.Run("records the broken fields in the header", func(t *testing.T) {
		t.Parallel()

		content := fs.FormatSnapshot(newReport("widget"), "<html></html>")

		assert.Contains(t, content, "source: https://example.com/widget")
		assert.Contains(t, content, "run: run-1")
		assert.Contains(t, content, `broken: product_title (not_found, selector "h2.title")`)
		assert.NotContains(t, content, "broken: price")
	})

	t.Run("rejects target IDs that escape the root", func(t *testing.T) {
		t.Parallel()

		store := fs.NewSnapshotStore(t.TempDir())

		for _, id := range []string{"", "..", "../evil", "a/b", "/abs"} {
			_, err := store.SaveSnapshot(context.Background(), newReport(id), "<html></html>")

			require.Error(t, err, id)
			assert.Equal(t, scrapesense.EINVALID, scrapesense.ErrorCode(err), id)
		}
	})

	t.Run("honours a cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fs.NewSnapshotStore(t.TempDir()).SaveSnapshot(ctx, newReport("widget"), "<html></html>")

		assert.ErrorIs(t, err, context.Canceled)
	})
}
