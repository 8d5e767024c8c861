package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/scrapesense"
	main "github.com/fwojciec/scrapesense/cmd/scrapesense"
	"github.com/fwojciec/scrapesense/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const targetsYAML = `targets:
  - id: widget
    url: https://example.com/widget
    fields:
      - name: product_title
        description: The main H1 title of the product
        selector: h1
      - name: price
        description: Product price
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAddCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("creates targets from YAML", func(t *testing.T) {
		t.Parallel()

		var created []*scrapesense.Target
		targets := &mock.TargetService{
			CreateTargetFn: func(_ context.Context, tg *scrapesense.Target) error {
				created = append(created, tg)
				return nil
			},
		}
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Targets: targets}

		cmd := &main.AddCmd{Files: []string{writeFile(t, "targets.yaml", targetsYAML)}}

		err := cmd.Run(deps)

		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, "widget", created[0].ID)
		require.Len(t, created[0].Fields, 2)
		assert.Equal(t, "h1", created[0].Fields[0].Selector)
		assert.Empty(t, created[0].Fields[1].Selector)
		assert.Contains(t, stdout.String(), "Added target widget (2 fields)")
		assert.Empty(t, stderr.String())
	})

	t.Run("upserts with force", func(t *testing.T) {
		t.Parallel()

		upserted := false
		targets := &mock.TargetService{
			UpsertTargetFn: func(context.Context, *scrapesense.Target) error {
				upserted = true
				return nil
			},
		}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}, Targets: targets}

		cmd := &main.AddCmd{Files: []string{writeFile(t, "targets.yaml", targetsYAML)}, Force: true}

		require.NoError(t, cmd.Run(deps))
		assert.True(t, upserted)
	})

	t.Run("hints at force when the target exists", func(t *testing.T) {
		t.Parallel()

		targets := &mock.TargetService{
			CreateTargetFn: func(context.Context, *scrapesense.Target) error {
				return scrapesense.Errorf(scrapesense.EINVALID, "target already exists")
			},
		}
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Targets: targets}

		cmd := &main.AddCmd{Files: []string{writeFile(t, "targets.yaml", targetsYAML)}}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "target already exists")
		assert.Contains(t, stderr.String(), "--force")
		assert.Empty(t, stdout.String())
	})

	t.Run("rejects an invalid file", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Targets: &mock.TargetService{}}

		cmd := &main.AddCmd{Files: []string{writeFile(t, "targets.yaml", "targets: []\n")}}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, scrapesense.EINVALID, scrapesense.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})
}
