package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/scrapesense/mock"
	sslog "github.com/fwojciec/scrapesense/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSuggester_Suggest(t *testing.T) {
	t.Parallel()

	t.Run("logs reply and prompt size", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Suggester{
			SuggestFn: func(context.Context, string) (string, error) {
				return "h2.title", nil
			},
		}
		reply, err := sslog.NewLoggingSuggester(inner, logger).Suggest(context.Background(), "prompt")

		require.NoError(t, err)
		assert.Equal(t, "h2.title", reply)
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "msg=suggest")
		assert.Contains(t, output, "prompt_bytes=6")
		assert.Contains(t, output, "reply=h2.title")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs failure at warn level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Suggester{
			SuggestFn: func(context.Context, string) (string, error) {
				return "", errors.New("quota exceeded")
			},
		}

		_, err := sslog.NewLoggingSuggester(inner, logger).Suggest(context.Background(), "prompt")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "quota exceeded")
	})
}
