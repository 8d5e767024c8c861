package scrapesense_test

import (
	"testing"

	"github.com/fwojciec/scrapesense"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarget_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *scrapesense.Target {
		return &scrapesense.Target{
			ID:  "widget",
			URL: "https://example.com/widget",
			Fields: []scrapesense.Field{
				{Name: "title", Description: "Product title", Selector: "h1"},
				{Name: "price", Description: "Product price"},
			},
		}
	}

	t.Run("accepts a field without a selector", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, valid().Validate())
	})

	tests := []struct {
		name   string
		modify func(*scrapesense.Target)
	}{
		{"missing id", func(tg *scrapesense.Target) { tg.ID = "" }},
		{"missing url", func(tg *scrapesense.Target) { tg.URL = "" }},
		{"empty field name", func(tg *scrapesense.Target) { tg.Fields[1].Name = "" }},
		{"duplicate field name", func(tg *scrapesense.Target) { tg.Fields[1].Name = "title" }},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			t.Parallel()

			tg := valid()
			tt.modify(tg)

			err := tg.Validate()

			require.Error(t, err)
			assert.Equal(t, scrapesense.EINVALID, scrapesense.ErrorCode(err))
		})
	}
}

func TestTarget_Clone(t *testing.T) {
	t.Parallel()

	orig := &scrapesense.Target{
		ID:     "widget",
		URL:    "https://example.com/widget",
		Fields: []scrapesense.Field{{Name: "title", Selector: "h1"}},
	}

	c := orig.Clone()
	c.Fields[0].Selector = "h2.title"
	c.IsBroken = true

	assert.Equal(t, "h1", orig.Fields[0].Selector)
	assert.False(t, orig.IsBroken)
}

func TestTarget_Field(t *testing.T) {
	t.Parallel()

	tg := &scrapesense.Target{
		Fields: []scrapesense.Field{{Name: "title"}, {Name: "price"}},
	}

	f := tg.Field("price")
	require.NotNil(t, f)
	f.Selector = "span.price"

	assert.Equal(t, "span.price", tg.Fields[1].Selector)
	assert.Nil(t, tg.Field("sku"))
}

func TestField_HasSelector(t *testing.T) {
	t.Parallel()

	assert.True(t, (&scrapesense.Field{Selector: "h1"}).HasSelector())
	assert.False(t, (&scrapesense.Field{Selector: "  "}).HasSelector())
	assert.False(t, (&scrapesense.Field{}).HasSelector())
}
