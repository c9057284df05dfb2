package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/contact-enricher/internal/model"
)

func TestAggregate_Separators(t *testing.T) {
	agg, ok := Aggregate([]model.PageFetchResult{
		{URL: "https://acme.io", Markdown: "Home"},
		{URL: "https://acme.io/about", Markdown: "About"},
	})
	require.True(t, ok)
	assert.Equal(t,
		"\n\n--- Content from https://acme.io ---\n\nHome"+
			"\n\n--- Content from https://acme.io/about ---\n\nAbout",
		agg.Text)
	assert.Equal(t, []string{"https://acme.io", "https://acme.io/about"}, agg.URLs)
}

func TestAggregate_FirstNonEmptyMetadataWins(t *testing.T) {
	agg, ok := Aggregate([]model.PageFetchResult{
		{URL: "https://acme.io", Markdown: "Home", Metadata: &model.PageMetadata{}},
		{URL: "https://acme.io/about", Markdown: "About", Metadata: &model.PageMetadata{Title: "About Acme"}},
		{URL: "https://acme.io/team", Markdown: "Team", Metadata: &model.PageMetadata{Title: "Team", Description: "later"}},
	})
	require.True(t, ok)
	require.NotNil(t, agg.Metadata)
	assert.Equal(t, "About Acme", agg.Metadata.Title)
	assert.Empty(t, agg.Metadata.Description, "later metadata never fills gaps")
}

func TestAggregate_MetadataFromBodylessPage(t *testing.T) {
	agg, ok := Aggregate([]model.PageFetchResult{
		{URL: "https://acme.io", Metadata: &model.PageMetadata{Title: "Jane Doe", Image: "https://acme.io/me.png"}},
		{URL: "https://acme.io/about", Markdown: "About", Metadata: &model.PageMetadata{Title: "About"}},
	})
	require.True(t, ok)
	require.NotNil(t, agg.Metadata)
	assert.Equal(t, "Jane Doe", agg.Metadata.Title)
	assert.Equal(t, []string{"https://acme.io/about"}, agg.URLs)
	assert.NotContains(t, agg.Text, "Content from https://acme.io ---")
}

func TestAggregate_MetadataOnlyIsNoContent(t *testing.T) {
	_, ok := Aggregate([]model.PageFetchResult{
		{URL: "https://acme.io", Metadata: &model.PageMetadata{Title: "Jane Doe"}},
	})
	assert.False(t, ok)
}

func TestAggregate_NoContent(t *testing.T) {
	_, ok := Aggregate(nil)
	assert.False(t, ok)

	_, ok = Aggregate([]model.PageFetchResult{{URL: "https://acme.io", Markdown: "  \n"}})
	assert.False(t, ok)
}

func TestAggregate_NoMetadata(t *testing.T) {
	agg, ok := Aggregate([]model.PageFetchResult{{URL: "https://acme.io", Markdown: "Home"}})
	require.True(t, ok)
	assert.Nil(t, agg.Metadata)
}
