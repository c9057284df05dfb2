package enrich

import (
	"strings"

	"github.com/sells-group/contact-enricher/internal/model"
)

// MsgNoContent is the error text returned when no candidate page had content.
const MsgNoContent = "Could not scrape any content from the domain"

// sectionHeader precedes every page's text in the aggregated buffer.
func sectionHeader(url string) string {
	return "\n\n--- Content from " + url + " ---\n\n"
}

// Aggregate concatenates page texts in fetch order and keeps the metadata of
// the first page that has any, body or not. It returns ok=false when no page
// has text.
func Aggregate(pages []model.PageFetchResult) (model.AggregatedContent, bool) {
	var (
		b     strings.Builder
		urls  []string
		metas []*model.PageMetadata
	)
	for _, p := range pages {
		metas = append(metas, p.Metadata)
		if !p.HasBody() {
			continue
		}
		b.WriteString(sectionHeader(p.URL))
		b.WriteString(p.Markdown)
		urls = append(urls, p.URL)
	}
	if len(urls) == 0 {
		return model.AggregatedContent{}, false
	}

	meta := FirstNonNil(func(m *model.PageMetadata) bool { return !m.IsEmpty() }, metas...)
	return model.AggregatedContent{
		Text:     b.String(),
		Metadata: meta,
		URLs:     urls,
	}, true
}
