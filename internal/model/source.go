package model

import "strings"

// PageMetadata is the head metadata of a fetched page.
type PageMetadata struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// IsEmpty reports whether no metadata field is set.
func (m *PageMetadata) IsEmpty() bool {
	return m == nil || (m.Title == "" && m.Description == "" && m.Image == "")
}

// PageFetchResult is one successfully fetched candidate page. Failed fetches
// produce no result. A page may carry metadata with an empty body.
type PageFetchResult struct {
	URL      string        `json:"url"`
	Markdown string        `json:"markdown"`
	Metadata *PageMetadata `json:"metadata,omitempty"`
	Source   string        `json:"source,omitempty"` // scraper that produced it
}

// HasBody reports whether the page has any non-blank text.
func (p *PageFetchResult) HasBody() bool {
	return p != nil && strings.TrimSpace(p.Markdown) != ""
}

// AggregatedContent is the concatenated text of all fetched pages plus the
// first non-empty metadata seen in fetch order.
type AggregatedContent struct {
	Text     string        `json:"text"`
	Metadata *PageMetadata `json:"metadata,omitempty"`
	URLs     []string      `json:"urls"`
}
