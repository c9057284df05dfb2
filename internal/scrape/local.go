package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sells-group/contact-enricher/internal/model"
)

const maxLocalBody = 512 * 1024

// LocalScraper fetches HTML directly and renders it as light markdown. It
// costs no API credits and is tried last, after the hosted scrapers.
type LocalScraper struct {
	client *http.Client
}

// NewLocalScraper creates a LocalScraper with conservative timeouts.
func NewLocalScraper() *LocalScraper {
	return &LocalScraper{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

func (l *LocalScraper) Name() string           { return "local_http" }
func (l *LocalScraper) Supports(_ string) bool { return true }

// Scrape fetches a URL, rejects anti-bot pages, and converts the body.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*model.PageFetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; ContactEnricher/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLocalBody))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, bt := DetectBlock(resp, body); blocked {
		return nil, eris.Wrapf(ErrBlocked, "local_http: blocked (%s)", bt)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: parse html")
	}

	base := resp.Request.URL
	text := renderMarkdown(doc, base)
	if len(text) < 100 {
		text = ""
	}

	result := &model.PageFetchResult{
		URL:      targetURL,
		Markdown: text,
		Source:   l.Name(),
	}
	if meta := extractMetadata(doc); !meta.IsEmpty() {
		result.Metadata = meta
	}
	if text == "" && result.Metadata == nil {
		return nil, ErrEmptyPage
	}
	return result, nil
}

// extractMetadata reads <title>, the description meta tag, and OpenGraph
// tags from the document head.
func extractMetadata(doc *html.Node) *model.PageMetadata {
	var title, desc, ogTitle, ogDesc, image string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Title:
				if title == "" && n.FirstChild != nil {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case atom.Meta:
				key := strings.ToLower(attr(n, "property"))
				if key == "" {
					key = strings.ToLower(attr(n, "name"))
				}
				content := strings.TrimSpace(attr(n, "content"))
				switch key {
				case "description":
					desc = content
				case "og:title":
					ogTitle = content
				case "og:description":
					ogDesc = content
				case "og:image", "twitter:image":
					if image == "" {
						image = content
					}
				}
			case atom.Body:
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return &model.PageMetadata{
		Title:       firstNonBlank(title, ogTitle),
		Description: firstNonBlank(desc, ogDesc),
		Image:       image,
	}
}

// renderMarkdown flattens the body to text, keeping headings, list items,
// and absolute links (so social profile URLs survive).
func renderMarkdown(doc *html.Node, base *url.URL) string {
	var b strings.Builder

	var walk func(n *html.Node, w *strings.Builder)
	walk = func(n *html.Node, w *strings.Builder) {
		switch n.Type {
		case html.TextNode:
			w.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Head, atom.Script, atom.Style, atom.Noscript, atom.Svg, atom.Template, atom.Iframe:
				return
			case atom.A:
				var inner strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c, &inner)
				}
				label := strings.Join(strings.Fields(inner.String()), " ")
				href := resolveHref(base, attr(n, "href"))
				switch {
				case href == "":
					w.WriteString(label)
				case label == "":
					fmt.Fprintf(w, " %s ", href)
				default:
					fmt.Fprintf(w, "[%s](%s)", label, href)
				}
				return
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				level := int(n.Data[1] - '0')
				w.WriteString("\n\n" + strings.Repeat("#", level) + " ")
			case atom.Li:
				w.WriteString("\n- ")
			case atom.Br, atom.P, atom.Div, atom.Section, atom.Article, atom.Header,
				atom.Footer, atom.Nav, atom.Main, atom.Ul, atom.Ol, atom.Tr, atom.Table:
				w.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, w)
		}
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.P:
				w.WriteString("\n")
			}
		}
	}
	walk(doc, &b)

	return collapseLines(b.String())
}

// collapseLines squeezes runs of spaces and keeps at most one blank line.
func collapseLines(s string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || line == "-" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}
