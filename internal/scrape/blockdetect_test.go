package scrape

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectBlock(t *testing.T) {
	tests := []struct {
		name string
		resp *http.Response
		body string
		want BlockType
	}{
		{
			name: "cloudflare 403 header",
			resp: &http.Response{StatusCode: 403, Header: http.Header{"Cf-Ray": {"abc123"}}},
			want: BlockCloudflare,
		},
		{
			name: "cloudflare 503 server",
			resp: &http.Response{StatusCode: 503, Header: http.Header{"Server": {"cloudflare"}}},
			want: BlockCloudflare,
		},
		{
			name: "cloudflare interstitial title",
			resp: &http.Response{StatusCode: 200, Header: http.Header{}},
			body: "<html><head><title>Just a moment...</title></head><body></body></html>",
			want: BlockCloudflare,
		},
		{
			name: "captcha challenge",
			resp: &http.Response{StatusCode: 200, Header: http.Header{}},
			body: "<html><body>Please complete the reCAPTCHA to continue</body></html>",
			want: BlockCaptcha,
		},
		{
			name: "js shell",
			resp: &http.Response{StatusCode: 200, Header: http.Header{}},
			body: "<html><noscript>Enable JavaScript to continue</noscript></html>",
			want: BlockJSShell,
		},
		{
			name: "nil response",
			want: BlockNone,
		},
		{
			name: "clean page",
			resp: &http.Response{StatusCode: 200, Header: http.Header{}},
			body: "<html><body>Welcome to Acme Corp. We build great products.</body></html>",
			want: BlockNone,
		},
		{
			name: "contact form with recaptcha widget",
			resp: &http.Response{StatusCode: 200, Header: http.Header{}},
			body: `<html><head><title>Jane Doe</title><script src="https://www.google.com/recaptcha/api.js"></script></head>` +
				`<body><form><div class="g-recaptcha"></div></form></body></html>`,
			want: BlockNone,
		},
		{
			name: "noscript analytics pixel",
			resp: &http.Response{StatusCode: 200, Header: http.Header{}},
			body: `<html><head><script type="text/javascript">track()</script></head>` +
				`<body><noscript><img src="/px.gif"></noscript><p>Hi, I'm Jane.</p></body></html>`,
			want: BlockNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, bt := DetectBlock(tt.resp, []byte(tt.body))
			assert.Equal(t, tt.want != BlockNone, blocked)
			assert.Equal(t, tt.want, bt)
		})
	}
}

func TestIsBlockedContent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"checking browser", "Just a moment...\n\nChecking your browser before accessing acme.io", true},
		{"attention required title", "# Attention Required! | Cloudflare\n\nSorry, you have been blocked", true},
		{"captcha challenge", "Please verify you are human to continue.", true},
		{"plain content", "# Acme\n\nWe build widgets for small teams.", false},
		{
			"recaptcha form footer",
			"# Jane Doe\n\nI help founders ship their first product. Previously CTO at Acme.\n\n" +
				"[Contact me](/contact)\n\nThis site is protected by reCAPTCHA and the Google Privacy Policy and Terms of Service apply.",
			false,
		},
		{
			"javascript hint",
			"# Jane's notes\n\nPlease enable JavaScript in your browser for the full experience. Posts below.",
			false,
		},
		{
			"moment later in text",
			"# Jane Doe\n\nJust a moment of your time: I write about product design.",
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBlockedContent(tt.text))
		})
	}
}

func TestIsBlockedContent_LongPage(t *testing.T) {
	long := "Just a moment...\n\nWe route traffic through Cloudflare and run a bug bounty challenge. " +
		strings.Repeat("More about our platform. ", 60)
	assert.False(t, IsBlockedContent(long), "long pages are real content")
}
