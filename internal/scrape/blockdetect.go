package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// DetectBlock checks a raw HTTP response for signs of anti-bot protection.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-cache-status") != "" ||
			strings.EqualFold(resp.Header.Get("server"), "cloudflare") {
			return true, BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))
	if bt := interstitial(lower, htmlTitle(lower)); bt != BlockNone {
		return true, bt
	}

	// JS-only shell: tiny body that asks for javascript, or a meta refresh.
	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && containsAny(lower, jsRequiredPhrases) {
			return true, BlockJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}

// IsBlockedContent reports whether scraped markdown is a challenge or
// captcha page rather than the site itself. Pages that merely mention a
// captcha or javascript are content.
func IsBlockedContent(text string) bool {
	content := strings.TrimSpace(text)
	if len(content) >= 1000 {
		return false
	}
	lower := strings.ToLower(content)
	return interstitial(lower, markdownTitle(lower)) != BlockNone
}

// Body phrases that only appear on challenge interstitials.
var (
	cloudflareMarkers = []string{
		"cf-browser-verification",
		"checking your browser",
		"checking if the site connection is secure",
		"ddos protection by cloudflare",
	}
	captchaMarkers = []string{
		"complete the captcha",
		"complete the recaptcha",
		"solve the captcha",
		"verify you are human",
		"please complete the security check",
	}
	jsRequiredPhrases = []string{
		"enable javascript",
		"javascript is required",
		"requires javascript",
	}
)

// Interstitial titles, matched as a prefix of the page title only.
var challengeTitles = []string{
	"just a moment",
	"attention required",
	"access denied",
	"403 forbidden",
	"security check",
}

func interstitial(lower, title string) BlockType {
	if containsAny(lower, cloudflareMarkers) {
		return BlockCloudflare
	}
	for _, t := range challengeTitles {
		if strings.HasPrefix(title, t) {
			return BlockCloudflare
		}
	}
	if containsAny(lower, captchaMarkers) {
		return BlockCaptcha
	}
	return BlockNone
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// htmlTitle returns the trimmed <title> text of a lower-cased document.
func htmlTitle(lower string) string {
	start := strings.Index(lower, "<title")
	if start < 0 {
		return ""
	}
	open := strings.IndexByte(lower[start:], '>')
	if open < 0 {
		return ""
	}
	rest := lower[start+open+1:]
	end := strings.Index(rest, "</title")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// markdownTitle returns the first non-empty line with heading marks removed.
func markdownTitle(lower string) string {
	for _, line := range strings.Split(lower, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}
