package enrich

import (
	"regexp"
	"strings"

	"github.com/sells-group/contact-enricher/internal/model"
)

// PlatformMatcher recognizes profile URLs of one social platform.
type PlatformMatcher interface {
	Platform() model.Platform
	// Username parses the handle out of a profile URL. ok is false when the
	// URL does not match the platform's pattern.
	Username(url string) (username string, ok bool)
	// FindAll returns every profile URL of the platform found in text, in
	// order of appearance.
	FindAll(text string) []string
	// IsLabel reports whether a model-reported platform label names this
	// platform.
	IsLabel(label string) bool
	// ExtractedURL returns the platform's URL from the model output.
	ExtractedURL(d *model.ExtractedDossier) string
}

// urlPrefix keeps a host like x.com from matching inside netflix.com.
const urlPrefix = `(?:^|[^A-Za-z0-9.-])`

// regexMatcher is a PlatformMatcher driven by one pattern. Group 1 is the
// whole profile URL and group 2 the username.
type regexMatcher struct {
	platform model.Platform
	pattern  *regexp.Regexp
	labels   []string
	reserved map[string]bool
	field    func(d *model.ExtractedDossier) string
}

func (m *regexMatcher) Platform() model.Platform { return m.platform }

func (m *regexMatcher) Username(url string) (string, bool) {
	sub := m.pattern.FindStringSubmatch(strings.TrimSpace(url))
	if len(sub) < 3 || m.reserved[strings.ToLower(sub[2])] {
		return "", false
	}
	return sub[2], true
}

func (m *regexMatcher) FindAll(text string) []string {
	var urls []string
	for _, sub := range m.pattern.FindAllStringSubmatch(text, -1) {
		if m.reserved[strings.ToLower(sub[2])] {
			continue
		}
		urls = append(urls, sub[1])
	}
	return urls
}

func (m *regexMatcher) IsLabel(label string) bool {
	label = strings.TrimSpace(label)
	for _, l := range m.labels {
		if strings.EqualFold(label, l) {
			return true
		}
	}
	return false
}

func (m *regexMatcher) ExtractedURL(d *model.ExtractedDossier) string {
	if d == nil || m.field == nil {
		return ""
	}
	return strings.TrimSpace(m.field(d))
}

// MatcherSpec describes a regex-backed platform.
type MatcherSpec struct {
	Platform model.Platform
	// Hosts is a regexp alternation of host names, e.g. `(?:twitter|x)\.com`.
	Hosts string
	// Path is a regexp matched between the host and the username, e.g. `/in/`.
	Path string
	// Labels are the primary-platform names the model may report.
	Labels []string
	// Reserved usernames are site paths that are not profiles.
	Reserved []string
	Field    func(d *model.ExtractedDossier) string
}

// NewRegexMatcher builds a PlatformMatcher from a MatcherSpec.
func NewRegexMatcher(def MatcherSpec) PlatformMatcher {
	pattern := `(?i)` + urlPrefix +
		`((?:https?://)?(?:[a-z]{2,6}\.)?` + def.Hosts + def.Path + `([A-Za-z0-9_%-]+))`
	reserved := make(map[string]bool, len(def.Reserved))
	for _, r := range def.Reserved {
		reserved[strings.ToLower(r)] = true
	}
	return &regexMatcher{
		platform: def.Platform,
		pattern:  regexp.MustCompile(pattern),
		labels:   def.Labels,
		reserved: reserved,
		field:    def.Field,
	}
}

// LinkedInMatcher matches linkedin.com/in/<user> and linkedin.com/company/<user>.
func LinkedInMatcher() PlatformMatcher {
	return NewRegexMatcher(MatcherSpec{
		Platform: model.PlatformLinkedIn,
		Hosts:    `linkedin\.com`,
		Path:     `/(?:in|company)/`,
		Labels:   []string{"LinkedIn"},
		Field:    func(d *model.ExtractedDossier) string { return d.LinkedInURL },
	})
}

// TwitterMatcher matches twitter.com/<user> and x.com/<user>.
func TwitterMatcher() PlatformMatcher {
	return NewRegexMatcher(MatcherSpec{
		Platform: model.PlatformTwitter,
		Hosts:    `(?:twitter|x)\.com`,
		Path:     `/`,
		Labels:   []string{"Twitter/X", "Twitter", "X"},
		Reserved: []string{"intent", "share", "home", "i", "search", "hashtag"},
		Field:    func(d *model.ExtractedDossier) string { return d.TwitterURL },
	})
}

// DefaultMatchers returns the built-in matchers in reconciliation order.
func DefaultMatchers() []PlatformMatcher {
	return []PlatformMatcher{LinkedInMatcher(), TwitterMatcher()}
}
