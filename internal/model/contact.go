package model

import (
	"strings"
	"time"
)

// ContactStatus is the lifecycle state of a contact record.
type ContactStatus string

const (
	ContactStatusEnriched ContactStatus = "enriched"
	ContactStatusFailed   ContactStatus = "failed"
)

// EnrichmentRequest is the input of a single enrichment run.
type EnrichmentRequest struct {
	Email     string `json:"email"`
	ContactID string `json:"contactId,omitempty"`
}

// Domain returns the lower-cased part of the email after the last "@".
func (r EnrichmentRequest) Domain() string {
	i := strings.LastIndex(r.Email, "@")
	if i < 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(r.Email[i+1:]))
}

// Array bounds of the extracted dossier.
const (
	MaxPreviousRoles   = 5
	MaxProductsBuilt   = 5
	MaxNotableLogos    = 10
	MaxCurrentProjects = 5
	MaxPublicProblems  = 5
	MaxStatedGoals     = 5
	MaxRecentActivity  = 5
	MaxKnownTools      = 15
)

// ActiveLaunch describes something the subject is currently launching.
type ActiveLaunch struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
	Date        string `json:"date,omitempty"`
}

// ExtractedDossier is the structured output of the language model. Every
// field is optional; missing keys decode to their zero value.
type ExtractedDossier struct {
	// Identity
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Timezone string `json:"timezone"`

	// Company
	CompanyName        string `json:"companyName"`
	Role               string `json:"role"`
	CompanyDescription string `json:"companyDescription"`
	Industry           string `json:"industry"`
	Website            string `json:"website"`

	// Social
	LinkedInURL     string `json:"linkedinUrl"`
	TwitterURL      string `json:"twitterUrl"`
	NewsletterURL   string `json:"newsletterUrl"`
	GitHubURL       string `json:"githubUrl"`
	PrimaryPlatform string `json:"primaryPlatform"`

	// Credibility
	PreviousRoles []string `json:"previousRoles"`
	ProductsBuilt []string `json:"productsBuilt"`
	AudienceSize  string   `json:"audienceSize"`
	NotableLogos  []string `json:"notableLogos"`

	// Focus
	CurrentProjects []string      `json:"currentProjects"`
	ActiveLaunch    *ActiveLaunch `json:"activeLaunch"`
	PublicProblems  []string      `json:"publicProblems"`
	StatedGoals     []string      `json:"statedGoals"`
	RecentActivity  []string      `json:"recentActivity"`

	KnownTools []string `json:"knownTools"`
}

// Clamp truncates every list field to its bound.
func (d *ExtractedDossier) Clamp() {
	d.PreviousRoles = clamp(d.PreviousRoles, MaxPreviousRoles)
	d.ProductsBuilt = clamp(d.ProductsBuilt, MaxProductsBuilt)
	d.NotableLogos = clamp(d.NotableLogos, MaxNotableLogos)
	d.CurrentProjects = clamp(d.CurrentProjects, MaxCurrentProjects)
	d.PublicProblems = clamp(d.PublicProblems, MaxPublicProblems)
	d.StatedGoals = clamp(d.StatedGoals, MaxStatedGoals)
	d.RecentActivity = clamp(d.RecentActivity, MaxRecentActivity)
	d.KnownTools = clamp(d.KnownTools, MaxKnownTools)
	if d.ActiveLaunch != nil && *d.ActiveLaunch == (ActiveLaunch{}) {
		d.ActiveLaunch = nil
	}
}

func clamp(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// Platform names a social network.
type Platform string

const (
	PlatformLinkedIn Platform = "LinkedIn"
	PlatformTwitter  Platform = "Twitter/X"
)

// SocialProfile is one social network presence of the contact.
type SocialProfile struct {
	Platform  Platform `json:"platform"`
	URL       string   `json:"url"`
	Username  string   `json:"username"`
	IsPrimary bool     `json:"isPrimary"`
}

// CompanyInfo is the nested company object of an enriched contact.
type CompanyInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Industry    string `json:"industry"`
	Website     string `json:"website"`
}

// EnrichedContact is the normalized output of the pipeline.
type EnrichedContact struct {
	ContactID string `json:"contactId,omitempty"`
	Email     string `json:"email"`

	Name     string `json:"name"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Timezone string `json:"timezone"`
	Avatar   string `json:"avatar"`
	Website  string `json:"website"`
	Role     string `json:"role"`

	Company CompanyInfo `json:"company"`

	SocialProfiles []SocialProfile `json:"socialProfiles"`
	Newsletter     string          `json:"newsletter"`
	GitHub         string          `json:"github"`

	PreviousRoles []string `json:"previousRoles"`
	ProductsBuilt []string `json:"productsBuilt"`
	AudienceSize  string   `json:"audienceSize"`
	NotableLogos  []string `json:"notableLogos"`

	CurrentProjects []string      `json:"currentProjects"`
	ActiveLaunch    *ActiveLaunch `json:"activeLaunch,omitempty"`
	PublicProblems  []string      `json:"publicProblems"`
	StatedGoals     []string      `json:"statedGoals"`
	RecentActivity  []string      `json:"recentActivity"`

	KnownTools []string `json:"knownTools"`

	Status     ContactStatus `json:"status"`
	Error      string        `json:"error,omitempty"`
	EnrichedAt time.Time     `json:"enrichedAt"`
}

// PrimaryProfile returns the profile flagged primary, if any.
func (c *EnrichedContact) PrimaryProfile() (SocialProfile, bool) {
	for _, p := range c.SocialProfiles {
		if p.IsPrimary {
			return p, true
		}
	}
	return SocialProfile{}, false
}

// ProfileURL returns the URL of the profile on platform, or "".
func (c *EnrichedContact) ProfileURL(platform Platform) string {
	for _, p := range c.SocialProfiles {
		if p.Platform == platform {
			return p.URL
		}
	}
	return ""
}

// ContactFilter narrows a contact listing. Zero values match everything.
type ContactFilter struct {
	Status ContactStatus
	Domain string
	Limit  int
	Offset int
}
