package enrich

import (
	"time"

	"github.com/sells-group/contact-enricher/internal/model"
)

// AssembleInput collects everything the assembler reads.
type AssembleInput struct {
	Request     model.EnrichmentRequest
	Domain      string
	GuessedName string
	Dossier     *model.ExtractedDossier
	Metadata    *model.PageMetadata
	Profiles    []model.SocialProfile
	Now         time.Time
}

// Assemble builds the enriched contact from the extracted dossier, page
// metadata and values derived from the email. It performs no I/O.
func Assemble(in AssembleInput) *model.EnrichedContact {
	d := in.Dossier
	if d == nil {
		d = &model.ExtractedDossier{}
	}
	meta := in.Metadata
	if meta == nil {
		meta = &model.PageMetadata{}
	}
	domainURL := "https://" + in.Domain
	website := FirstNonEmpty(d.Website, domainURL)

	profiles := in.Profiles
	if profiles == nil {
		profiles = []model.SocialProfile{}
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	return &model.EnrichedContact{
		ContactID: in.Request.ContactID,
		Email:     in.Request.Email,

		Name:     FirstNonEmpty(d.Name, in.GuessedName),
		Bio:      FirstNonEmpty(d.Bio, meta.Description),
		Location: d.Location,
		Timezone: d.Timezone,
		Avatar:   meta.Image,
		Website:  website,
		Role:     d.Role,

		Company: model.CompanyInfo{
			Name:        FirstNonEmpty(d.CompanyName, meta.Title, in.Domain),
			Description: d.CompanyDescription,
			Industry:    d.Industry,
			Website:     website,
		},

		SocialProfiles: profiles,
		Newsletter:     d.NewsletterURL,
		GitHub:         d.GitHubURL,

		PreviousRoles: orEmpty(d.PreviousRoles),
		ProductsBuilt: orEmpty(d.ProductsBuilt),
		AudienceSize:  d.AudienceSize,
		NotableLogos:  orEmpty(d.NotableLogos),

		CurrentProjects: orEmpty(d.CurrentProjects),
		ActiveLaunch:    d.ActiveLaunch,
		PublicProblems:  orEmpty(d.PublicProblems),
		StatedGoals:     orEmpty(d.StatedGoals),
		RecentActivity:  orEmpty(d.RecentActivity),

		KnownTools: orEmpty(d.KnownTools),

		Status:     model.ContactStatusEnriched,
		EnrichedAt: now,
	}
}
