package enrich

import (
	"fmt"
	"strings"

	"github.com/sells-group/contact-enricher/internal/model"
)

// systemPrompt is sent unchanged with every extraction.
var systemPrompt = fmt.Sprintf(`You research the person behind an email address using text scraped from their domain's website.
Return ONLY a single JSON object, no prose and no code fences, with exactly these keys:

{
  "name": "full name of the person",
  "bio": "one or two sentence professional bio",
  "location": "city, region or country",
  "timezone": "IANA timezone if it can be inferred",
  "companyName": "company or brand name",
  "role": "the person's role or title",
  "companyDescription": "what the company does, one sentence",
  "industry": "industry or market",
  "website": "canonical website URL",
  "linkedinUrl": "full LinkedIn profile URL",
  "twitterUrl": "full Twitter/X profile URL",
  "newsletterUrl": "newsletter or blog URL",
  "githubUrl": "GitHub profile URL",
  "primaryPlatform": "the one platform most representative of their presence: LinkedIn, Twitter/X, Newsletter, GitHub or empty",
  "previousRoles": ["up to %d previous roles"],
  "productsBuilt": ["up to %d products they built"],
  "audienceSize": "audience or follower size if stated",
  "notableLogos": ["up to %d notable customers, employers or investors"],
  "currentProjects": ["up to %d current projects"],
  "activeLaunch": {"name": "", "description": "", "url": "", "date": ""} or null,
  "publicProblems": ["up to %d problems they talk about publicly"],
  "statedGoals": ["up to %d goals they state publicly"],
  "recentActivity": ["up to %d recent posts, talks or announcements"],
  "knownTools": ["up to %d tools, products or technologies they use"]
}

Rules:
- Use only facts supported by the content. Use "" or [] when something is unknown.
- Prefer names found in the content over the name hint. Use the hint only when the content names nobody.
- Never exceed the list sizes above.`,
	model.MaxPreviousRoles,
	model.MaxProductsBuilt,
	model.MaxNotableLogos,
	model.MaxCurrentProjects,
	model.MaxPublicProblems,
	model.MaxStatedGoals,
	model.MaxRecentActivity,
	model.MaxKnownTools,
)

// buildUserPrompt assembles the per-request message.
func buildUserPrompt(email, nameHint, content string) string {
	var b strings.Builder
	b.WriteString("Email: ")
	b.WriteString(email)
	b.WriteString("\n")
	if nameHint != "" {
		b.WriteString("Name hint (from the email address, use only if the content names nobody): ")
		b.WriteString(nameHint)
		b.WriteString("\n")
	}
	b.WriteString("\nWebsite content:\n")
	b.WriteString(content)
	return b.String()
}
