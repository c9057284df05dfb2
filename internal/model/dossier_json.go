package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// UnmarshalJSON decodes a model answer field by field. Values of the wrong
// JSON type are coerced where the meaning is clear (numbers and booleans to
// strings, a lone string to a one-item list) and dropped otherwise. Only a
// document that is not a JSON object is an error.
func (d *ExtractedDossier) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	str := func(key string) string { return flexString(raw[key]) }
	list := func(key string) []string { return flexList(raw[key]) }

	*d = ExtractedDossier{
		Name:     str("name"),
		Bio:      str("bio"),
		Location: str("location"),
		Timezone: str("timezone"),

		CompanyName:        str("companyName"),
		Role:               str("role"),
		CompanyDescription: str("companyDescription"),
		Industry:           str("industry"),
		Website:            str("website"),

		LinkedInURL:     str("linkedinUrl"),
		TwitterURL:      str("twitterUrl"),
		NewsletterURL:   str("newsletterUrl"),
		GitHubURL:       str("githubUrl"),
		PrimaryPlatform: str("primaryPlatform"),

		PreviousRoles: list("previousRoles"),
		ProductsBuilt: list("productsBuilt"),
		AudienceSize:  str("audienceSize"),
		NotableLogos:  list("notableLogos"),

		CurrentProjects: list("currentProjects"),
		ActiveLaunch:    flexLaunch(raw["activeLaunch"]),
		PublicProblems:  list("publicProblems"),
		StatedGoals:     list("statedGoals"),
		RecentActivity:  list("recentActivity"),

		KnownTools: list("knownTools"),
	}
	return nil
}

// flexString returns strings as-is and the literal text of numbers and
// booleans. Arrays of scalars are joined with ", ". Objects and null are "".
func flexString(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if json.Unmarshal(v, &s) != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '[':
		return strings.Join(flexList(v), ", ")
	case '{', 'n':
		return ""
	default:
		// number or boolean
		return string(v)
	}
}

// flexList accepts an array or a single scalar. Empty and non-scalar items
// are dropped.
func flexList(v json.RawMessage) []string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return nil
	}
	if v[0] != '[' {
		if s := flexString(v); s != "" {
			return []string{s}
		}
		return nil
	}

	var items []json.RawMessage
	if json.Unmarshal(v, &items) != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] == '[' {
			continue
		}
		if s := flexString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// flexLaunch decodes an object into an ActiveLaunch. Any other value is nil.
func flexLaunch(v json.RawMessage) *ActiveLaunch {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || v[0] != '{' {
		return nil
	}
	var raw map[string]json.RawMessage
	if json.Unmarshal(v, &raw) != nil {
		return nil
	}
	return &ActiveLaunch{
		Name:        flexString(raw["name"]),
		Description: flexString(raw["description"]),
		URL:         flexString(raw["url"]),
		Date:        flexString(raw["date"]),
	}
}
