package llm

import "google.golang.org/genai"

func stringList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

// DossierSchema is the response schema handed to providers that support
// constrained JSON output. Every property is optional.
func DossierSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":               str(),
			"bio":                str(),
			"location":           str(),
			"timezone":           str(),
			"companyName":        str(),
			"role":               str(),
			"companyDescription": str(),
			"industry":           str(),
			"website":            str(),
			"linkedinUrl":        str(),
			"twitterUrl":         str(),
			"newsletterUrl":      str(),
			"githubUrl":          str(),
			"primaryPlatform":    str(),
			"previousRoles":      stringList(),
			"productsBuilt":      stringList(),
			"audienceSize":       str(),
			"notableLogos":       stringList(),
			"currentProjects":    stringList(),
			"activeLaunch": {
				Type:     genai.TypeObject,
				Nullable: genai.Ptr(true),
				Properties: map[string]*genai.Schema{
					"name":        str(),
					"description": str(),
					"url":         str(),
					"date":        str(),
				},
			},
			"publicProblems": stringList(),
			"statedGoals":    stringList(),
			"recentActivity": stringList(),
			"knownTools":     stringList(),
		},
	}
}
