package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/contact-enricher/internal/model"
	"github.com/sells-group/contact-enricher/pkg/notion"
)

// writeOutput encodes v to w as indented JSON or YAML.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so YAML keys follow the json tags.
		data, err := json.Marshal(v)
		if err != nil {
			return eris.Wrap(err, "output: marshal")
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return eris.Wrap(err, "output: unmarshal")
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return eris.Wrap(err, "output: encode yaml")
		}
		return enc.Close()
	default:
		return eris.Errorf("output: unknown format %q (want json or yaml)", format)
	}
}

// notionRecord flattens an enriched contact into the CRM row shape.
func notionRecord(c *model.EnrichedContact) notion.ContactRecord {
	return notion.ContactRecord{
		ContactID:  c.ContactID,
		Name:       c.Name,
		Email:      c.Email,
		Company:    c.Company.Name,
		Title:      c.Role,
		Website:    c.Website,
		LinkedIn:   c.ProfileURL(model.PlatformLinkedIn),
		Twitter:    c.ProfileURL(model.PlatformTwitter),
		Bio:        c.Bio,
		Status:     string(c.Status),
		EnrichedAt: c.EnrichedAt,
	}
}

// exportToNotion upserts c into the contact database.
func exportToNotion(ctx context.Context, client notion.Client, dbID string, c *model.EnrichedContact) (string, error) {
	pageID, err := notion.UpsertContact(ctx, client, dbID, notionRecord(c))
	if err != nil {
		return "", eris.Wrap(err, "export to notion")
	}
	return pageID, nil
}
