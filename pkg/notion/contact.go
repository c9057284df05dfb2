package notion

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Property names of the contact CRM database.
const (
	PropName      = "Name"
	PropEmail     = "Email"
	PropCompany   = "Company"
	PropTitle     = "Title"
	PropWebsite   = "Website"
	PropLinkedIn  = "LinkedIn"
	PropTwitter   = "Twitter"
	PropBio       = "Bio"
	PropStatus    = "Status"
	PropContactID = "Contact ID"
	PropEnriched  = "Last Enriched"
)

// Notion rejects rich text segments longer than this.
const maxRichText = 2000

// ContactRecord is the flat view of an enriched contact written to Notion.
type ContactRecord struct {
	ContactID  string
	Name       string
	Email      string
	Company    string
	Title      string
	Website    string
	LinkedIn   string
	Twitter    string
	Bio        string
	Status     string
	EnrichedAt time.Time
}

// ContactProperties converts a record to Notion page properties. Empty
// optional values are left out so they don't clear existing cells on update.
func ContactProperties(rec ContactRecord) notionapi.Properties {
	props := notionapi.Properties{
		PropName: notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(rec.Name),
		},
		PropEmail: notionapi.EmailProperty{
			Type:  notionapi.PropertyTypeEmail,
			Email: rec.Email,
		},
	}

	for name, v := range map[string]string{
		PropCompany:   rec.Company,
		PropTitle:     rec.Title,
		PropBio:       rec.Bio,
		PropContactID: rec.ContactID,
	} {
		if v != "" {
			props[name] = notionapi.RichTextProperty{
				Type:     notionapi.PropertyTypeRichText,
				RichText: richText(v),
			}
		}
	}

	for name, v := range map[string]string{
		PropWebsite:  rec.Website,
		PropLinkedIn: rec.LinkedIn,
		PropTwitter:  rec.Twitter,
	} {
		if v != "" {
			props[name] = notionapi.URLProperty{
				Type: notionapi.PropertyTypeURL,
				URL:  v,
			}
		}
	}

	if rec.Status != "" {
		props[PropStatus] = notionapi.StatusProperty{
			Status: notionapi.Status{Name: rec.Status},
		}
	}

	if !rec.EnrichedAt.IsZero() {
		d := notionapi.Date(rec.EnrichedAt)
		props[PropEnriched] = notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &d},
		}
	}

	return props
}

// UpsertContact updates the first page whose Email matches the record, or
// creates a new page in dbID. It returns the page ID.
func UpsertContact(ctx context.Context, c Client, dbID string, rec ContactRecord) (string, error) {
	if rec.Email == "" {
		return "", eris.New("notion: contact email is required")
	}

	existing, err := c.FindContacts(ctx, dbID, rec.Email)
	if err != nil {
		return "", err
	}

	props := ContactProperties(rec)

	if len(existing) > 0 {
		if err := c.UpdateContact(ctx, existing[0], props); err != nil {
			return "", eris.Wrapf(err, "notion: update contact %s", rec.Email)
		}
		return existing[0], nil
	}

	pageID, err := c.CreateContact(ctx, dbID, props)
	if err != nil {
		return "", eris.Wrapf(err, "notion: create contact %s", rec.Email)
	}
	return pageID, nil
}

func richText(s string) []notionapi.RichText {
	r := []rune(s)
	if len(r) > maxRichText {
		s = string(r[:maxRichText])
	}
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}
