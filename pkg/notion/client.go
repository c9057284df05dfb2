// Package notion exports enriched contacts to a Notion CRM database.
package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client is the contact-database surface of the Notion API.
type Client interface {
	// FindContacts returns the ids of pages in dbID whose Email property
	// equals email, across all result pages.
	FindContacts(ctx context.Context, dbID, email string) ([]string, error)
	CreateContact(ctx context.Context, dbID string, props notionapi.Properties) (string, error)
	UpdateContact(ctx context.Context, pageID string, props notionapi.Properties) error
}

// The notionapi services the client calls.
type databaseQuerier interface {
	Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

type pageWriter interface {
	Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
	Update(ctx context.Context, id notionapi.PageID, req *notionapi.PageUpdateRequest) (*notionapi.Page, error)
}

// ClientOption configures the Notion client.
type ClientOption func(*apiClient)

// WithRateLimit overrides the default of 3 requests per second. A
// non-positive rps disables throttling.
func WithRateLimit(rps float64) ClientOption {
	return func(c *apiClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type apiClient struct {
	databases databaseQuerier
	pages     pageWriter
	limiter   *rate.Limiter
}

// NewClient returns a Client authenticated with an integration token.
func NewClient(token string, opts ...ClientOption) Client {
	inner := notionapi.NewClient(notionapi.Token(token))
	return newAPIClient(inner.Database, inner.Page, opts...)
}

func newAPIClient(db databaseQuerier, pages pageWriter, opts ...ClientOption) *apiClient {
	c := &apiClient{
		databases: db,
		pages:     pages,
		limiter:   rate.NewLimiter(3, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *apiClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return eris.Wrap(c.limiter.Wait(ctx), "notion: rate limit")
}

func (c *apiClient) FindContacts(ctx context.Context, dbID, email string) ([]string, error) {
	req := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: PropEmail,
			Email:    &notionapi.TextFilterCondition{Equals: email},
		},
	}

	var ids []string
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		resp, err := c.databases.Query(ctx, notionapi.DatabaseID(dbID), req)
		if err != nil {
			return nil, eris.Wrapf(err, "notion: find contact %s", email)
		}
		for _, p := range resp.Results {
			ids = append(ids, string(p.ID))
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return ids, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

func (c *apiClient) CreateContact(ctx context.Context, dbID string, props notionapi.Properties) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	page, err := c.pages.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: props,
	})
	if err != nil {
		return "", eris.Wrapf(err, "notion: create page in %s", dbID)
	}
	return string(page.ID), nil
}

func (c *apiClient) UpdateContact(ctx context.Context, pageID string, props notionapi.Properties) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if _, err := c.pages.Update(ctx, notionapi.PageID(pageID), &notionapi.PageUpdateRequest{Properties: props}); err != nil {
		return eris.Wrapf(err, "notion: update page %s", pageID)
	}
	return nil
}
