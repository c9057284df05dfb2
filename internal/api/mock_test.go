package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/contact-enricher/internal/model"
)

type mockEnricher struct {
	mock.Mock
}

func (m *mockEnricher) Enrich(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichedContact, error) {
	args := m.Called(ctx, req)
	if c := args.Get(0); c != nil {
		return c.(*model.EnrichedContact), args.Error(1)
	}
	return nil, args.Error(1)
}
