package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/mock"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) FindContacts(ctx context.Context, dbID, email string) ([]string, error) {
	args := m.Called(ctx, dbID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClient) CreateContact(ctx context.Context, dbID string, props notionapi.Properties) (string, error) {
	args := m.Called(ctx, dbID, props)
	return args.String(0), args.Error(1)
}

func (m *MockClient) UpdateContact(ctx context.Context, pageID string, props notionapi.Properties) error {
	args := m.Called(ctx, pageID, props)
	return args.Error(0)
}

type mockDatabases struct {
	mock.Mock
}

func (m *mockDatabases) Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	// Copy the request: the client reuses it across pages.
	snapshot := *req
	args := m.Called(ctx, id, &snapshot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

type mockPages struct {
	mock.Mock
}

func (m *mockPages) Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func (m *mockPages) Update(ctx context.Context, id notionapi.PageID, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}
