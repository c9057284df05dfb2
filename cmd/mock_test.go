package main

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/mock"
)

type mockNotionClient struct {
	mock.Mock
}

func (m *mockNotionClient) FindContacts(ctx context.Context, dbID, email string) ([]string, error) {
	args := m.Called(ctx, dbID, email)
	if r := args.Get(0); r != nil {
		return r.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNotionClient) CreateContact(ctx context.Context, dbID string, props notionapi.Properties) (string, error) {
	args := m.Called(ctx, dbID, props)
	return args.String(0), args.Error(1)
}

func (m *mockNotionClient) UpdateContact(ctx context.Context, pageID string, props notionapi.Properties) error {
	args := m.Called(ctx, pageID, props)
	return args.Error(0)
}
