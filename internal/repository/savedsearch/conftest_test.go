package savedsearch

import (
	"context"
	"net/url"

	"github.com/kailas-cloud/ssbulk/internal/transport/splunk"
)

// mockClient implements the consumer interface for tests.
type mockClient struct {
	listFn   func(ctx context.Context) ([]splunk.Entry, error)
	getFn    func(ctx context.Context, path string) (splunk.Entry, error)
	updateFn func(ctx context.Context, path string, form url.Values) error
}

func (m *mockClient) ListSavedSearches(ctx context.Context) ([]splunk.Entry, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockClient) GetEntity(ctx context.Context, path string) (splunk.Entry, error) {
	if m.getFn != nil {
		return m.getFn(ctx, path)
	}
	return splunk.Entry{}, nil
}

func (m *mockClient) UpdateEntity(ctx context.Context, path string, form url.Values) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, path, form)
	}
	return nil
}
