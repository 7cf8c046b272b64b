package savedsearch

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	domss "github.com/kailas-cloud/ssbulk/internal/domain/savedsearch"
	"github.com/kailas-cloud/ssbulk/internal/domain/savedsearch/patch"
	"github.com/kailas-cloud/ssbulk/internal/logger"
	"github.com/kailas-cloud/ssbulk/internal/transport/splunk"
)

// client is the consumer interface for the Splunk REST session (ISP).
type client interface {
	ListSavedSearches(ctx context.Context) ([]splunk.Entry, error)
	GetEntity(ctx context.Context, path string) (splunk.Entry, error)
	UpdateEntity(ctx context.Context, path string, form url.Values) error
}

// Repo implements usecase/update.Repository.
type Repo struct {
	client client
}

// New creates a saved search repository.
func New(c client) *Repo {
	return &Repo{client: c}
}

// List returns every saved search visible to the session.
func (r *Repo) List(ctx context.Context) ([]domss.SavedSearch, error) {
	entries, err := r.client.ListSavedSearches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	out := make([]domss.SavedSearch, 0, len(entries))
	for i := range entries {
		out = append(out, entryToDomain(&entries[i]))
	}
	return out, nil
}

// Update persists a single parameter change.
func (r *Repo) Update(ctx context.Context, s *domss.SavedSearch, p patch.Patch) error {
	form := url.Values{}
	form.Set(p.Parameter(), p.Value())

	path := editPath(s)
	if err := r.client.UpdateEntity(ctx, path, form); err != nil {
		return fmt.Errorf("post %s: %w", p.Parameter(), err)
	}
	logger.FromContext(ctx).Debug("Saved search persisted",
		zap.String("path", path),
		zap.String("parameter", p.Parameter()),
		zap.Int("value_bytes", len(p.Value())),
	)
	return nil
}

// Reload fetches the current state of s from the service.
func (r *Repo) Reload(ctx context.Context, s *domss.SavedSearch) (domss.SavedSearch, error) {
	e, err := r.client.GetEntity(ctx, listPath(s))
	if err != nil {
		return domss.SavedSearch{}, fmt.Errorf("get entry: %w", err)
	}
	return entryToDomain(&e), nil
}
