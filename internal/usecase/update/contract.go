package update

import (
	"context"

	"github.com/kailas-cloud/ssbulk/internal/domain/savedsearch"
	"github.com/kailas-cloud/ssbulk/internal/domain/savedsearch/patch"
)

// Repository reads and persists saved searches on the remote service.
type Repository interface {
	List(ctx context.Context) ([]savedsearch.SavedSearch, error)
	Update(ctx context.Context, s *savedsearch.SavedSearch, p patch.Patch) error
	Reload(ctx context.Context, s *savedsearch.SavedSearch) (savedsearch.SavedSearch, error)
}

// ProgressFunc receives one event per processed saved search.
type ProgressFunc func(Event)
