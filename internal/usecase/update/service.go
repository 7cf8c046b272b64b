package update

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ssbulk/internal/domain/annotation"
	"github.com/kailas-cloud/ssbulk/internal/domain/savedsearch"
	"github.com/kailas-cloud/ssbulk/internal/domain/savedsearch/patch"
	"github.com/kailas-cloud/ssbulk/internal/metrics"
)

// Action is what happened to the target parameter of one saved search.
type Action string

// Update actions.
const (
	// ActionSet replaces the parameter value (direct mode).
	ActionSet Action = "set"
	// ActionAdd inserts a new key into the JSON object.
	ActionAdd Action = Action(annotation.ActionAdd)
	// ActionUpdate replaces an existing key of the JSON object.
	ActionUpdate Action = Action(annotation.ActionUpdate)
	// ActionAppend extends an existing key of the JSON object.
	ActionAppend Action = Action(annotation.ActionAppend)
)

// Event reports one processed saved search.
type Event struct {
	Search    string
	App       string
	Parameter string
	Key       string // empty in direct mode
	Values    []string
	Action    Action
	Value     string // value written to the parameter
	Reset     bool   // prior JSON was malformed and discarded
	DryRun    bool
}

// Summary aggregates a run.
type Summary struct {
	Matched int
	Updated int
	DryRun  bool
}

// Service applies one update rule to every selected saved search.
type Service struct {
	repo     Repository
	logger   *zap.Logger
	progress ProgressFunc
}

// New creates an update service.
func New(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// WithProgress sets a callback invoked for every processed saved search.
func (s *Service) WithProgress(fn ProgressFunc) *Service {
	s.progress = fn
	return s
}

// Run validates req, then updates, persists and reloads each matching saved search in order.
// The first remote failure aborts the run; records already persisted stay persisted.
func (s *Service) Run(ctx context.Context, req Request) (Summary, error) {
	if err := req.Validate(); err != nil {
		return Summary{}, err
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list saved searches: %w", err)
	}

	selected := savedsearch.Selector{App: req.App, Name: req.Search}.Filter(all)
	metrics.SavedSearchesMatched.Set(float64(len(selected)))
	s.logger.Info("Selected saved searches",
		zap.String("app", req.App),
		zap.String("search", req.Search),
		zap.Int("total", len(all)),
		zap.Int("matched", len(selected)),
	)

	summary := Summary{Matched: len(selected), DryRun: req.DryRun}
	for i := range selected {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("update interrupted: %w", err)
		}
		if err := s.apply(ctx, &selected[i], req); err != nil {
			return summary, err
		}
		if !req.DryRun {
			summary.Updated++
		}
	}

	return summary, nil
}

func (s *Service) apply(ctx context.Context, ss *savedsearch.SavedSearch, req Request) error {
	ev, err := plan(ss, req)
	if err != nil {
		return fmt.Errorf("prepare update of %s: %w", ss, err)
	}
	if ev.Reset {
		metrics.MalformedAnnotationsTotal.Inc()
		s.logger.Warn("Parameter is not a JSON object, starting from an empty one",
			zap.Stringer("saved_search", ss),
			zap.String("parameter", req.Parameter),
		)
	}

	if s.progress != nil {
		s.progress(ev)
	}

	if req.DryRun {
		metrics.SavedSearchUpdatesTotal.WithLabelValues(string(ev.Action), "dry_run").Inc()
		return nil
	}

	p, err := patch.New(req.Parameter, ev.Value)
	if err != nil {
		return fmt.Errorf("build patch for %s: %w", ss, err)
	}

	if err := s.repo.Update(ctx, ss, p); err != nil {
		metrics.SavedSearchUpdatesTotal.WithLabelValues(string(ev.Action), "error").Inc()
		return fmt.Errorf("update %s: %w", ss, err)
	}

	reloaded, err := s.repo.Reload(ctx, ss)
	if err != nil {
		metrics.SavedSearchUpdatesTotal.WithLabelValues(string(ev.Action), "error").Inc()
		return fmt.Errorf("reload %s: %w", ss, err)
	}
	*ss = reloaded

	metrics.SavedSearchUpdatesTotal.WithLabelValues(string(ev.Action), "ok").Inc()
	s.logger.Debug("Saved search updated",
		zap.Stringer("saved_search", ss),
		zap.String("parameter", req.Parameter),
		zap.String("action", string(ev.Action)),
	)
	return nil
}

// plan computes the new parameter value without side effects.
func plan(ss *savedsearch.SavedSearch, req Request) (Event, error) {
	ev := Event{
		Search:    ss.Name(),
		App:       ss.App(),
		Parameter: req.Parameter,
		Key:       req.key(),
		Values:    req.Values,
		DryRun:    req.DryRun,
	}

	if !req.JSONDico {
		ev.Action = ActionSet
		ev.Value = req.Values[0]
		return ev, nil
	}

	current, ok := ss.Param(req.Parameter)
	if !ok {
		current = "{}"
	}

	res, err := annotation.Merge(current, req.key(), annotation.Values(req.Values...), req.Append)
	if err != nil {
		return Event{}, fmt.Errorf("merge key %q: %w", req.key(), err)
	}

	ev.Action = Action(res.Action)
	ev.Value = res.Value
	ev.Reset = res.Reset
	return ev, nil
}
