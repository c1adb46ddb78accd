package jobs

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
	"github.com/yungbote/maintenance-planner/internal/services"
)

// ActionSweeper deletes actions nothing refers to any more.
type ActionSweeper struct {
	log      *logger.Logger
	registry services.ActionRegistry
	Backoff  func() retry.Backoff
}

func NewActionSweeper(baseLog *logger.Logger, registry services.ActionRegistry) *ActionSweeper {
	return &ActionSweeper{
		log:      baseLog.With("job", "ActionSweeper"),
		registry: registry,
		Backoff: func() retry.Backoff {
			return retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
		},
	}
}

func (s *ActionSweeper) Name() string { return "action_sweeper" }

func (s *ActionSweeper) RunOnce(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}

// Sweep removes unreferenced actions, retrying store failures, and returns
// what it deleted.
func (s *ActionSweeper) Sweep(ctx context.Context) ([]*types.Action, error) {
	var removed []*types.Action
	err := retry.Do(ctx, s.Backoff(), func(ctx context.Context) error {
		rows, err := s.registry.SweepUnreferenced(ctx)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				return retry.RetryableError(err)
			}
			return err
		}
		removed = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		s.log.Debug("no unreferenced actions")
		return removed, nil
	}
	ids := make([]string, 0, len(removed))
	names := make([]string, 0, len(removed))
	for _, a := range removed {
		ids = append(ids, a.ID.String())
		names = append(names, a.Name)
	}
	s.log.Info("removed unreferenced actions", "count", len(removed), "ids", ids, "names", names)
	return removed, nil
}
