package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/maintenance-planner/internal/data/aggregates"
	"github.com/yungbote/maintenance-planner/internal/data/repos"
	types "github.com/yungbote/maintenance-planner/internal/domain"
	"github.com/yungbote/maintenance-planner/internal/pkg/apperr"
	"github.com/yungbote/maintenance-planner/internal/pkg/dbctx"
	"github.com/yungbote/maintenance-planner/internal/pkg/logger"
)

type ActionRegistry interface {
	// Ensure returns the id of the action named exactly name, creating it if needed.
	// It must run inside the caller's transaction.
	Ensure(dbc dbctx.Context, name string) (uuid.UUID, error)
	// SweepUnreferenced deletes every action no plan item or execution item points
	// at and returns the deleted rows.
	SweepUnreferenced(ctx context.Context) ([]*types.Action, error)
}

type actionRegistry struct {
	writer  *aggregates.Writer
	log     *logger.Logger
	actions repos.ActionRepo
}

func NewActionRegistry(writer *aggregates.Writer, baseLog *logger.Logger, actions repos.ActionRepo) ActionRegistry {
	return &actionRegistry{
		writer:  writer,
		log:     baseLog.With("service", "ActionRegistry"),
		actions: actions,
	}
}

func (s *actionRegistry) Ensure(dbc dbctx.Context, name string) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, apperr.Validation("action_name", "Action name is required.")
	}
	existing, err := s.actions.GetByName(dbc, name)
	if err != nil {
		return uuid.Nil, apperr.Internal("action_lookup", err)
	}
	if existing != nil {
		return existing.ID, nil
	}
	created, err := s.actions.Create(dbc, []*types.Action{{Name: name}})
	if err != nil {
		return uuid.Nil, apperr.Internal("action_create", err)
	}
	return created[0].ID, nil
}

func (s *actionRegistry) SweepUnreferenced(ctx context.Context) ([]*types.Action, error) {
	var removed []*types.Action
	err := s.writer.Write(ctx, "actions.sweep", func(dbc dbctx.Context) error {
		rows, err := s.actions.ListUnreferenced(dbc)
		if err != nil {
			return err
		}
		removed = rows
		if len(rows) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		_, err = s.actions.DeleteUnreferencedByIDs(dbc, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
