// Package persistence stores the audit trail of operator actions.
package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"smartdeals/internal/domain"
	"smartdeals/internal/domain/entity"
	"smartdeals/pkg/errcodes"
)

const defaultListLimit = 50

type ActionJournal struct {
	db *sqlx.DB
}

func NewActionJournal(db *sqlx.DB) *ActionJournal {
	return &ActionJournal{db: db}
}

func (r *ActionJournal) Record(ctx context.Context, outcome entity.Outcome) error {
	query := `
		INSERT INTO console_actions (action, target, operator, ok, error, created_at)
		VALUES (:action, :target, :operator, :ok, :error, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, newActionSchema(outcome)); err != nil {
		return domain.WrapError(err, errcodes.JournalUnwritten, "failed to insert action")
	}

	return nil
}

// List returns the latest actions, newest first.
func (r *ActionJournal) List(ctx context.Context, limit int) ([]entity.Outcome, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, action, target, operator, ok, error, created_at
		FROM console_actions
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	var schemas []actionSchema
	if err := r.db.SelectContext(ctx, &schemas, query, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, fmt.Sprintf("failed to list %d actions", limit))
	}

	return lo.Map(schemas, func(s actionSchema, _ int) entity.Outcome {
		return s.toDomain()
	}), nil
}
