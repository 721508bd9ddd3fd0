package persistence

import (
	"database/sql"
	"errors"
	"time"

	"smartdeals/internal/domain/entity"
)

// actionSchema maps a console_actions row.
type actionSchema struct {
	ID        int64          `db:"id"`
	Action    string         `db:"action"`
	Target    string         `db:"target"`
	Operator  string         `db:"operator"`
	OK        bool           `db:"ok"`
	Error     sql.NullString `db:"error"`
	CreatedAt time.Time      `db:"created_at"`
}

func newActionSchema(o entity.Outcome) actionSchema {
	s := actionSchema{
		Action:    o.Action.String(),
		Target:    o.Target,
		Operator:  o.Operator,
		OK:        o.OK(),
		CreatedAt: o.At,
	}

	if o.Err != nil {
		s.Error = sql.NullString{String: o.Err.Error(), Valid: true}
	}

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	return s
}

// toDomain restores the outcome; the error keeps its message only.
func (s actionSchema) toDomain() entity.Outcome {
	o := entity.Outcome{
		Action:   entity.Action(s.Action),
		Target:   s.Target,
		Operator: s.Operator,
		At:       s.CreatedAt,
	}

	if !s.OK {
		o.Err = errors.New(s.Error.String)
	}

	return o
}
