// Package postgres provides the handling task journal backed by PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"

	"github.com/Masterminds/squirrel"
	"github.com/flightops/groundboard/internal/core/domain"
	"github.com/flightops/groundboard/internal/core/port"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type taskJournal struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

// NewTaskJournal creates a new postgres task journal
func NewTaskJournal(db *pgxpool.Pool, log *zap.Logger) port.TaskJournal {
	return &taskJournal{
		db:  db,
		log: log,
	}
}

func (r *taskJournal) Record(ctx context.Context, task *domain.HandlingTask) error {
	payload, err := json.Marshal(task.Payload)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO handling_tasks (id, plane_id, flight_id, task_type, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query,
		task.ID, task.PlaneID, task.FlightID, task.Type, payload, task.Status, task.CreatedAt)

	if err != nil {
		r.log.Error("Failed to record handling task", zap.Error(err))
		return err
	}
	return nil
}

func (r *taskJournal) ListRecent(ctx context.Context, limit int) ([]*domain.HandlingTask, error) {
	if limit <= 0 {
		limit = 50
	}

	sql, args, err := psql.
		Select("id", "plane_id", "flight_id", "task_type", "payload", "status", "created_at").
		From("handling_tasks").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.HandlingTask
	for rows.Next() {
		var t domain.HandlingTask
		var payload []byte
		if err := rows.Scan(&t.ID, &t.PlaneID, &t.FlightID, &t.Type, &payload, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &t.Payload); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}
