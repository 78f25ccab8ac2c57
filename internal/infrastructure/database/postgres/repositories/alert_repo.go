package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/turtacn/MarkSentinel/internal/domain/alert"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

const alertColumns = `id, monitoring_item_id, type, detection_key, keyword, platform,
	title, description, data, severity, detected_at, action_required`

type postgresAlertRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresAlertRepo builds the conflict alert repository.
func NewPostgresAlertRepo(conn *postgres.Connection, log logging.Logger) alert.AlertRepository {
	return &postgresAlertRepo{conn: conn, log: log}
}

func (r *postgresAlertRepo) executor() queryExecutor {
	return r.conn.DB()
}

const insertAlertQuery = `
	INSERT INTO conflict_alerts (
		id, monitoring_item_id, type, detection_key, keyword, platform,
		title, description, data, severity, detected_at, action_required
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

func (r *postgresAlertRepo) Create(ctx context.Context, a *alert.ConflictAlert) error {
	data, err := encodeMap(a.Data)
	if err != nil {
		return err
	}
	_, err = r.executor().ExecContext(ctx, insertAlertQuery,
		a.ID, a.MonitoringItemID, a.Type, a.DetectionKey, a.Keyword, a.Platform,
		a.Title, a.Description, data, a.Severity, a.DetectedAt, a.ActionRequired,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create conflict alert")
	}
	return nil
}

// CreateBatch inserts all alerts inside one transaction, so a partial failure
// leaves no orphaned rows behind.
func (r *postgresAlertRepo) CreateBatch(ctx context.Context, alerts []*alert.ConflictAlert) error {
	if len(alerts) == 0 {
		return nil
	}
	tx, err := r.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to begin transaction")
	}
	for _, a := range alerts {
		data, err := encodeMap(a.Data)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, insertAlertQuery,
			a.ID, a.MonitoringItemID, a.Type, a.DetectionKey, a.Keyword, a.Platform,
			a.Title, a.Description, data, a.Severity, a.DetectedAt, a.ActionRequired,
		); err != nil {
			tx.Rollback()
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert conflict alert")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to commit alert batch")
	}
	return nil
}

func (r *postgresAlertRepo) GetByID(ctx context.Context, id string) (*alert.ConflictAlert, error) {
	query := fmt.Sprintf(`SELECT %s FROM conflict_alerts WHERE id = $1`, alertColumns)
	row := r.executor().QueryRowContext(ctx, query, id)

	a, err := scanAlert(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodeAlertNotFound, "conflict alert %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *postgresAlertRepo) List(ctx context.Context, opts ...alert.ListOption) ([]*alert.ConflictAlert, int64, error) {
	options := alert.ApplyListOptions(opts...)

	where := ` WHERE 1=1`
	args := []interface{}{}
	if options.ItemID != "" {
		args = append(args, options.ItemID)
		where += fmt.Sprintf(" AND monitoring_item_id = $%d", len(args))
	}
	if options.Type != "" {
		args = append(args, options.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if options.Severity != "" {
		args = append(args, options.Severity)
		where += fmt.Sprintf(" AND severity = $%d", len(args))
	}
	if options.Since != nil {
		args = append(args, *options.Since)
		where += fmt.Sprintf(" AND detected_at >= $%d", len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM conflict_alerts` + where
	if err := r.executor().QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count conflict alerts")
	}

	dataQuery := fmt.Sprintf(`SELECT %s FROM conflict_alerts%s ORDER BY detected_at DESC LIMIT $%d OFFSET $%d`,
		alertColumns, where, len(args)+1, len(args)+2)
	args = append(args, options.Limit, options.Offset)

	rows, err := r.executor().QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list conflict alerts")
	}
	defer rows.Close()

	var alerts []*alert.ConflictAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate conflict alerts")
	}
	return alerts, total, nil
}

func (r *postgresAlertRepo) Delete(ctx context.Context, id string) error {
	res, err := r.executor().ExecContext(ctx, `DELETE FROM conflict_alerts WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete conflict alert")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.New(errors.ErrCodeAlertNotFound, "conflict alert %s not found", id)
	}
	return nil
}

func (r *postgresAlertRepo) DeleteByItem(ctx context.Context, itemID string) (int64, error) {
	res, err := r.executor().ExecContext(ctx, `DELETE FROM conflict_alerts WHERE monitoring_item_id = $1`, itemID)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete alerts for item %s", itemID)
	}
	rows, _ := res.RowsAffected()
	return rows, nil
}

func (r *postgresAlertRepo) CountByItem(ctx context.Context, itemID string) (int64, error) {
	var n int64
	err := r.executor().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conflict_alerts WHERE monitoring_item_id = $1`, itemID).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count alerts for item %s", itemID)
	}
	return n, nil
}

func scanAlert(s scanner) (*alert.ConflictAlert, error) {
	var a alert.ConflictAlert
	var data []byte

	err := s.Scan(
		&a.ID, &a.MonitoringItemID, &a.Type, &a.DetectionKey, &a.Keyword, &a.Platform,
		&a.Title, &a.Description, &data, &a.Severity, &a.DetectedAt, &a.ActionRequired,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan conflict alert")
	}

	if err := decodeMap(data, &a.Data); err != nil {
		return nil, err
	}
	return &a, nil
}
