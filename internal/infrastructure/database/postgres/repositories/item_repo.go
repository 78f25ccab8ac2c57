package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/database/postgres"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

const itemColumns = `id, name, type, keywords, frequency, status, last_checked, next_check,
	alert_count, last_error, extensions, platforms, social_platforms, created_at, updated_at`

type postgresItemRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewPostgresItemRepo builds the monitoring item repository.
func NewPostgresItemRepo(conn *postgres.Connection, log logging.Logger) monitoring.ItemRepository {
	return &postgresItemRepo{conn: conn, log: log}
}

func (r *postgresItemRepo) executor() queryExecutor {
	return r.conn.DB()
}

func (r *postgresItemRepo) Create(ctx context.Context, item *monitoring.MonitoringItem) error {
	keywords, err := encodeStrings(item.Keywords)
	if err != nil {
		return err
	}
	extensions, err := encodeStrings(item.Extensions)
	if err != nil {
		return err
	}
	platforms, err := encodeStrings(item.Platforms)
	if err != nil {
		return err
	}
	socialPlatforms, err := encodeStrings(item.SocialPlatforms)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO monitoring_items (
			id, name, type, keywords, frequency, status, last_checked, next_check,
			alert_count, last_error, extensions, platforms, social_platforms, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.executor().ExecContext(ctx, query,
		item.ID, item.Name, item.Type, keywords, item.Frequency, item.Status,
		item.LastChecked, item.NextCheck, item.AlertCount, item.LastError,
		extensions, platforms, socialPlatforms, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create monitoring item")
	}
	return nil
}

func (r *postgresItemRepo) GetByID(ctx context.Context, id string) (*monitoring.MonitoringItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM monitoring_items WHERE id = $1`, itemColumns)
	row := r.executor().QueryRowContext(ctx, query, id)

	item, err := scanItem(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodeItemNotFound, "monitoring item %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *postgresItemRepo) List(ctx context.Context, opts ...monitoring.ListOption) ([]*monitoring.MonitoringItem, int64, error) {
	options := monitoring.ApplyListOptions(opts...)

	where := ` WHERE 1=1`
	args := []interface{}{}
	if options.Type != "" {
		args = append(args, options.Type)
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if options.Status != "" {
		args = append(args, options.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM monitoring_items` + where
	if err := r.executor().QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count monitoring items")
	}

	dataQuery := fmt.Sprintf(`SELECT %s FROM monitoring_items%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		itemColumns, where, len(args)+1, len(args)+2)
	args = append(args, options.Limit, options.Offset)

	rows, err := r.executor().QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list monitoring items")
	}
	defer rows.Close()

	var items []*monitoring.MonitoringItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate monitoring items")
	}
	return items, total, nil
}

func (r *postgresItemRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*monitoring.MonitoringItem, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`
		SELECT %s FROM monitoring_items
		WHERE status <> 'checking' AND (next_check IS NULL OR next_check <= $1)
		ORDER BY next_check ASC NULLS FIRST
		LIMIT $2`, itemColumns)

	rows, err := r.executor().QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list due items")
	}
	defer rows.Close()

	var items []*monitoring.MonitoringItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate due items")
	}
	return items, nil
}

func (r *postgresItemRepo) Update(ctx context.Context, item *monitoring.MonitoringItem) error {
	keywords, err := encodeStrings(item.Keywords)
	if err != nil {
		return err
	}
	extensions, err := encodeStrings(item.Extensions)
	if err != nil {
		return err
	}
	platforms, err := encodeStrings(item.Platforms)
	if err != nil {
		return err
	}
	socialPlatforms, err := encodeStrings(item.SocialPlatforms)
	if err != nil {
		return err
	}

	query := `
		UPDATE monitoring_items
		SET name = $1, type = $2, keywords = $3, frequency = $4, status = $5,
			last_checked = $6, next_check = $7, alert_count = $8, last_error = $9,
			extensions = $10, platforms = $11, social_platforms = $12, updated_at = NOW()
		WHERE id = $13
	`
	res, err := r.executor().ExecContext(ctx, query,
		item.Name, item.Type, keywords, item.Frequency, item.Status,
		item.LastChecked, item.NextCheck, item.AlertCount, item.LastError,
		extensions, platforms, socialPlatforms, item.ID,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update monitoring item")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.New(errors.ErrCodeItemNotFound, "monitoring item %s not found", item.ID)
	}
	return nil
}

func (r *postgresItemRepo) UpdateStatus(ctx context.Context, id string, status monitoring.ItemStatus, lastError *string) error {
	var res sql.Result
	var err error
	if lastError != nil {
		query := `UPDATE monitoring_items SET status = $1, last_error = $2, updated_at = NOW() WHERE id = $3`
		res, err = r.executor().ExecContext(ctx, query, status, *lastError, id)
	} else {
		query := `UPDATE monitoring_items SET status = $1, updated_at = NOW() WHERE id = $2`
		res, err = r.executor().ExecContext(ctx, query, status, id)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update item status")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.New(errors.ErrCodeItemNotFound, "monitoring item %s not found", id)
	}
	return nil
}

func (r *postgresItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.executor().ExecContext(ctx, `DELETE FROM monitoring_items WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete monitoring item")
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return errors.New(errors.ErrCodeItemNotFound, "monitoring item %s not found", id)
	}
	return nil
}

func scanItem(s scanner) (*monitoring.MonitoringItem, error) {
	var item monitoring.MonitoringItem
	var keywords, extensions, platforms, socialPlatforms []byte

	err := s.Scan(
		&item.ID, &item.Name, &item.Type, &keywords, &item.Frequency, &item.Status,
		&item.LastChecked, &item.NextCheck, &item.AlertCount, &item.LastError,
		&extensions, &platforms, &socialPlatforms, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan monitoring item")
	}

	if err := decodeStrings(keywords, &item.Keywords); err != nil {
		return nil, err
	}
	if err := decodeStrings(extensions, &item.Extensions); err != nil {
		return nil, err
	}
	if err := decodeStrings(platforms, &item.Platforms); err != nil {
		return nil, err
	}
	if err := decodeStrings(socialPlatforms, &item.SocialPlatforms); err != nil {
		return nil, err
	}
	return &item, nil
}
