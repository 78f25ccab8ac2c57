// Package repositories implements the domain persistence contracts over
// PostgreSQL.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/turtacn/MarkSentinel/pkg/errors"
	"github.com/turtacn/MarkSentinel/pkg/types/common"
)

// queryExecutor abstracts sql.DB and sql.Tx.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// encodeStrings marshals a string slice into its jsonb column form.  A nil
// slice is stored as an empty array.
func encodeStrings(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode string list")
	}
	return raw, nil
}

// decodeStrings unmarshals a jsonb column into a string slice.
func decodeStrings(raw []byte, dest *[]string) error {
	if len(raw) == 0 {
		*dest = nil
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode string list")
	}
	if len(*dest) == 0 {
		*dest = nil
	}
	return nil
}

// encodeMap marshals a metadata bag into its jsonb column form.
func encodeMap(m common.Metadata) ([]byte, error) {
	if m == nil {
		m = common.Metadata{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode map")
	}
	return raw, nil
}

func decodeMap(raw []byte, dest *common.Metadata) error {
	if len(raw) == 0 {
		*dest = nil
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode map")
	}
	if len(*dest) == 0 {
		*dest = nil
	}
	return nil
}
