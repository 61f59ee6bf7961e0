// Package sqlstore serves the marketplace collections straight from a
// PostgreSQL or MySQL database, with identity kept in the auth_users and
// auth_sessions tables.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/matthieukhl/doemart/internal/database"
	"github.com/matthieukhl/doemart/internal/types"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	db       *database.DB
	storage  types.SessionStorage
	cost     int
	tokenTTL time.Duration
	now      func() time.Time
}

func New(db *database.DB, storage types.SessionStorage) *Store {
	return &Store{
		db:       db,
		storage:  storage,
		cost:     bcrypt.DefaultCost,
		tokenTTL: 7 * 24 * time.Hour,
		now:      time.Now,
	}
}

func (s *Store) Name() string { return s.db.Dialect.String() }

func (s *Store) Close() error { return s.db.Close() }

// table resolves a collection, hiding the identity tables from data callers
func (s *Store) table(collection string, internal bool) (*database.Table, error) {
	if !internal && strings.HasPrefix(collection, "auth_") {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}
	t, ok := database.LookupTable(collection)
	if !ok {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}
	return t, nil
}

func (s *Store) Select(ctx context.Context, collection string, q types.Query) ([]types.Row, error) {
	t, err := s.table(collection, false)
	if err != nil {
		return nil, err
	}
	return s.selectRows(ctx, t, q)
}

func (s *Store) selectRows(ctx context.Context, t *database.Table, q types.Query) ([]types.Row, error) {
	query, args, err := buildSelect(s.db.Dialect, t, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.Name, err)
	}
	defer rows.Close()

	return scanRows(t, rows)
}

func scanRows(t *database.Table, rows *sql.Rows) ([]types.Row, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result []types.Row
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t.Name, err)
		}

		row := make(types.Row, len(names))
		for i, name := range names {
			col, ok := t.Column(name)
			if !ok {
				col = database.Column{Name: name, Kind: database.KindText}
			}
			row[name] = fromColumn(col, values[i])
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", t.Name, err)
	}
	return result, nil
}

func (s *Store) Count(ctx context.Context, collection string, q types.Query) (int, error) {
	t, err := s.table(collection, false)
	if err != nil {
		return 0, err
	}

	query, args, err := buildCount(s.db.Dialect, t, q)
	if err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.Name, err)
	}
	return n, nil
}

func (s *Store) Insert(ctx context.Context, collection string, record types.Row) (types.Row, error) {
	t, err := s.table(collection, false)
	if err != nil {
		return nil, err
	}
	return s.insertRow(ctx, t, record)
}

// uniqueViolation reports whether err is a duplicate key error from either driver
func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

// insertRow fills id and timestamps, writes the row, then reads it back
func (s *Store) insertRow(ctx context.Context, t *database.Table, record types.Row) (types.Row, error) {
	row := make(types.Row, len(record)+3)
	for k, v := range record {
		row[k] = v
	}

	stamp := s.now().UTC()
	if t.HasColumn("id") {
		if id, ok := row["id"]; !ok || id == nil || id == "" || id == uuid.Nil || id == uuid.Nil.String() {
			row["id"] = uuid.New()
		}
	}
	for _, c := range []string{"created_at", "updated_at"} {
		if _, ok := row[c]; !ok && t.HasColumn(c) {
			row[c] = stamp
		}
	}

	query, args, err := buildInsert(s.db.Dialect, t, row)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if uniqueViolation(err) {
			return nil, fmt.Errorf("failed to insert into %s: %w: %w", t.Name, types.ErrConflict, err)
		}
		return nil, fmt.Errorf("failed to insert into %s: %w", t.Name, err)
	}

	if !t.HasColumn("id") {
		return row, nil
	}
	rows, err := s.selectRows(ctx, t, types.Where(types.Eq("id", row["id"])))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("inserted %s row not found: %w", t.Name, types.ErrNotFound)
	}
	return rows[0], nil
}

func (s *Store) Update(ctx context.Context, collection string, filters []types.Filter, patch types.Row) (int, error) {
	t, err := s.table(collection, false)
	if err != nil {
		return 0, err
	}

	values := make(types.Row, len(patch)+1)
	for k, v := range patch {
		values[k] = v
	}
	if t.HasColumn("updated_at") {
		values["updated_at"] = s.now().UTC()
	}

	query, args, err := buildUpdate(s.db.Dialect, t, filters, values)
	if err != nil {
		return 0, err
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", t.Name, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}

func (s *Store) deleteRows(ctx context.Context, t *database.Table, filters []types.Filter) error {
	query, args, err := buildDelete(s.db.Dialect, t, filters)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", t.Name, err)
	}
	return nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

// Compile-time interface checks
var (
	_ types.Backend       = (*Store)(nil)
	_ types.HealthChecker = (*Store)(nil)
)
