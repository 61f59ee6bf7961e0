package sqlstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/matthieukhl/doemart/internal/database"
	"github.com/matthieukhl/doemart/internal/types"
)

// mysqlTimeLayout is what DATETIME(6) looks like when the DSN lacks parseTime=true
const mysqlTimeLayout = "2006-01-02 15:04:05.999999"

type builder struct {
	d     database.Dialect
	table *database.Table
	args  []any
}

func newBuilder(d database.Dialect, table *database.Table) *builder {
	return &builder{d: d, table: table}
}

func (b *builder) bind(col database.Column, v any) string {
	b.args = append(b.args, toArg(col, v))
	return b.d.Placeholder(len(b.args))
}

func (b *builder) column(name string) (database.Column, error) {
	col, ok := b.table.Column(name)
	if !ok {
		return database.Column{}, fmt.Errorf("unknown column %s.%s", b.table.Name, name)
	}
	return col, nil
}

func (b *builder) where(filters []types.Filter) (string, error) {
	if len(filters) == 0 {
		return "", nil
	}
	var conds []string
	for _, f := range filters {
		col, err := b.column(f.Column)
		if err != nil {
			return "", err
		}
		if f.Value == nil {
			conds = append(conds, b.d.Quote(col.Name)+" IS NULL")
			continue
		}
		conds = append(conds, b.d.Quote(col.Name)+" = "+b.bind(col, f.Value))
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

func buildSelect(d database.Dialect, table *database.Table, q types.Query) (string, []any, error) {
	b := newBuilder(d, table)

	cols := "*"
	if len(q.Columns) > 0 {
		quoted := make([]string, 0, len(q.Columns))
		for _, name := range q.Columns {
			col, err := b.column(name)
			if err != nil {
				return "", nil, err
			}
			quoted = append(quoted, d.Quote(col.Name))
		}
		cols = strings.Join(quoted, ", ")
	}

	where, err := b.where(q.Filters)
	if err != nil {
		return "", nil, err
	}

	query := "SELECT " + cols + " FROM " + d.Quote(table.Name) + where
	if q.Order != nil {
		col, err := b.column(q.Order.Column)
		if err != nil {
			return "", nil, err
		}
		query += " ORDER BY " + d.Quote(col.Name)
		if q.Order.Descending {
			query += " DESC"
		}
	}
	if q.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(q.Limit)
	}
	return query, b.args, nil
}

func buildCount(d database.Dialect, table *database.Table, q types.Query) (string, []any, error) {
	b := newBuilder(d, table)
	where, err := b.where(q.Filters)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + d.Quote(table.Name) + where, b.args, nil
}

func sortedKeys(row types.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func buildInsert(d database.Dialect, table *database.Table, record types.Row) (string, []any, error) {
	if len(record) == 0 {
		return "", nil, fmt.Errorf("empty record for %s", table.Name)
	}
	b := newBuilder(d, table)

	var cols, marks []string
	for _, name := range sortedKeys(record) {
		col, err := b.column(name)
		if err != nil {
			return "", nil, err
		}
		cols = append(cols, d.Quote(col.Name))
		marks = append(marks, b.bind(col, record[name]))
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(table.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))
	return query, b.args, nil
}

func buildUpdate(d database.Dialect, table *database.Table, filters []types.Filter, patch types.Row) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("update on %s requires a filter", table.Name)
	}
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("empty patch for %s", table.Name)
	}
	b := newBuilder(d, table)

	var sets []string
	for _, name := range sortedKeys(patch) {
		col, err := b.column(name)
		if err != nil {
			return "", nil, err
		}
		sets = append(sets, d.Quote(col.Name)+" = "+b.bind(col, patch[name]))
	}

	where, err := b.where(filters)
	if err != nil {
		return "", nil, err
	}
	return "UPDATE " + d.Quote(table.Name) + " SET " + strings.Join(sets, ", ") + where, b.args, nil
}

func buildDelete(d database.Dialect, table *database.Table, filters []types.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, fmt.Errorf("delete on %s requires a filter", table.Name)
	}
	b := newBuilder(d, table)
	where, err := b.where(filters)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + d.Quote(table.Name) + where, b.args, nil
}

// toArg converts JSON-shaped values into driver arguments for col
func toArg(col database.Column, v any) any {
	switch col.Kind {
	case database.KindTime:
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t.UTC()
			}
		}
		if t, ok := v.(time.Time); ok {
			return t.UTC()
		}
	case database.KindInt:
		if f, ok := v.(float64); ok {
			return int64(f)
		}
	case database.KindUUID:
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
	}
	return v
}

// fromColumn converts a scanned driver value into the JSON shape rows carry
func fromColumn(col database.Column, v any) any {
	if v == nil {
		return nil
	}
	if raw, ok := v.([]byte); ok {
		v = string(raw)
	}

	switch col.Kind {
	case database.KindBool:
		switch val := v.(type) {
		case int64:
			return val != 0
		case string:
			b, err := strconv.ParseBool(val)
			if err == nil {
				return b
			}
		}
	case database.KindInt:
		if s, ok := v.(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		}
	case database.KindFloat:
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	case database.KindDecimal:
		switch val := v.(type) {
		case string:
			return json.Number(val)
		case float64:
			return json.Number(strconv.FormatFloat(val, 'f', -1, 64))
		}
	case database.KindTime:
		switch val := v.(type) {
		case time.Time:
			return val.UTC().Format(time.RFC3339Nano)
		case string:
			if t, err := time.Parse(mysqlTimeLayout, val); err == nil {
				return t.UTC().Format(time.RFC3339Nano)
			}
		}
	}
	return v
}
