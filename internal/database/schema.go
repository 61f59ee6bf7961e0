package database

import (
	"context"
	"fmt"
	"strings"
)

// Kind is the logical type of a catalog column
type Kind int

const (
	KindUUID Kind = iota
	KindText
	KindLongText
	KindInt
	KindBool
	KindDecimal
	KindFloat
	KindTime
)

type Column struct {
	Name       string
	Kind       Kind
	NotNull    bool
	Unique     bool
	Default    string
	References string // "table(column)"
}

type Table struct {
	Name    string
	Columns []Column
	Indexes [][]string
}

// Column looks up a column by name
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

func id() Column { return Column{Name: "id", Kind: KindUUID, NotNull: true} }

func timestamps() []Column {
	return []Column{
		{Name: "created_at", Kind: KindTime, NotNull: true},
		{Name: "updated_at", Kind: KindTime, NotNull: true},
	}
}

// Catalog lists the marketplace tables in creation order
var Catalog = []Table{
	{
		Name: "auth_users",
		Columns: []Column{
			id(),
			{Name: "email", Kind: KindText, NotNull: true, Unique: true},
			{Name: "password_hash", Kind: KindText, NotNull: true},
			{Name: "created_at", Kind: KindTime, NotNull: true},
		},
	},
	{
		Name: "auth_sessions",
		Columns: []Column{
			{Name: "token", Kind: KindText, NotNull: true},
			{Name: "user_id", Kind: KindUUID, NotNull: true, References: "auth_users(id)"},
			{Name: "expires_at", Kind: KindTime, NotNull: true},
			{Name: "created_at", Kind: KindTime, NotNull: true},
		},
		Indexes: [][]string{{"user_id"}},
	},
	{
		Name: "profiles",
		Columns: append([]Column{
			id(),
			{Name: "email", Kind: KindText, NotNull: true},
			{Name: "full_name", Kind: KindText, NotNull: true},
			{Name: "phone", Kind: KindText},
			{Name: "address", Kind: KindLongText},
			{Name: "role", Kind: KindText, NotNull: true},
			{Name: "status", Kind: KindText, NotNull: true, Default: "'pending'"},
			{Name: "id_proof_url", Kind: KindText},
		}, timestamps()...),
		Indexes: [][]string{{"status"}, {"role"}},
	},
	{
		Name: "shops",
		Columns: append([]Column{
			id(),
			{Name: "shopkeeper_id", Kind: KindUUID, NotNull: true, Unique: true, References: "profiles(id)"},
			{Name: "shop_name", Kind: KindText, NotNull: true},
			{Name: "shop_type", Kind: KindText, NotNull: true, Default: "'retail'"},
			{Name: "description", Kind: KindLongText},
			{Name: "address", Kind: KindLongText, NotNull: true},
			{Name: "city", Kind: KindText, NotNull: true},
			{Name: "state", Kind: KindText, NotNull: true},
			{Name: "pincode", Kind: KindText, NotNull: true},
			{Name: "phone", Kind: KindText, NotNull: true},
			{Name: "email", Kind: KindText},
			{Name: "logo_url", Kind: KindText},
			{Name: "opening_hours", Kind: KindText},
			{Name: "is_active", Kind: KindBool, NotNull: true, Default: "TRUE"},
			{Name: "rating", Kind: KindFloat, NotNull: true, Default: "0"},
		}, timestamps()...),
		Indexes: [][]string{{"city"}, {"is_active"}},
	},
	{
		Name: "products",
		Columns: append([]Column{
			id(),
			{Name: "shop_id", Kind: KindUUID, NotNull: true, References: "shops(id)"},
			{Name: "name", Kind: KindText, NotNull: true},
			{Name: "description", Kind: KindLongText},
			{Name: "category", Kind: KindText, NotNull: true},
			{Name: "price", Kind: KindDecimal, NotNull: true},
			{Name: "discount_percentage", Kind: KindDecimal, NotNull: true, Default: "0"},
			{Name: "final_price", Kind: KindDecimal, NotNull: true},
			{Name: "quantity", Kind: KindInt, NotNull: true, Default: "0"},
			{Name: "unit", Kind: KindText, NotNull: true, Default: "'piece'"},
			{Name: "image_url", Kind: KindText},
			{Name: "is_available", Kind: KindBool, NotNull: true, Default: "TRUE"},
		}, timestamps()...),
		Indexes: [][]string{{"shop_id"}, {"category"}},
	},
	{
		Name: "orders",
		Columns: append([]Column{
			id(),
			{Name: "user_id", Kind: KindUUID, NotNull: true, References: "profiles(id)"},
			{Name: "shop_id", Kind: KindUUID, NotNull: true, References: "shops(id)"},
			{Name: "order_type", Kind: KindText, NotNull: true},
			{Name: "status", Kind: KindText, NotNull: true, Default: "'pending'"},
			{Name: "total_amount", Kind: KindDecimal, NotNull: true},
			{Name: "payment_method", Kind: KindText, NotNull: true},
			{Name: "payment_status", Kind: KindText, NotNull: true, Default: "'pending'"},
			{Name: "delivery_type", Kind: KindText, NotNull: true},
			{Name: "notes", Kind: KindLongText},
		}, timestamps()...),
		Indexes: [][]string{{"user_id"}, {"shop_id"}, {"created_at"}},
	},
	{
		Name: "order_items",
		Columns: []Column{
			id(),
			{Name: "order_id", Kind: KindUUID, NotNull: true, References: "orders(id)"},
			{Name: "product_id", Kind: KindUUID, NotNull: true, References: "products(id)"},
			{Name: "quantity", Kind: KindInt, NotNull: true},
			{Name: "unit_price", Kind: KindDecimal, NotNull: true},
			{Name: "total_price", Kind: KindDecimal, NotNull: true},
			{Name: "created_at", Kind: KindTime, NotNull: true},
		},
		Indexes: [][]string{{"order_id"}},
	},
	{
		Name: "feedback",
		Columns: []Column{
			id(),
			{Name: "user_id", Kind: KindUUID, NotNull: true, References: "profiles(id)"},
			{Name: "shop_id", Kind: KindUUID, NotNull: true, References: "shops(id)"},
			{Name: "order_id", Kind: KindUUID, References: "orders(id)"},
			{Name: "rating", Kind: KindInt, NotNull: true},
			{Name: "comment", Kind: KindLongText},
			{Name: "created_at", Kind: KindTime, NotNull: true},
		},
		Indexes: [][]string{{"shop_id"}},
	},
}

// LookupTable finds a catalog table by name
func LookupTable(name string) (*Table, bool) {
	for i := range Catalog {
		if Catalog[i].Name == name {
			return &Catalog[i], true
		}
	}
	return nil, false
}

// CreateTableSQL renders the CREATE TABLE statement for t
func CreateTableSQL(d Dialect, t Table) string {
	var defs []string
	for _, c := range t.Columns {
		def := d.Quote(c.Name) + " " + d.columnType(c.Kind)
		if c.NotNull {
			def += " NOT NULL"
		}
		if c.Default != "" {
			def += " DEFAULT " + c.Default
		}
		if c.Unique {
			def += " UNIQUE"
		}
		defs = append(defs, def)
	}

	if t.HasColumn("id") {
		defs = append(defs, "PRIMARY KEY ("+d.Quote("id")+")")
	} else if t.HasColumn("token") {
		defs = append(defs, "PRIMARY KEY ("+d.Quote("token")+")")
	}

	for _, c := range t.Columns {
		if c.References == "" {
			continue
		}
		table, column, _ := strings.Cut(strings.TrimSuffix(c.References, ")"), "(")
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
			d.Quote(c.Name), d.Quote(table), d.Quote(column)))
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)", d.Quote(t.Name), strings.Join(defs, ",\n    "))
	if d == MySQL {
		stmt += " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"
	}
	return stmt
}

func createIndexSQL(d Dialect, t Table, columns []string) string {
	name := "idx_" + t.Name + "_" + strings.Join(columns, "_")
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
	}
	if d == MySQL {
		// MySQL has no IF NOT EXISTS for indexes; SetupSchema tolerates duplicates
		return fmt.Sprintf("CREATE INDEX %s ON %s (%s)", name, d.Quote(t.Name), strings.Join(quoted, ", "))
	}
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", name, d.Quote(t.Name), strings.Join(quoted, ", "))
}

// SetupSchema creates every catalog table and index
func (db *DB) SetupSchema(ctx context.Context) error {
	for _, t := range Catalog {
		if _, err := db.ExecContext(ctx, CreateTableSQL(db.Dialect, t)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
		for _, columns := range t.Indexes {
			if _, err := db.ExecContext(ctx, createIndexSQL(db.Dialect, t, columns)); err != nil {
				if db.Dialect == MySQL && strings.Contains(err.Error(), "Duplicate key name") {
					continue
				}
				return fmt.Errorf("failed to create index on %s: %w", t.Name, err)
			}
		}
	}

	return nil
}

// DropSchema removes all catalog tables, dependents first
func (db *DB) DropSchema(ctx context.Context) error {
	for i := len(Catalog) - 1; i >= 0; i-- {
		stmt := "DROP TABLE IF EXISTS " + db.Dialect.Quote(Catalog[i].Name)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", Catalog[i].Name, err)
		}
	}

	return nil
}
