package database

import (
	"fmt"
	"strconv"
)

// Dialect captures the SQL differences between the supported drivers
type Dialect int

const (
	Postgres Dialect = iota
	MySQL
)

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "postgresql", "":
		return Postgres, nil
	case "mysql", "tidb":
		return MySQL, nil
	default:
		return 0, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func (d Dialect) DriverName() string {
	if d == MySQL {
		return "mysql"
	}
	return "postgres"
}

func (d Dialect) String() string {
	return d.DriverName()
}

// Placeholder returns the bind marker for the n-th argument, starting at 1
func (d Dialect) Placeholder(n int) string {
	if d == MySQL {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

// Quote quotes an identifier already checked against the catalog
func (d Dialect) Quote(ident string) string {
	if d == MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

func (d Dialect) columnType(kind Kind) string {
	switch kind {
	case KindUUID:
		if d == MySQL {
			return "CHAR(36)"
		}
		return "UUID"
	case KindText:
		if d == MySQL {
			return "VARCHAR(255)"
		}
		return "TEXT"
	case KindLongText:
		return "TEXT"
	case KindInt:
		return "INT"
	case KindBool:
		return "BOOLEAN"
	case KindDecimal:
		return "DECIMAL(12,2)"
	case KindFloat:
		if d == MySQL {
			return "DOUBLE"
		}
		return "DOUBLE PRECISION"
	case KindTime:
		if d == MySQL {
			return "DATETIME(6)"
		}
		return "TIMESTAMPTZ"
	}
	return "TEXT"
}
