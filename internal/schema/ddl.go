package schema

import (
	"fmt"
	"strings"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Dialect selects the SQL flavour of a destination store.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// String returns the driver name of the dialect.
func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// QuoteIdent double-quotes an identifier. Both dialects accept this form,
// and it is required for mixed-case names like movieId and keywords like cast.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ColumnType renders the SQL type of a column.
func (d Dialect) ColumnType(c moviedb.Column) string {
	switch c.Type {
	case moviedb.ColumnInteger:
		return "INTEGER"
	case moviedb.ColumnFloat:
		if d == SQLite {
			return "REAL"
		}
		return "DOUBLE PRECISION"
	case moviedb.ColumnBoolean:
		if d == SQLite {
			return "INTEGER"
		}
		return "BOOLEAN"
	case moviedb.ColumnDate:
		if d == SQLite {
			return "TEXT"
		}
		return "DATE"
	case moviedb.ColumnJSON:
		// Serialized text is kept verbatim so that reruns are byte-identical.
		return "TEXT"
	default:
		if c.Size > 0 && d == Postgres {
			return fmt.Sprintf("VARCHAR(%d)", c.Size)
		}
		return "TEXT"
	}
}

// CreateTable renders CREATE TABLE for t with its key as primary key.
func (d Dialect) CreateTable(t *moviedb.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", QuoteIdent(t.Name))
	for i, c := range t.Columns {
		fmt.Fprintf(&b, "    %s %s", QuoteIdent(c.Name), d.ColumnType(c))
		if c.Name == t.Key {
			b.WriteString(" PRIMARY KEY")
		}
		if i < len(t.Columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	return b.String()
}

// DropTable renders an idempotent DROP TABLE for t.
func (d Dialect) DropTable(t *moviedb.Table) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", QuoteIdent(t.Name))
}

// ResetStatements returns the drops, in reverse load order, followed by the creates.
func (d Dialect) ResetStatements(tables []*moviedb.Table) []string {
	stmts := make([]string, 0, 2*len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		stmts = append(stmts, d.DropTable(tables[i]))
	}
	for _, t := range tables {
		stmts = append(stmts, d.CreateTable(t))
	}
	return stmts
}
