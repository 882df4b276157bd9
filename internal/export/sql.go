package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"schemagraph/internal/match"
)

// Dialect is the SQL flavour of the target database.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// DialectForDriver maps a database/sql driver name to its dialect.
func DialectForDriver(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pq":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	default:
		return "", fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func (d Dialect) quote(ident string) string {
	if d == DialectMySQL {
		return "`" + ident + "`"
	}

	return `"` + ident + `"`
}

func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}

	return "?"
}

// TableName returns the table a sheet is written to.
func TableName(s Sheet) string {
	return "schemagraph_" + s.Name
}

// ColumnNames returns the snake_case column names of a sheet header.
func ColumnNames(s Sheet) []string {
	cols := make([]string, len(s.Header))
	for i, h := range s.Header {
		cols[i] = strings.Join(match.Tokenize(h), "_")
	}

	return cols
}

// WriteSQL replaces one table per sheet with the sheet contents. All
// sheets are written in a single transaction.
func WriteSQL(ctx context.Context, db *sql.DB, d Dialect, sheets []Sheet) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin export transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, s := range sheets {
		if err = writeTable(ctx, tx, d, s); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}

	return nil
}

func writeTable(ctx context.Context, tx *sql.Tx, d Dialect, s Sheet) error {
	table := d.quote(TableName(s))
	cols := ColumnNames(s)

	quoted := make([]string, len(cols))
	defs := make([]string, len(cols))
	marks := make([]string, len(cols))

	for i, c := range cols {
		quoted[i] = d.quote(c)
		defs[i] = quoted[i] + " TEXT"
		marks[i] = d.placeholder(i + 1)
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("failed to drop %s: %w", table, err)
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(quoted, ", "), strings.Join(marks, ", "))

	for i, row := range s.Rows {
		args := make([]any, len(row))
		for j, v := range row {
			args[j] = v
		}

		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("failed to insert row %d into %s: %w", i+1, table, err)
		}
	}

	return nil
}
