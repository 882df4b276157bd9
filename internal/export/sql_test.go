package export

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestWriteSQL_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// One connection, so the in-memory database is shared.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	sheets := Build(exportIndex(), Options{IncludeProperties: true, IncludeMappings: true})

	require.NoError(t, WriteSQL(ctx, db, DialectSQLite, sheets))
	// Writing twice replaces the tables.
	require.NoError(t, WriteSQL(ctx, db, DialectSQLite, sheets))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "schemagraph_properties"`).Scan(&n))
	assert.Equal(t, 3, n)

	var status, reason string
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT "status", "conflict_reason" FROM "schemagraph_mappings" WHERE "mapping_id" = ?`, "m2").Scan(&status, &reason))
	assert.Equal(t, "conflict", status)
	assert.Equal(t, "not a clearance", reason)
}

func TestWriteSQL_PostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sheet := Sheet{Name: "mini", Header: []string{"Mapping ID", "Status"}, Rows: [][]string{{"m1", "approved"}}}

	mock.ExpectBegin()
	mock.ExpectExec(`DROP TABLE IF EXISTS "schemagraph_mini"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE "schemagraph_mini" ("mapping_id" TEXT, "status" TEXT)`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO "schemagraph_mini" ("mapping_id", "status") VALUES ($1, $2)`).
		WithArgs("m1", "approved").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, WriteSQL(context.Background(), db, DialectPostgres, []Sheet{sheet}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteSQL_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sheet := Sheet{Name: "mini", Header: []string{"ID"}, Rows: [][]string{{"a"}}}
	boom := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS `schemagraph_mini`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE `schemagraph_mini` (`id` TEXT)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `schemagraph_mini` (`id`) VALUES (?)").WithArgs("a").WillReturnError(boom)
	mock.ExpectRollback()

	err = WriteSQL(context.Background(), db, DialectMySQL, []Sheet{sheet})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialectForDriver(t *testing.T) {
	d, err := DialectForDriver("postgresql")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d)

	_, err = DialectForDriver("oracle")
	assert.Error(t, err)

	assert.Equal(t, []string{"property_id", "last_modified"}, ColumnNames(Sheet{Header: []string{"Property ID", "Last Modified"}}))
}
