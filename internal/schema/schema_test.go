package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

func TestTables_LoadOrderAndKeys(t *testing.T) {
	tables := Tables()
	require.Len(t, tables, 4)

	names := make([]string, len(tables))
	for i, table := range tables {
		names[i] = table.Name
		col, ok := table.Column(table.Key)
		require.True(t, ok, "%s key column missing", table.Name)
		assert.Equal(t, moviedb.ColumnInteger, col.Type, table.Name)
	}
	assert.Equal(t, []string{MoviesMetadata, Links, Keywords, Credits}, names)

	assert.True(t, tables[0].Primary)
	for _, dep := range tables[1:] {
		assert.False(t, dep.Primary, dep.Name)
	}
}

func TestTables_OnlyLinksIsPlainCSV(t *testing.T) {
	for _, table := range Tables() {
		assert.Equal(t, table.Name != Links, table.Compressed(), table.Name)
	}
}

func TestTables_ReturnsIndependentCopies(t *testing.T) {
	a := Tables()
	a[0].Columns[0].Name = "mutated"

	b := Tables()
	assert.Equal(t, "id", b[0].Columns[0].Name)
}

func TestMoviesMetadata_NestedColumns(t *testing.T) {
	movies, ok := Lookup(MoviesMetadata)
	require.True(t, ok)

	var nested []string
	for _, c := range movies.Columns {
		if c.Type == moviedb.ColumnJSON {
			nested = append(nested, c.Name)
		}
	}
	assert.ElementsMatch(t, []string{
		"belongs_to_collection", "genres", "production_companies",
		"production_countries", "spoken_languages",
	}, nested)
}

func TestCreateTable_Postgres(t *testing.T) {
	links, _ := Lookup(Links)
	got := Postgres.CreateTable(links)

	assert.Equal(t, `CREATE TABLE "links" (
    "movieId" INTEGER PRIMARY KEY,
    "imdbId" VARCHAR(20),
    "tmdbId" VARCHAR(20)
)`, got)
}

func TestCreateTable_SQLiteQuotesReservedWords(t *testing.T) {
	credits, _ := Lookup(Credits)
	got := SQLite.CreateTable(credits)

	assert.Contains(t, got, `"cast" TEXT`)
	assert.Contains(t, got, `"id" INTEGER PRIMARY KEY`)
	assert.NotContains(t, got, "VARCHAR")
}

func TestColumnType_Dialects(t *testing.T) {
	tests := []struct {
		column   moviedb.Column
		postgres string
		sqlite   string
	}{
		{moviedb.Column{Type: moviedb.ColumnFloat}, "DOUBLE PRECISION", "REAL"},
		{moviedb.Column{Type: moviedb.ColumnBoolean}, "BOOLEAN", "INTEGER"},
		{moviedb.Column{Type: moviedb.ColumnDate}, "DATE", "TEXT"},
		{moviedb.Column{Type: moviedb.ColumnJSON}, "TEXT", "TEXT"},
		{moviedb.Column{Type: moviedb.ColumnText, Size: 50}, "VARCHAR(50)", "TEXT"},
		{moviedb.Column{Type: moviedb.ColumnText}, "TEXT", "TEXT"},
	}

	for _, tt := range tests {
		t.Run(tt.column.Type.String(), func(t *testing.T) {
			assert.Equal(t, tt.postgres, Postgres.ColumnType(tt.column))
			assert.Equal(t, tt.sqlite, SQLite.ColumnType(tt.column))
		})
	}
}

func TestResetStatements_DropsBeforeCreates(t *testing.T) {
	stmts := Postgres.ResetStatements(Tables())
	require.Len(t, stmts, 8)

	assert.Equal(t, `DROP TABLE IF EXISTS "credits"`, stmts[0])
	assert.Equal(t, `DROP TABLE IF EXISTS "movies_metadata"`, stmts[3])
	assert.True(t, strings.HasPrefix(stmts[4], `CREATE TABLE "movies_metadata"`))
	assert.True(t, strings.HasPrefix(stmts[7], `CREATE TABLE "credits"`))
}

func TestQuoteIdent_EscapesQuotes(t *testing.T) {
	assert.Equal(t, `"we""ird"`, QuoteIdent(`we"ird`))
}
