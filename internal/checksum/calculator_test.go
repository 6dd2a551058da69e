package checksum

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

var testTable = &moviedb.Table{
	Name: "t",
	Key:  "id",
	Columns: []moviedb.Column{
		{Name: "id", Type: moviedb.ColumnInteger},
		{Name: "title", Type: moviedb.ColumnText},
		{Name: "released", Type: moviedb.ColumnDate},
	},
}

func TestSHA256_Sum(t *testing.T) {
	calc := New()

	sum, err := calc.Sum(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", sum)
}

func TestSHA256_FileMatchesSum(t *testing.T) {
	calc := New()
	path := filepath.Join(t.TempDir(), "links.csv")
	content := "movieId,imdbId,tmdbId\n1,0114709,862\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	fromFile, err := calc.File(path)
	require.NoError(t, err)
	fromReader, err := calc.Sum(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, fromReader, fromFile)
	assert.Len(t, fromFile, 64)
}

func TestSHA256_FileMissing(t *testing.T) {
	_, err := New().File(filepath.Join(t.TempDir(), "absent.csv"))
	assert.True(t, os.IsNotExist(err), "got %v", err)
}

func TestSHA256_RowsDeterministic(t *testing.T) {
	calc := New()
	day := time.Date(1995, 10, 30, 0, 0, 0, 0, time.UTC)
	rows := []moviedb.Row{
		{"id": int64(1), "title": "Toy Story", "released": day},
		{"id": int64(2), "title": nil, "released": nil},
	}

	first := calc.Rows(testTable, rows)
	second := calc.Rows(testTable, []moviedb.Row{
		{"released": day, "title": "Toy Story", "id": int64(1)},
		{"id": int64(2)},
	})

	assert.Equal(t, first, second)
}

func TestSHA256_RowsDistinguishNullFromEmpty(t *testing.T) {
	calc := New()

	withNull := calc.Rows(testTable, []moviedb.Row{{"id": int64(1), "title": nil}})
	withEmpty := calc.Rows(testTable, []moviedb.Row{{"id": int64(1), "title": ""}})

	assert.NotEqual(t, withNull, withEmpty)
}

func TestSHA256_RowsOrderSensitive(t *testing.T) {
	calc := New()
	a := moviedb.Row{"id": int64(1)}
	b := moviedb.Row{"id": int64(2)}

	assert.NotEqual(t, calc.Rows(testTable, []moviedb.Row{a, b}), calc.Rows(testTable, []moviedb.Row{b, a}))
}

func BenchmarkRows(b *testing.B) {
	calc := New()
	rows := make([]moviedb.Row, 1000)
	for i := range rows {
		rows[i] = moviedb.Row{"id": int64(i), "title": "title", "released": time.Now()}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		calc.Rows(testTable, rows)
	}
}
