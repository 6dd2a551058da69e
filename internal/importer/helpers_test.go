package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/moviedb/internal/checksum"
	"github.com/vvka-141/moviedb/internal/logging"
	"github.com/vvka-141/moviedb/internal/source"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

const (
	moviesCSV = "id,title,original_title,adult,budget,release_date,genres\n" +
		"1,Toy Story,Toy Story,False,30000000,1995-10-30,\"[{'id': 16, 'name': 'Animation'}]\"\n" +
		"2,Jumanji,Jumanji,True,N/A,1995-12-15,[]\n" +
		"2,Jumanji (again),Jumanji,False,1,1995-12-15,[]\n" +
		"null,Broken,Broken,False,0,not-a-date,\n"
	linksCSV    = "movieId,imdbId,tmdbId\n1,0114709,862\n2,0113497,8844\n3,0113228,15602\n"
	keywordsCSV = "id,keywords\n1,\"[{'id': 931, 'name': 'jealousy'}]\"\n2,[]\n3,[]\n"
	creditsCSV  = "cast,crew,id\n[],[],1\n[],[],2\n"
)

// writeDataDir creates a data directory holding the given source files.
// Names ending in .zip are written as archives containing the CSV member.
func writeDataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if !strings.HasSuffix(name, ".zip") {
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			continue
		}
		f, err := os.Create(path)
		require.NoError(t, err)
		zw := zip.NewWriter(f)
		w, err := zw.Create(strings.TrimSuffix(name, ".zip"))
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		require.NoError(t, f.Close())
	}
	return dir
}

func fullDataDir(t *testing.T) string {
	return writeDataDir(t, map[string]string{
		"movies_metadata.csv.zip": moviesCSV,
		"links.csv":               linksCSV,
		"keywords.csv.zip":        keywordsCSV,
		"credits.csv.zip":         creditsCSV,
	})
}

// newTestLoader returns a Loader whose extraction directory is checked for leftovers.
func newTestLoader(t *testing.T, dataDir string) (*Loader, string) {
	t.Helper()
	tempDir := t.TempDir()
	reader := source.NewReader(source.WithTempDir(tempDir))
	return NewLoader(dataDir, reader, checksum.New(), logging.NewNullLogger()), tempDir
}

type memoryStore struct {
	resets    int
	resetErr  error
	appendErr map[string]error
	panicOn   string
	tables    map[string][]moviedb.Row
}

func newMemoryStore() *memoryStore {
	return &memoryStore{appendErr: map[string]error{}, tables: map[string][]moviedb.Row{}}
}

func (s *memoryStore) Reset(_ context.Context, tables []*moviedb.Table) error {
	if s.resetErr != nil {
		return s.resetErr
	}
	s.resets++
	s.tables = make(map[string][]moviedb.Row, len(tables))
	for _, t := range tables {
		s.tables[t.Name] = []moviedb.Row{}
	}
	return nil
}

func (s *memoryStore) Append(_ context.Context, table *moviedb.Table, rows []moviedb.Row) (int64, error) {
	if s.panicOn == table.Name {
		panic("simulated driver crash")
	}
	if err := s.appendErr[table.Name]; err != nil {
		return 0, err
	}
	s.tables[table.Name] = append(s.tables[table.Name], rows...)
	return int64(len(rows)), nil
}

func (s *memoryStore) Close() {}

func (s *memoryStore) ids(table, key string) []int64 {
	var ids []int64
	for _, row := range s.tables[table] {
		ids = append(ids, row[key].(int64))
	}
	return ids
}

type recordingPolicy struct {
	answer bool
	err    error
	asked  []string
}

func (p *recordingPolicy) ContinueAfterFailure(_ context.Context, table string, _ error) (bool, error) {
	p.asked = append(p.asked, table)
	return p.answer, p.err
}

var (
	_ moviedb.Store       = (*memoryStore)(nil)
	_ moviedb.StagePolicy = (*recordingPolicy)(nil)
)
