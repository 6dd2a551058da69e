package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

const utf8BOM = "\uFEFF"

// RawRow maps header names to the textual field values of one record.
// Columns absent from a short record are absent from the map.
type RawRow map[string]string

// Dataset is a parsed source file.
type Dataset struct {
	Header []string
	Rows   []RawRow
}

// Reader opens and parses source files.
type Reader struct {
	tempDir string
}

// Option configures a Reader.
type Option func(*Reader)

// WithTempDir sets the directory compressed sources are extracted into.
// The default is os.TempDir().
func WithTempDir(dir string) Option {
	return func(r *Reader) {
		r.tempDir = dir
	}
}

// NewReader creates a Reader.
func NewReader(opts ...Option) *Reader {
	r := &Reader{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read parses the table's source file at filePath.
// For compressed tables the archive member named table.EntryName() is used,
// or the archive's only member when no such name exists.
func (r *Reader) Read(filePath string, table *moviedb.Table) (*Dataset, error) {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", filePath, moviedb.ErrMissingSource)
		}
		return nil, err
	}

	if !table.Compressed() {
		return parseFile(filePath)
	}

	extracted, err := r.extract(filePath, table.EntryName())
	if err != nil {
		return nil, err
	}
	defer os.Remove(extracted)

	return parseFile(extracted)
}

// extract copies one member of the archive into a new temporary file and returns its path.
func (r *Reader) extract(archivePath, entry string) (string, error) {
	archive, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive %s: %v: %w", archivePath, err, moviedb.ErrParseFailure)
	}
	defer archive.Close()

	member := findEntry(archive.File, entry)
	if member == nil {
		return "", fmt.Errorf("archive %s has no member %s: %w", archivePath, entry, moviedb.ErrMissingSource)
	}

	in, err := member.Open()
	if err != nil {
		return "", fmt.Errorf("open member %s: %v: %w", member.Name, err, moviedb.ErrParseFailure)
	}
	defer in.Close()

	out, err := os.CreateTemp(r.tempDir, "moviedb-*-"+path.Base(entry))
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", fmt.Errorf("extract %s: %v: %w", member.Name, err, moviedb.ErrParseFailure)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("extract %s: %w", member.Name, err)
	}
	return out.Name(), nil
}

// findEntry matches by full name, then by base name, then falls back to a sole regular member.
func findEntry(files []*zip.File, entry string) *zip.File {
	var regular []*zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.Name == entry {
			return f
		}
		regular = append(regular, f)
	}
	for _, f := range regular {
		if path.Base(f.Name) == entry {
			return f
		}
	}
	if len(regular) == 1 {
		return regular[0]
	}
	return nil
}

func parseFile(filePath string) (*Dataset, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a CSV document whose first record is the header.
// Quoted fields may span lines and a stray quote inside a field is kept as
// text. A record with more fields than the header is a parse failure; a
// shorter record leaves the trailing columns absent.
func Parse(in io.Reader) (*Dataset, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file, no header: %w", moviedb.ErrParseFailure)
		}
		return nil, fmt.Errorf("read header: %v: %w", err, moviedb.ErrParseFailure)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	ds := &Dataset{Header: header}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, moviedb.ErrParseFailure)
		}
		if len(record) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d has %d fields, header has %d: %w",
				line, len(record), len(header), moviedb.ErrParseFailure)
		}

		row := make(RawRow, len(record))
		for i, field := range record {
			name := header[i]
			if _, dup := row[name]; dup {
				continue
			}
			row[name] = field
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}
