package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Calculator computes digests for the import pipeline.
type Calculator interface {
	// File streams the file at path through the hash.
	File(path string) (string, error)

	// Rows digests rows in order, encoding each value by column type.
	Rows(table *moviedb.Table, rows []moviedb.Row) string
}

// SHA256 implements Calculator using SHA-256.
// It is a zero-size type; pass it by value.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// Sum hashes everything read from r.
func (c SHA256) Sum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File hashes the file at path without loading it into memory.
func (c SHA256) File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sum, err := c.Sum(f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return sum, nil
}

// Field and record separators; neither occurs in any encoded value prefix.
const (
	unitSep   = 0x1f
	recordSep = 0x1e
)

// Rows digests rows in order. NULL is encoded distinctly from the empty string.
func (c SHA256) Rows(table *moviedb.Table, rows []moviedb.Row) string {
	h := sha256.New()
	buf := make([]byte, 0, 256)
	for _, row := range rows {
		for _, col := range table.Columns {
			buf = appendValue(buf[:0], row[col.Name])
			buf = append(buf, unitSep)
			h.Write(buf)
		}
		h.Write([]byte{recordSep})
	}
	return finish(h)
}

func appendValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case nil:
		return append(buf, 'N')
	case int64:
		return strconv.AppendInt(append(buf, 'i'), val, 10)
	case float64:
		return strconv.AppendFloat(append(buf, 'f'), val, 'g', -1, 64)
	case bool:
		return strconv.AppendBool(append(buf, 'b'), val)
	case time.Time:
		return val.UTC().AppendFormat(append(buf, 'd'), time.DateOnly)
	case string:
		return append(append(buf, 's'), val...)
	default:
		return fmt.Appendf(append(buf, '?'), "%v", val)
	}
}

func finish(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

var _ Calculator = SHA256{}
