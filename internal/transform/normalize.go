package transform

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/moviedb/internal/source"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	time.DateTime,
	time.RFC3339,
}

// Normalize projects raw rows onto the table's columns and coerces every value.
// Source columns unknown to the table are dropped; table columns absent from
// the source become NULL.
func Normalize(table *moviedb.Table, raw []source.RawRow) []moviedb.Row {
	rows := make([]moviedb.Row, len(raw))
	for i, r := range raw {
		row := make(moviedb.Row, len(table.Columns))
		for _, col := range table.Columns {
			text, ok := r[col.Name]
			if !ok {
				row[col.Name] = nil
				continue
			}
			row[col.Name] = Coerce(col.Type, text)
		}
		rows[i] = row
	}
	return rows
}

// Coerce converts one textual value to the Go value for typ, or nil.
func Coerce(typ moviedb.ColumnType, text string) any {
	switch typ {
	case moviedb.ColumnInteger:
		return toInteger(text)
	case moviedb.ColumnFloat:
		return toFloat(text)
	case moviedb.ColumnBoolean:
		return ToBool(text)
	case moviedb.ColumnDate:
		return toDate(text)
	case moviedb.ColumnJSON:
		return toJSON(text)
	default:
		if text == "" {
			return nil
		}
		return text
	}
}

func parseNumber(text string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(text string) any {
	f, ok := parseNumber(text)
	if !ok {
		return nil
	}
	return f
}

// toInteger accepts integral values in the INTEGER column range, so "862.0" is 862.
func toInteger(text string) any {
	f, ok := parseNumber(text)
	if !ok || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return nil
	}
	return int64(f)
}

// ToBool maps the accepted literals to a bool. Native bools pass through.
// Anything else is NULL.
func ToBool(v any) any {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch val {
		case "True", "true":
			return true
		case "False", "false":
			return false
		}
	}
	return nil
}

func toDate(text string) any {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return nil
}

// toJSON encodes the raw text as a JSON string literal, whatever it holds,
// so one column never mixes encodings. Empty becomes NULL, never the text null.
func toJSON(text string) any {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(text); err != nil {
		return nil
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
