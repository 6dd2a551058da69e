package schema

import "github.com/vvka-141/moviedb/pkg/moviedb"

// Table names.
const (
	MoviesMetadata = "movies_metadata"
	Links          = "links"
	Keywords       = "keywords"
	Credits        = "credits"
)

func text(name string) moviedb.Column {
	return moviedb.Column{Name: name, Type: moviedb.ColumnText}
}

func varchar(name string, size int) moviedb.Column {
	return moviedb.Column{Name: name, Type: moviedb.ColumnText, Size: size}
}

func integer(name string) moviedb.Column {
	return moviedb.Column{Name: name, Type: moviedb.ColumnInteger}
}

func float(name string) moviedb.Column {
	return moviedb.Column{Name: name, Type: moviedb.ColumnFloat}
}

func boolean(name string) moviedb.Column {
	return moviedb.Column{Name: name, Type: moviedb.ColumnBoolean}
}

func date(name string) moviedb.Column {
	return moviedb.Column{Name: name, Type: moviedb.ColumnDate}
}

func nested(name string) moviedb.Column {
	return moviedb.Column{Name: name, Type: moviedb.ColumnJSON}
}

// Tables returns fresh copies of the destination tables in load order.
func Tables() []*moviedb.Table {
	return []*moviedb.Table{
		{
			Name:    MoviesMetadata,
			Source:  "movies_metadata.csv.zip",
			Key:     "id",
			Primary: true,
			Columns: []moviedb.Column{
				integer("id"),
				boolean("adult"),
				nested("belongs_to_collection"),
				float("budget"),
				nested("genres"),
				text("homepage"),
				varchar("imdb_id", 20),
				varchar("original_language", 10),
				text("original_title"),
				text("overview"),
				float("popularity"),
				varchar("poster_path", 255),
				nested("production_companies"),
				nested("production_countries"),
				date("release_date"),
				float("revenue"),
				float("runtime"),
				nested("spoken_languages"),
				varchar("status", 50),
				text("tagline"),
				text("title"),
				boolean("video"),
				float("vote_average"),
				integer("vote_count"),
			},
		},
		{
			Name:   Links,
			Source: "links.csv",
			Key:    "movieId",
			Columns: []moviedb.Column{
				integer("movieId"),
				varchar("imdbId", 20),
				varchar("tmdbId", 20),
			},
		},
		{
			Name:   Keywords,
			Source: "keywords.csv.zip",
			Key:    "id",
			Columns: []moviedb.Column{
				integer("id"),
				nested("keywords"),
			},
		},
		{
			Name:   Credits,
			Source: "credits.csv.zip",
			Key:    "id",
			Columns: []moviedb.Column{
				nested("cast"),
				nested("crew"),
				integer("id"),
			},
		},
	}
}

// Lookup returns the named table from a fresh catalogue.
func Lookup(name string) (*moviedb.Table, bool) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}
