// Command moviedb-posters backfills movies_metadata.poster_path from the
// TMDb search API, one request per movie.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/moviedb/internal/cli"
	"github.com/vvka-141/moviedb/pkg/moviedb"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(moviedb.ExitPanic)
		}
	}()

	if err := cli.ExecutePosters(); err != nil {
		os.Exit(moviedb.ExitCodeForError(err))
	}
}
