// Command moviedb-import drops and recreates the movie tables, then loads
// movies_metadata.csv, links.csv.zip, keywords.csv.zip and credits.csv.zip
// from the data directory in that order.
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

	if err := cli.ExecuteImport(); err != nil {
		os.Exit(moviedb.ExitCodeForError(err))
	}
}
