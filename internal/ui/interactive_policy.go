package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// InteractivePolicy implements the StagePolicy interface for console
// confirmation. Only "y" or "yes" continues; anything else stops the run.
type InteractivePolicy struct {
	input  *bufio.Reader
	output io.Writer
}

// NewInteractivePolicy creates an InteractivePolicy reading stdin and prompting on stderr.
func NewInteractivePolicy() moviedb.StagePolicy {
	return newInteractivePolicy(os.Stdin, os.Stderr)
}

// newInteractivePolicy wraps input once so answers buffered for a later
// prompt are not lost between calls.
func newInteractivePolicy(input io.Reader, output io.Writer) *InteractivePolicy {
	return &InteractivePolicy{input: bufio.NewReader(input), output: output}
}

// ContinueAfterFailure asks whether to load the remaining tables.
func (p *InteractivePolicy) ContinueAfterFailure(ctx context.Context, table string, cause error) (bool, error) {
	fmt.Fprintf(p.output, "\nLoading %s failed: %v\n", table, cause)
	fmt.Fprint(p.output, "Continue with the remaining tables? [y/N]: ")

	// Read user input with context cancellation support
	inputChan := make(chan string, 1)
	errChan := make(chan error, 1)

	go func() {
		input, err := p.input.ReadString('\n')
		if err != nil && input == "" {
			errChan <- err
			return
		}
		inputChan <- strings.TrimSpace(input)
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case err := <-errChan:
		fmt.Fprintln(p.output)
		return false, fmt.Errorf("failed to read input: %w", err)
	case input := <-inputChan:
		switch strings.ToLower(input) {
		case "y", "yes":
			return true, nil
		default:
			fmt.Fprintln(p.output, "✗ Import stopped.")
			return false, nil
		}
	}
}

// Verify InteractivePolicy implements the StagePolicy interface at compile time
var _ moviedb.StagePolicy = (*InteractivePolicy)(nil)
