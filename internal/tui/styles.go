package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vvka-141/moviedb/pkg/moviedb"
)

// Color palette - keeping it minimal and accessible.
var (
	ColorPrimary = lipgloss.Color("39")  // Blue
	ColorSuccess = lipgloss.Color("34")  // Green
	ColorWarning = lipgloss.Color("214") // Orange
	ColorError   = lipgloss.Color("196") // Red
	ColorMuted   = lipgloss.Color("240") // Dark gray
)

// Styles for status output.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Symbols for visual feedback.
const (
	SymbolCheck      = "✓"
	SymbolCross      = "✗"
	SymbolArrowRight = "→"
	SymbolBullet     = "•"
)

func render(style lipgloss.Style, s string, styled bool) string {
	if !styled {
		return s
	}
	return style.Render(s)
}

// FormatTableResult renders one stage as a single status line.
func FormatTableResult(r moviedb.TableResult, styled bool) string {
	if r.Failed() {
		return fmt.Sprintf("%s %s %s",
			render(ErrorStyle, SymbolCross, styled),
			r.Table,
			render(ErrorStyle, r.Err.Error(), styled))
	}

	dropped := r.Filtered + r.Duplicates + r.NullKeys
	line := fmt.Sprintf("%s %s: %d rows loaded", render(SuccessStyle, SymbolCheck, styled), r.Table, r.Loaded)
	if dropped > 0 {
		line += render(MutedStyle, fmt.Sprintf(" (%d of %d dropped)", dropped, r.Parsed), styled)
	}
	return line + render(MutedStyle, fmt.Sprintf(" in %v", r.Duration.Round(time.Millisecond)), styled)
}

// FormatReport renders the run summary, one line per table plus a verdict.
func FormatReport(r *moviedb.Report, styled bool) string {
	var b strings.Builder
	b.WriteString(render(TitleStyle, fmt.Sprintf("Import %s", r.RunID), styled))
	b.WriteByte('\n')

	for _, t := range r.Tables {
		b.WriteString("  ")
		b.WriteString(FormatTableResult(t, styled))
		b.WriteByte('\n')
	}

	switch {
	case r.Success:
		b.WriteString(render(SuccessStyle, fmt.Sprintf("%s All tables loaded in %v", SymbolCheck, r.Duration.Round(time.Millisecond)), styled))
	case r.Aborted:
		b.WriteString(render(WarningStyle, fmt.Sprintf("%s Import stopped after a failure", SymbolCross), styled))
	case r.Err != nil:
		b.WriteString(render(ErrorStyle, fmt.Sprintf("%s Import failed: %v", SymbolCross, r.Err), styled))
	default:
		b.WriteString(render(WarningStyle, fmt.Sprintf("%s Import finished with failures", SymbolCross), styled))
	}
	b.WriteByte('\n')
	return b.String()
}

// FormatPosterSummary renders the poster job's outcome counts.
func FormatPosterSummary(updated, unchanged, failed int, styled bool) string {
	symbol, style := SymbolCheck, SuccessStyle
	if failed > 0 {
		symbol, style = SymbolCross, WarningStyle
	}
	return fmt.Sprintf("%s Posters: %d updated, %d unchanged, %d failed",
		render(style, symbol, styled), updated, unchanged, failed)
}
