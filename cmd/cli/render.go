package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/yourusername/fileconv-go/internal/domain"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#06B6D4"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7B61FF")).
			Bold(true)
)

// progressRenderer draws progress events as a single redrawn terminal line
type progressRenderer struct {
	out     io.Writer
	bar     progress.Model
	mu      sync.Mutex
	lastLen int
}

func newProgressRenderer(out io.Writer) *progressRenderer {
	return &progressRenderer{
		out: out,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// OnProgress implements domain.ProgressSink
func (r *progressRenderer) OnProgress(event domain.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := r.bar.ViewAs(event.Percent / 100)
	if !event.Stage.IsTerminal() && event.Label != "" {
		line += " " + labelStyle.Render(event.Label)
	}

	// Overwrite leftovers of a longer previous line
	width := lipgloss.Width(line)
	pad := ""
	if r.lastLen > width {
		pad = strings.Repeat(" ", r.lastLen-width)
	}
	r.lastLen = width

	fmt.Fprint(r.out, "\r"+line+pad)
	if event.Stage.IsTerminal() {
		fmt.Fprintln(r.out)
		r.lastLen = 0
	}
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render(msg))
}

func printError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+msg))
}

func printInfo(w io.Writer, msg string) {
	fmt.Fprintln(w, infoStyle.Render(msg))
}

// printSelection lists the files about to be uploaded
func printSelection(w io.Writer, sel domain.Selection) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, f := range sel.Files {
		fmt.Fprintf(tw, "  %s\t%s\n", f.Name, humanize.IBytes(uint64(f.SizeBytes)))
	}
	fmt.Fprintf(tw, "  %s\t%s\n", labelStyle.Render("total"), humanize.IBytes(uint64(sel.TotalSize())))
	tw.Flush()
}

// printEntries prints catalog entries grouped under their headers
func printEntries(w io.Writer, entries []domain.FormatEntry) {
	var codes []string
	flush := func() {
		if len(codes) > 0 {
			fmt.Fprintf(w, "  %s\n", strings.Join(codes, ", "))
			codes = nil
		}
	}

	for _, e := range entries {
		if e.IsHeader() {
			flush()
			fmt.Fprintln(w, headerStyle.Render(e.Label))
			continue
		}
		codes = append(codes, e.Code)
	}
	flush()
}

// printHistory prints conversion records as a table
func printHistory(w io.Writer, records []*domain.ConversionRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILES\tTARGET\tSTATUS\tSIZE\tCREATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(r.ID, 8),
			truncate(r.FileNames, 40),
			r.TargetFormat,
			r.Status,
			humanize.IBytes(uint64(r.TotalSize)),
			humanize.Time(r.CreatedAt))
	}
	tw.Flush()
}

// printRecord prints one conversion record in detail
func printRecord(w io.Writer, r *domain.ConversionRecord) {
	fmt.Fprintf(w, "Conversion Details:\n")
	fmt.Fprintf(w, "  ID:       %s\n", r.ID)
	fmt.Fprintf(w, "  Files:    %s (%d)\n", r.FileNames, r.FileCount)
	fmt.Fprintf(w, "  Size:     %s\n", humanize.IBytes(uint64(r.TotalSize)))
	fmt.Fprintf(w, "  Target:   %s\n", r.TargetFormat)
	fmt.Fprintf(w, "  Status:   %s\n", r.Status)
	fmt.Fprintf(w, "  Created:  %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	if r.Filename != "" {
		fmt.Fprintf(w, "  Filename: %s\n", r.Filename)
	}
	if r.OutputPath != "" {
		fmt.Fprintf(w, "  Saved:    %s\n", r.OutputPath)
	}
	if r.ErrorMessage != "" {
		fmt.Fprintf(w, "  Error:    %s\n", r.ErrorMessage)
	}
}

// printStats prints the history summary
func printStats(w io.Writer, stats *domain.ConversionStats) {
	fmt.Fprintln(w, "Conversion Statistics:")
	fmt.Fprintf(w, "  Total:      %d\n", stats.Total)
	fmt.Fprintf(w, "  Processing: %d\n", stats.Processing)
	fmt.Fprintf(w, "  Completed:  %d\n", stats.Completed)
	fmt.Fprintf(w, "  Failed:     %d\n", stats.Failed)
	if len(stats.ByTarget) == 0 {
		return
	}
	fmt.Fprintln(w, "  By target:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range domain.Selectable() {
		if n, ok := stats.ByTarget[e.Code]; ok {
			fmt.Fprintf(tw, "    %s\t%d\n", e.Code, n)
		}
	}
	tw.Flush()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
