// Package view provides output formatting for mdit commands.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Format represents an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatPlain Format = "plain"
)

// ValidFormats lists the accepted --output values.
func ValidFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatPlain)}
}

// ValidateFormat accepts an empty format (the default) or one of ValidFormats.
func ValidateFormat(format string) error {
	switch Format(format) {
	case "", FormatTable, FormatJSON, FormatPlain:
		return nil
	}
	return fmt.Errorf("invalid output format %q (valid: %s)", format, strings.Join(ValidFormats(), ", "))
}

// Renderer renders data in a specific format.
type Renderer struct {
	format  Format
	writer  io.Writer
	noColor bool
}

// NewRenderer creates a new renderer with the specified format.
func NewRenderer(format Format, noColor bool) *Renderer {
	if noColor {
		color.NoColor = true
	}
	if format == "" {
		format = FormatTable
	}
	return &Renderer{
		format:  format,
		writer:  os.Stdout,
		noColor: noColor,
	}
}

// SetWriter sets the output writer.
func (r *Renderer) SetWriter(w io.Writer) {
	r.writer = w
}

// Format returns the output format.
func (r *Renderer) Format() Format {
	return r.format
}

// RenderTable renders rows under aligned headers.
func (r *Renderer) RenderTable(headers []string, rows [][]string) {
	if r.format == FormatJSON {
		r.renderTableAsJSON(headers, rows)
		return
	}

	if r.format == FormatPlain {
		r.renderTableAsPlain(rows)
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, val := range row {
			if i < len(widths) && utf8.RuneCountInString(val) > widths[i] {
				widths[i] = utf8.RuneCountInString(val)
			}
		}
	}

	bold := color.New(color.Bold)
	for i, h := range headers {
		_, _ = bold.Fprint(r.writer, pad(h, widths[i], i == len(headers)-1))
	}
	fmt.Fprintln(r.writer)

	for _, row := range rows {
		for i, val := range row {
			width := 0
			if i < len(widths) {
				width = widths[i]
			}
			fmt.Fprint(r.writer, pad(val, width, i == len(row)-1))
		}
		fmt.Fprintln(r.writer)
	}
}

func pad(s string, width int, last bool) string {
	if last {
		return s
	}
	return s + strings.Repeat(" ", width-utf8.RuneCountInString(s)+2)
}

func (r *Renderer) renderTableAsJSON(headers []string, rows [][]string) {
	var result []map[string]string
	for _, row := range rows {
		item := make(map[string]string)
		for i, header := range headers {
			if i < len(row) {
				item[strings.ToLower(header)] = row[i]
			}
		}
		result = append(result, item)
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(r.writer, string(data))
}

func (r *Renderer) renderTableAsPlain(rows [][]string) {
	for _, row := range rows {
		fmt.Fprintln(r.writer, strings.Join(row, "\t"))
	}
}

// TreeLine is one node in an indented tree listing.
type TreeLine struct {
	Depth int
	Type  string
	Span  string
	Text  string
}

// RenderTree prints one node per line, indented by depth. Text is quoted
// and truncated so each node stays on its own line.
func (r *Renderer) RenderTree(lines []TreeLine) {
	if r.format == FormatPlain {
		for _, l := range lines {
			fmt.Fprintf(r.writer, "%s%s\n", strings.Repeat("  ", l.Depth), l.Type)
		}
		return
	}

	typeColor := color.New(color.FgCyan)
	dim := color.New(color.Faint)
	for _, l := range lines {
		fmt.Fprint(r.writer, strings.Repeat("  ", l.Depth))
		_, _ = typeColor.Fprint(r.writer, l.Type)
		if l.Span != "" {
			_, _ = dim.Fprint(r.writer, " @"+l.Span)
		}
		if l.Text != "" {
			fmt.Fprint(r.writer, " "+strconv.Quote(Truncate(l.Text, 40)))
		}
		fmt.Fprintln(r.writer)
	}
}

// RenderJSON renders an object as JSON.
func (r *Renderer) RenderJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(r.writer, string(data))
	return nil
}

// RenderText renders plain text.
func (r *Renderer) RenderText(text string) {
	fmt.Fprintln(r.writer, text)
}

// RenderKeyValue renders a key-value pair.
func (r *Renderer) RenderKeyValue(key, value string) {
	if r.format == FormatJSON {
		data, _ := json.Marshal(map[string]string{key: value})
		fmt.Fprintln(r.writer, string(data))
		return
	}
	bold := color.New(color.Bold)
	_, _ = bold.Fprintf(r.writer, "%s: ", key)
	fmt.Fprintln(r.writer, value)
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	green := color.New(color.FgGreen)
	_, _ = green.Fprintln(r.writer, "✓ "+msg)
}

// Warning prints a non-fatal problem.
func (r *Renderer) Warning(msg string) {
	yellow := color.New(color.FgYellow)
	_, _ = yellow.Fprintln(r.writer, "! "+msg)
}

// Error prints an error message.
func (r *Renderer) Error(msg string) {
	red := color.New(color.FgRed)
	_, _ = red.Fprintln(r.writer, "✗ "+msg)
}

// Truncate truncates a string to the specified length in bytes.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
