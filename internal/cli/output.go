// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"trading-journal/internal/risk"
)

var (
	red     = color.New(color.FgRed)
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	cyan    = color.New(color.FgCyan)
	magenta = color.New(color.FgMagenta)
	bold    = color.New(color.Bold)
	dim     = color.New(color.Faint)
)

// Output handles formatted output for the CLI.
type Output struct {
	writer       io.Writer
	reader       io.Reader
	jsonMode     bool
	colorEnabled bool
	assumeYes    bool
}

// NewOutput creates a new Output instance.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	yes, _ := cmd.Flags().GetBool("yes")
	return &Output{
		writer:       cmd.OutOrStdout(),
		reader:       cmd.InOrStdin(),
		jsonMode:     jsonMode,
		colorEnabled: !jsonMode && !color.NoColor,
		assumeYes:    yes,
	}
}

// IsJSON returns true if JSON output mode is enabled.
func (o *Output) IsJSON() bool {
	return o.jsonMode
}

// JSON outputs data as JSON.
func (o *Output) JSON(data interface{}) error {
	encoder := json.NewEncoder(o.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Println prints a message with newline.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Printf prints a formatted message.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Success prints a success message in green.
func (o *Output) Success(format string, args ...interface{}) {
	o.colored(green, format, args...)
}

// Error prints an error message in red.
func (o *Output) Error(format string, args ...interface{}) {
	o.colored(red, format, args...)
}

// Warning prints a warning message in yellow.
func (o *Output) Warning(format string, args ...interface{}) {
	o.colored(yellow, format, args...)
}

// Info prints an info message in cyan.
func (o *Output) Info(format string, args ...interface{}) {
	o.colored(cyan, format, args...)
}

// Bold prints a bold message.
func (o *Output) Bold(format string, args ...interface{}) {
	o.colored(bold, format, args...)
}

// Dim prints a dimmed message.
func (o *Output) Dim(format string, args ...interface{}) {
	o.colored(dim, format, args...)
}

func (o *Output) colored(c *color.Color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(o.writer, o.paint(c, msg))
}

func (o *Output) paint(c *color.Color, text string) string {
	if !o.colorEnabled {
		return text
	}
	return c.Sprint(text)
}

// Green returns green colored text.
func (o *Output) Green(text string) string {
	return o.paint(green, text)
}

// Red returns red colored text.
func (o *Output) Red(text string) string {
	return o.paint(red, text)
}

// Yellow returns yellow colored text.
func (o *Output) Yellow(text string) string {
	return o.paint(yellow, text)
}

// Cyan returns cyan colored text.
func (o *Output) Cyan(text string) string {
	return o.paint(cyan, text)
}

// BoldText returns bold text.
func (o *Output) BoldText(text string) string {
	return o.paint(bold, text)
}

// DimText returns dimmed text.
func (o *Output) DimText(text string) string {
	return o.paint(dim, text)
}

func (o *Output) pnlColor(v float64) *color.Color {
	switch {
	case v > 0:
		return green
	case v < 0:
		return red
	default:
		return dim
	}
}

// FormatPnL formats P&L with color.
func (o *Output) FormatPnL(pnl float64) string {
	return o.paint(o.pnlColor(pnl), FormatPnL(pnl))
}

// FormatPercent formats percentage with color.
func (o *Output) FormatPercent(pct float64) string {
	return o.paint(o.pnlColor(pct), FormatPercent(pct))
}

// Result colors a result label.
func (o *Output) Result(label string) string {
	switch label {
	case "WIN", "TP HIT":
		return o.Green(label)
	case "LOSS", "SL HIT":
		return o.Red(label)
	case "PENDING":
		return o.Yellow(label)
	default:
		return o.DimText(label)
	}
}

// Badge colors a discipline badge.
func (o *Output) Badge(b risk.Badge) string {
	switch b {
	case risk.BadgeElite:
		return o.paint(magenta, "★ "+string(b))
	case risk.BadgeSolid:
		return o.Green("✓ " + string(b))
	default:
		return o.Red("⚠ " + string(b))
	}
}

// Confirm asks a yes/no question on the command's input. It returns true
// without asking when --yes was given.
func (o *Output) Confirm(format string, args ...interface{}) bool {
	if o.assumeYes {
		return true
	}
	fmt.Fprintf(o.writer, "%s [y/N]: ", o.paint(yellow, fmt.Sprintf(format, args...)))
	line, err := bufio.NewReader(o.reader).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(o.writer)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// Table represents a simple table for output.
type Table struct {
	headers []string
	rows    [][]string
	output  *Output
}

// NewTable creates a new table.
func NewTable(output *Output, headers ...string) *Table {
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		output:  output,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleLen(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				if n := visibleLen(cell); n > widths[i] {
					widths[i] = n
				}
			}
		}
	}

	t.printRow(t.headers, widths, true)
	t.printSeparator(widths)
	for _, row := range t.rows {
		t.printRow(row, widths, false)
	}
}

func (t *Table) printRow(cells []string, widths []int, isHeader bool) {
	var parts []string
	for i, cell := range cells {
		if i < len(widths) {
			padding := widths[i] - visibleLen(cell)
			if padding < 0 {
				padding = 0
			}
			padded := cell + strings.Repeat(" ", padding)
			if isHeader {
				padded = t.output.BoldText(padded)
			}
			parts = append(parts, padded)
		}
	}
	t.output.Println(strings.Join(parts, "  "))
}

func (t *Table) printSeparator(widths []int) {
	var parts []string
	for _, w := range widths {
		parts = append(parts, strings.Repeat("─", w))
	}
	t.output.Println(t.output.DimText(strings.Join(parts, "──")))
}

// visibleLen returns the printed width of s, ignoring ANSI escape codes.
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		default:
			n++
		}
	}
	return n
}

// Box draws a box around content.
func (o *Output) Box(title string, content []string) {
	maxLen := visibleLen(title)
	for _, line := range content {
		if n := visibleLen(line); n > maxLen {
			maxLen = n
		}
	}

	width := maxLen + 4
	border := strings.Repeat("─", width-2)
	edge := o.DimText("│")

	o.Println(o.DimText("┌" + border + "┐"))
	o.Printf("%s %s%s %s\n", edge, o.BoldText(title), strings.Repeat(" ", width-4-visibleLen(title)), edge)
	o.Println(o.DimText("├" + border + "┤"))
	for _, line := range content {
		o.Printf("%s %s%s %s\n", edge, line, strings.Repeat(" ", width-4-visibleLen(line)), edge)
	}
	o.Println(o.DimText("└" + border + "┘"))
}

// Bar renders a horizontal progress bar for value out of limit.
func (o *Output) Bar(value, limit float64, width int) string {
	if limit <= 0 {
		return o.DimText(strings.Repeat("░", width))
	}
	pct := value / limit
	if pct > 1 {
		pct = 1
	}
	if pct < 0 {
		pct = 0
	}
	filled := int(pct * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case pct >= 1:
		return o.Red(bar)
	case pct*100 >= risk.WarningThresholdPercent:
		return o.Yellow(bar)
	default:
		return o.Green(bar)
	}
}
