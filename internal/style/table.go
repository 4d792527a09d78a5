package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column with name and width.
type Column struct {
	Name  string
	Width int
	Align Alignment
}

// Alignment specifies column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table provides styled table rendering. Cells may already carry ANSI
// styling; widths are measured on the visible text.
type Table struct {
	columns     []Column
	rows        [][]string
	indent      string
	headerStyle lipgloss.Style
}

// NewTable creates a new table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{
		columns:     columns,
		indent:      "  ",
		headerStyle: Bold,
	}
}

// SetIndent sets the left indent for the table.
func (t *Table) SetIndent(indent string) *Table {
	t.indent = indent
	return t
}

// AddRow adds a row of values to the table.
func (t *Table) AddRow(values ...string) *Table {
	for len(values) < len(t.columns) {
		values = append(values, "")
	}
	t.rows = append(t.rows, values)
	return t
}

// Render returns the formatted table string. The last column is never
// truncated or padded.
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	var sb strings.Builder
	last := len(t.columns) - 1

	sb.WriteString(t.indent)
	for i, col := range t.columns {
		sb.WriteString(t.cell(t.headerStyle.Render(col.Name), col, i == last))
		if i < last {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("\n")

	width := 0
	for i, col := range t.columns {
		w := col.Width
		if i == last && lipgloss.Width(col.Name) > w {
			w = lipgloss.Width(col.Name)
		}
		width += w
		if i < last {
			width++ // space between columns
		}
	}
	sb.WriteString(t.indent)
	sb.WriteString(Dim.Render(strings.Repeat("─", width)))
	sb.WriteString("\n")

	for _, row := range t.rows {
		sb.WriteString(t.indent)
		for i, col := range t.columns {
			sb.WriteString(t.cell(row[i], col, i == last))
			if i < last {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (t *Table) cell(val string, col Column, last bool) string {
	if last {
		return val
	}
	w := lipgloss.Width(val)
	if w > col.Width && col.Width > 3 {
		// Styled cells are truncated as plain text.
		plain := []rune(stripAnsi(val))
		if len(plain) > col.Width {
			plain = plain[:col.Width-3]
		}
		val = string(plain) + "..."
		w = lipgloss.Width(val)
	}
	if w >= col.Width {
		return val
	}
	padding := strings.Repeat(" ", col.Width-w)
	if col.Align == AlignRight {
		return padding + val
	}
	return val + padding
}

// stripAnsi removes ANSI escape sequences from a string.
func stripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for i := 0; i < len(s); i++ {
		if s[i] == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if s[i] == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteByte(s[i])
	}
	return result.String()
}
