package formatting

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// PlainTableWriter writes kubectl-style columns without box drawing, for
// piping into grep, awk or cut.
type PlainTableWriter struct {
	headers      []string
	rows         [][]string
	columnWidths []int
	// minPadding is the minimum space between columns
	minPadding  int
	showHeaders bool
	output      io.Writer
}

// NewPlainTableWriter creates a plain table writer. Headers are shown by
// default.
func NewPlainTableWriter(output io.Writer) *PlainTableWriter {
	return &PlainTableWriter{
		minPadding:  3,
		showHeaders: true,
		output:      output,
	}
}

// SetHeaders sets the column headers, upper-cased.
func (w *PlainTableWriter) SetHeaders(headers []string) {
	w.headers = make([]string, len(headers))
	w.columnWidths = make([]int, len(headers))
	for i, h := range headers {
		upper := strings.ToUpper(h)
		w.headers[i] = upper
		w.columnWidths[i] = len(upper)
	}
}

// SetNoHeaders controls whether to suppress the header row.
func (w *PlainTableWriter) SetNoHeaders(noHeaders bool) {
	w.showHeaders = !noHeaders
}

// AppendRow adds a row, padded or cut to the header count.
func (w *PlainTableWriter) AppendRow(row []string) {
	normalized := make([]string, len(w.headers))
	for i := range w.headers {
		if i < len(row) {
			normalized[i] = row[i]
			if len(row[i]) > w.columnWidths[i] {
				w.columnWidths[i] = len(row[i])
			}
		}
	}
	w.rows = append(w.rows, normalized)
}

// Render writes the table.
func (w *PlainTableWriter) Render() error {
	if len(w.headers) == 0 {
		return nil
	}
	if w.showHeaders {
		if err := w.printRow(w.headers); err != nil {
			return err
		}
	}
	for _, row := range w.rows {
		if err := w.printRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (w *PlainTableWriter) printRow(row []string) error {
	var sb strings.Builder
	for i, cell := range row {
		if i == len(row)-1 {
			sb.WriteString(cell)
		} else {
			sb.WriteString(fmt.Sprintf("%-*s", w.columnWidths[i]+w.minPadding, cell))
		}
	}
	_, err := fmt.Fprintln(w.output, strings.TrimRight(sb.String(), " "))
	return err
}

type plainFormatter struct {
	options Options
	now     func() time.Time
}

func (f *plainFormatter) Statuses(w io.Writer, statuses []Status) error {
	now := time.Now()
	if f.now != nil {
		now = f.now()
	}

	t := NewPlainTableWriter(w)
	t.SetHeaders(statusHeaders)
	t.SetNoHeaders(f.options.NoHeaders)
	for _, s := range statuses {
		alive := "no"
		if s.Alive {
			alive = "yes"
		}
		t.AppendRow([]string{s.Profile, s.GrantType, s.State, alive, s.ExpiresIn(now), dash(s.Scope), dash(statusError(s))})
	}
	return t.Render()
}

func (f *plainFormatter) Profiles(w io.Writer, profiles []ProfileRow) error {
	t := NewPlainTableWriter(w)
	t.SetHeaders(profileHeaders)
	t.SetNoHeaders(f.options.NoHeaders)
	for _, p := range profiles {
		name := p.Name
		if p.Default {
			name += "*"
		}
		valid := "yes"
		if !p.Valid {
			valid = "no"
		}
		t.AppendRow([]string{name, p.GrantType, dash(p.ClientID), dash(p.TokenURL), p.TLSVersion, valid})
	}
	return t.Render()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
