package formatting

import (
	"fmt"
	"io"
	"time"

	pkgstrings "apiconnect/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var statusHeaders = []string{"PROFILE", "GRANT", "STATE", "ALIVE", "EXPIRES IN", "SCOPE", "ERROR"}

var profileHeaders = []string{"NAME", "GRANT", "CLIENT ID", "TOKEN URL", "TLS", "VALID"}

// tableFormatter renders rounded go-pretty tables.
type tableFormatter struct {
	options Options
	now     func() time.Time
}

func (f *tableFormatter) clock() time.Time {
	if f.now != nil {
		return f.now()
	}
	return time.Now()
}

// createTable creates a new table with standard styling
func (f *tableFormatter) createTable(w io.Writer, headers []string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	if !f.options.Color {
		t.Style().Color = table.ColorOptionsDefault
	}
	if !f.options.NoHeaders {
		row := make(table.Row, len(headers))
		for i, h := range headers {
			row[i] = f.paint(text.FgHiCyan, h)
		}
		t.AppendHeader(row)
	}
	return t
}

func (f *tableFormatter) paint(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

func (f *tableFormatter) Statuses(w io.Writer, statuses []Status) error {
	if len(statuses) == 0 {
		_, err := fmt.Fprintln(w, f.paint(text.FgYellow, "No connections"))
		return err
	}

	t := f.createTable(w, statusHeaders)
	now := f.clock()
	for _, s := range statuses {
		t.AppendRow(table.Row{
			f.paint(text.FgHiCyan, s.Profile),
			s.GrantType,
			s.State,
			f.alive(s.Alive),
			s.ExpiresIn(now),
			pkgstrings.Truncate(s.Scope, pkgstrings.DefaultCellMaxLen),
			pkgstrings.Truncate(statusError(s), pkgstrings.DefaultCellMaxLen),
		})
	}
	t.Render()
	return nil
}

func (f *tableFormatter) Profiles(w io.Writer, profiles []ProfileRow) error {
	if len(profiles) == 0 {
		_, err := fmt.Fprintln(w, f.paint(text.FgYellow, "No profiles configured"))
		return err
	}

	t := f.createTable(w, profileHeaders)
	for _, p := range profiles {
		name := p.Name
		if p.Default {
			name += " (default)"
		}
		valid := f.paint(text.FgGreen, "yes")
		if !p.Valid {
			valid = f.paint(text.FgRed, "no: "+pkgstrings.Truncate(p.Problem, pkgstrings.DefaultCellMaxLen))
		}
		t.AppendRow(table.Row{
			f.paint(text.FgHiCyan, name),
			p.GrantType,
			p.ClientID,
			pkgstrings.Truncate(p.TokenURL, pkgstrings.DefaultCellMaxLen),
			p.TLSVersion,
			valid,
		})
	}
	t.Render()
	return nil
}

func (f *tableFormatter) alive(alive bool) string {
	if alive {
		return f.paint(text.FgGreen, "yes")
	}
	return f.paint(text.FgRed, "no")
}

func statusError(s Status) string {
	if s.Error != "" {
		return s.Error
	}
	return s.ErrorResponse
}
