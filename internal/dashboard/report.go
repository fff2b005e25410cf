package dashboard

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

const (
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

// Report prints dashboard sections as plain text.
type Report struct {
	w       io.Writer
	content *Content
	color   bool
}

func NewReport(w io.Writer, content *Content, color bool) *Report {
	return &Report{w: w, content: content, color: color}
}

// Write prints the named sections, or every section when names is empty.
func (r *Report) Write(snap *entity.Snapshot, names ...string) error {
	if len(names) == 0 {
		names = Sections
	}
	fmt.Fprintf(r.w, "%s\n%s\n", r.style(ansiBold, r.content.Title), r.style(ansiDim, r.content.Caption))
	fmt.Fprintf(r.w, "%s\n", r.style(ansiDim, fmt.Sprintf("snapshot %s from %s", snap.ID, snap.Source)))
	for _, name := range names {
		p, err := BuildPage(snap, r.content, name)
		if err != nil {
			return err
		}
		if err := r.page(p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Report) page(p *Page) error {
	fmt.Fprintf(r.w, "\n%s\n%s\n\n", r.style(ansiBold, strings.ToUpper(p.Section.Tab)), p.Section.Heading)

	tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
	for _, m := range p.Metrics {
		fmt.Fprintf(tw, "  %s\t%s\n", m.Label, m.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, t := range p.Tables {
		fmt.Fprintf(r.w, "\n  %s\n", r.style(ansiBold, t.Title))
		tw := tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  %s\n", strings.Join(t.Columns, "\t"))
		if len(t.Rows) == 0 {
			fmt.Fprintf(tw, "  %s\n", noData)
		}
		for _, row := range t.Rows {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = c.Text
			}
			fmt.Fprintf(tw, "  %s\n", strings.Join(cells, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, n := range p.Notes {
		fmt.Fprintf(r.w, "\n  %s\n", r.style(ansiDim, n))
	}
	return nil
}

func (r *Report) style(code, s string) string {
	if !r.color {
		return s
	}
	return code + s + ansiReset
}
