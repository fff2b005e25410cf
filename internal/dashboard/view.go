package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/funnel"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/retention"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/revenue"
)

const (
	SectionCustomers = "customers"
	SectionACV       = "acv"
	SectionRetention = "retention"
	SectionFunnel    = "funnel"
)

// Sections lists the dashboard sections in navigation order.
var Sections = []string{SectionCustomers, SectionACV, SectionRetention, SectionFunnel}

var ErrUnknownSection = errors.New("unknown section")

// Metric is a headline number.
type Metric struct {
	Label string
	Value string
}

// Cell is one table cell. Class is a CSS class, used for retention heat.
type Cell struct {
	Text  string
	Class string
}

type Table struct {
	Title   string
	Columns []string
	Rows    [][]Cell
}

// ChartRef points to a PNG served under /charts.
type ChartRef struct {
	Name  string
	Title string
}

// Src is the URL of the chart image.
func (c ChartRef) Src() string { return "/charts/" + c.Name + ".png" }

type NavItem struct {
	Name   string
	Tab    string
	Active bool
}

// Page is everything one section renders, for both HTML and the text report.
type Page struct {
	Title      string
	Caption    string
	Nav        []NavItem
	Name       string
	Section    Section
	SnapshotID string
	Source     string
	LoadedAt   string
	Metrics    []Metric
	Charts     []ChartRef
	Tables     []Table
	Notes      []string
}

// BuildPage computes the named section from the snapshot. Nothing is cached:
// every call recomputes from the loaded tables.
func BuildPage(snap *entity.Snapshot, content *Content, name string) (*Page, error) {
	sec, ok := content.Section(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	p := &Page{
		Title:      content.Title,
		Caption:    content.Caption,
		Name:       name,
		Section:    sec,
		SnapshotID: snap.ID,
		Source:     snap.Source,
		LoadedAt:   snap.LoadedAt.Format(time.RFC3339),
	}
	for _, s := range Sections {
		other, _ := content.Section(s)
		p.Nav = append(p.Nav, NavItem{Name: s, Tab: other.Tab, Active: s == name})
	}

	switch name {
	case SectionCustomers:
		customersPage(p, snap)
	case SectionACV:
		acvPage(p, snap)
	case SectionRetention:
		retentionPage(p, snap)
	case SectionFunnel:
		funnelPage(p, snap)
	}
	p.Notes = append(p.Notes, sec.Notes...)
	return p, nil
}

func customersPage(p *Page, snap *entity.Snapshot) {
	c := revenue.ComputeCustomers(snap.Deals, snap.Companies, snap.Contacts)
	p.Metrics = []Metric{
		{Label: "Total Customers", Value: formatInt(c.Total)},
		{Label: "Customers per Contacts", Value: formatInt(c.ContactCustomers)},
	}
	p.Charts = []ChartRef{
		{Name: "customers-country", Title: "By Country"},
		{Name: "customers-industry", Title: "By Industry"},
	}
	p.Tables = []Table{
		countTable("By Country", "Country", c.ByCountry),
		countTable("By Industry", "Industry", c.ByIndustry),
	}
	if c.Mismatch() {
		p.Notes = append(p.Notes, fmt.Sprintf(
			"Note: the contacts table shows %d companies with a 'customer' lifecycle stage, "+
				"vs %d unique companies from closed-won deals. The two sources don't fully align - "+
				"worth investigating which should be treated as the source of truth.",
			c.ContactCustomers, c.Total))
	}
}

func countTable(title, label string, counts []revenue.Count) Table {
	t := Table{Title: title, Columns: []string{label, "Customers"}}
	for _, c := range counts {
		t.Rows = append(t.Rows, []Cell{{Text: c.Label}, {Text: formatInt(c.Value)}})
	}
	return t
}

func acvPage(p *Page, snap *entity.Snapshot) {
	a := revenue.ComputeACV(snap.Deals)
	avg := noData
	if a.HasAmounts {
		avg = formatEURCents(a.Average)
	}
	p.Metrics = []Metric{
		{Label: "Total Revenue", Value: formatEUR(a.TotalRevenue)},
		{Label: "Average Contract Value", Value: avg},
		{Label: "Won Contracts", Value: formatInt(a.WonContracts)},
	}
	p.Charts = []ChartRef{
		{Name: "acv-histogram", Title: "Deal Size Distribution"},
		{Name: "acv-deal-type", Title: "Revenue by Deal Type"},
	}
	t := Table{Title: "Revenue by Deal Type", Columns: []string{"Type", "Total Revenue", "# Deals", "Avg Deal"}}
	for _, r := range a.ByType {
		avg := noData
		if r.HasData() {
			avg = formatEUR(r.Mean)
		}
		t.Rows = append(t.Rows, []Cell{
			{Text: r.DealType},
			{Text: formatEUR(r.Sum)},
			{Text: formatInt(r.Count)},
			{Text: avg},
		})
	}
	p.Tables = []Table{t}
}

func retentionPage(p *Page, snap *entity.Snapshot) {
	cohorts := retention.Cohorts(snap.Events)
	starting := 0
	for _, c := range cohorts {
		starting += c.Starting()
	}
	p.Metrics = []Metric{
		{Label: "Cohorts", Value: formatInt(len(cohorts))},
		{Label: "Starting Users", Value: formatInt(starting)},
	}
	t := Table{Title: "Cohort Retention Table", Columns: []string{"Cohort", "Starting Users"}}
	for k := 1; k <= retention.MaxOffset; k++ {
		t.Columns = append(t.Columns, fmt.Sprintf("M%d %%", k))
	}
	for _, c := range cohorts {
		row := []Cell{{Text: c.Month.String()}, {Text: formatInt(c.Starting())}}
		for k := 1; k <= retention.MaxOffset; k++ {
			row = append(row, Cell{
				Text:  formatPercent(c.Percent[k]),
				Class: fmt.Sprintf("heat-%d", retention.Heat(c.Percent[k])),
			})
		}
		t.Rows = append(t.Rows, row)
	}
	p.Tables = []Table{t}
	p.Charts = []ChartRef{{Name: "retention", Title: "Retention by Cohort"}}
}

func funnelPage(p *Page, snap *entity.Snapshot) {
	losses := funnel.ComputeLosses(snap.Deals)
	neg := funnel.ComputeNegotiation(snap.Deals)
	p.Metrics = []Metric{
		{Label: "Total Lost Deals", Value: formatInt(losses.Total)},
		{Label: "Lost at " + funnel.FinalStage().Name, Value: formatInt(losses.AtFinalStage)},
		{Label: "% of Losses at Last Stage", Value: fmt.Sprintf("%d%%", losses.PercentAtFinalStage)},
		{Label: "Win rate in negotiation", Value: fmt.Sprintf("%d%%", neg.WinRate)},
		{Label: "Avg deal size - Won", Value: formatOptionalEUR(neg.AvgWon)},
		{Label: "Avg deal size - Lost", Value: formatOptionalEUR(neg.AvgLost)},
	}
	p.Charts = []ChartRef{
		{Name: "funnel-stages", Title: "Pipeline Funnel"},
		{Name: "funnel-outcomes", Title: "Contract Negotiation Outcomes"},
		{Name: "funnel-losses", Title: "Lost Deals by Last Stage"},
		{Name: "funnel-win-rate", Title: "Win Rate Trend Over Time"},
	}

	first := funnel.Stages[0].Name
	stages := Table{Title: "Pipeline Funnel", Columns: []string{"Stage", "Deals", "% of " + first}}
	for _, s := range funnel.Counts(snap.Deals) {
		stages.Rows = append(stages.Rows, []Cell{
			{Text: s.Stage}, {Text: formatInt(s.Deals)}, {Text: fmt.Sprintf("%d%%", s.PercentOfFirst)},
		})
	}

	lost := Table{Title: "Lost Deals by Last Stage", Columns: []string{"Last Stage", "Deals"}}
	for _, s := range losses.ByStage {
		lost.Rows = append(lost.Rows, []Cell{{Text: s.Stage}, {Text: formatInt(s.Deals)}})
	}

	outcomes := Table{Title: "Contract Negotiation Outcomes", Columns: []string{"Outcome", "Deals"}}
	for _, o := range neg.Outcomes {
		outcomes.Rows = append(outcomes.Rows, []Cell{{Text: string(o.Outcome)}, {Text: formatInt(o.Deals)}})
	}

	trend := Table{Title: "Win Rate Trend", Columns: []string{"Month", "Won", "Lost", "Total", "Win Rate %"}}
	for _, m := range funnel.WinRateTrend(snap.Deals) {
		trend.Rows = append(trend.Rows, []Cell{
			{Text: m.Month},
			{Text: formatInt(m.Won)},
			{Text: formatInt(m.Lost)},
			{Text: formatInt(m.Total)},
			{Text: formatPercent(m.WinRate)},
		})
	}
	p.Tables = []Table{stages, lost, outcomes, trend}
}
