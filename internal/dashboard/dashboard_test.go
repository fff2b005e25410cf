package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

var pngMagic = []byte("\x89PNG")

func ts(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
	return &t
}

func amount(v float64) *float64 { return &v }

func fixture() *entity.Snapshot {
	neg := func(d entity.Deal) entity.Deal {
		d.EnteredPrePitch = ts(2024, 1, 2)
		d.EnteredPitching = ts(2024, 1, 9)
		d.EnteredContractNegotiation = ts(2024, 2, 1)
		return d
	}
	return &entity.Snapshot{
		ID:       "1790000000000000000",
		Source:   "csv:seeds",
		LoadedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		Events: []entity.Event{
			{UserID: "u1", Timestamp: ts(2024, 1, 5)},
			{UserID: "u1", Timestamp: ts(2024, 2, 5)},
			{UserID: "u2", Timestamp: ts(2024, 1, 7)},
			{UserID: "u3", Timestamp: ts(2024, 2, 1)},
			{UserID: "u4", Timestamp: ts(2024, 3, 1)},
		},
		Deals: []entity.Deal{
			neg(entity.Deal{ID: "d1", CompanyID: "1", DealType: "New Business", Amount: amount(1000), IsClosed: true, IsClosedWon: true, CloseDate: ts(2024, 2, 10)}),
			neg(entity.Deal{ID: "d2", CompanyID: "2", DealType: "New Business", Amount: amount(2000), IsClosed: true, IsClosedWon: true, CloseDate: ts(2024, 3, 10)}),
			neg(entity.Deal{ID: "d3", CompanyID: "3", DealType: "New Business", Amount: amount(3000), IsClosed: true, IsClosedWon: true, CloseDate: ts(2024, 3, 12)}),
			neg(entity.Deal{ID: "d4", CompanyID: "4", DealType: "Upsell", Amount: amount(1500), IsClosed: true, CloseDate: ts(2024, 3, 20)}),
			{ID: "d5", CompanyID: "5", IsClosed: true, EnteredPitching: ts(2024, 1, 3), CloseDate: ts(2024, 1, 30)},
			{ID: "d6", CompanyID: "6"},
		},
		Companies: []entity.Company{
			{ID: "1", Country: "Germany", Industry: "Retail"},
			{ID: "2", Country: "Germany", Industry: "Manufacturing"},
			{ID: "3", Country: "Austria"},
		},
		Contacts: []entity.Contact{
			{ID: "c1", CompanyID: "1", LifecycleStage: "customer"},
			{ID: "c2", CompanyID: "2", LifecycleStage: "customer"},
		},
	}
}

func testContent(t *testing.T) *Content {
	t.Helper()
	c, err := LoadContent("")
	require.NoError(t, err)
	return c
}

func metric(p *Page, label string) string {
	for _, m := range p.Metrics {
		if m.Label == label {
			return m.Value
		}
	}
	return ""
}

func TestLoadContent_Default(t *testing.T) {
	c := testContent(t)
	assert.Equal(t, "How many customers do we have today?", c.Customers.Heading)
	assert.Equal(t, "Q2 · ACV", c.ACV.Tab)
	assert.NotEmpty(t, c.Funnel.Notes)
	assert.NotContains(t, c.Customers.Intro, "\n")
}

func TestLoadContent_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.toml")
	require.NoError(t, os.WriteFile(path, []byte("title = \"Board Pack\"\n[acv]\nheading = \"ACV today\"\n"), 0o644))

	c, err := LoadContent(path)
	require.NoError(t, err)
	assert.Equal(t, "Board Pack", c.Title)
	assert.Equal(t, "ACV today", c.ACV.Heading)
	assert.Equal(t, "Q2 · ACV", c.ACV.Tab, "keys not in the file keep the built-in copy")

	_, err = LoadContent(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "€2,000", formatEUR(2000))
	assert.Equal(t, "€6,000", formatEUR(6000))
	assert.Equal(t, "€1,234,567.50", formatEURCents(1234567.5))
	assert.Equal(t, "1,200", formatInt(1200))
	assert.Equal(t, "33.3", formatPercent(33.3))
	assert.Equal(t, noData, formatOptionalEUR(nil))
}

func TestBuildPage_Customers(t *testing.T) {
	p, err := BuildPage(fixture(), testContent(t), SectionCustomers)
	require.NoError(t, err)
	assert.Equal(t, "3", metric(p, "Total Customers"))
	require.Len(t, p.Tables, 2)
	assert.Equal(t, "Germany", p.Tables[0].Rows[0][0].Text)
	assert.Len(t, p.Tables[1].Rows, 2, "null industry is not listed")
	require.NotEmpty(t, p.Notes)
	assert.Contains(t, p.Notes[0], "shows 2 companies")

	require.Len(t, p.Nav, 4)
	assert.True(t, p.Nav[0].Active)
	assert.False(t, p.Nav[1].Active)
}

func TestBuildPage_ACV(t *testing.T) {
	p, err := BuildPage(fixture(), testContent(t), SectionACV)
	require.NoError(t, err)
	assert.Equal(t, "€6,000", metric(p, "Total Revenue"))
	assert.Equal(t, "€2,000.00", metric(p, "Average Contract Value"))
	assert.Equal(t, "3", metric(p, "Won Contracts"))

	rows := p.Tables[0].Rows
	require.Len(t, rows, 1)
	assert.Equal(t, []Cell{{Text: "New Business"}, {Text: "€6,000"}, {Text: "3"}, {Text: "€2,000"}}, rows[0])
}

func TestBuildPage_Retention(t *testing.T) {
	p, err := BuildPage(fixture(), testContent(t), SectionRetention)
	require.NoError(t, err)
	rows := p.Tables[0].Rows
	require.Len(t, rows, 2, "the March cohort is the latest and is dropped")
	assert.Equal(t, "2024-01", rows[0][0].Text)
	assert.Equal(t, "2", rows[0][1].Text)
	assert.Equal(t, Cell{Text: "50.0", Class: "heat-3"}, rows[0][2])
	assert.Equal(t, Cell{Text: "0.0", Class: "heat-0"}, rows[0][3])
}

func TestBuildPage_Funnel(t *testing.T) {
	p, err := BuildPage(fixture(), testContent(t), SectionFunnel)
	require.NoError(t, err)
	assert.Equal(t, "2", metric(p, "Total Lost Deals"))
	assert.Equal(t, "1", metric(p, "Lost at Contract Negotiation"))
	assert.Equal(t, "50%", metric(p, "% of Losses at Last Stage"))
	assert.Equal(t, "75%", metric(p, "Win rate in negotiation"))
	assert.Equal(t, "€2,000", metric(p, "Avg deal size - Won"))
	assert.Equal(t, "€1,500", metric(p, "Avg deal size - Lost"))
	require.Len(t, p.Tables, 4)
	assert.Len(t, p.Tables[3].Rows, 3)
}

func TestBuildPage_UnknownSection(t *testing.T) {
	_, err := BuildPage(fixture(), testContent(t), "pricing")
	assert.ErrorIs(t, err, ErrUnknownSection)
}

func TestBuildPage_EmptySnapshot(t *testing.T) {
	snap := &entity.Snapshot{ID: "x", Source: "csv:empty"}
	for _, name := range Sections {
		p, err := BuildPage(snap, testContent(t), name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, p.Metrics, name)
	}
	p, _ := BuildPage(snap, testContent(t), SectionACV)
	assert.Equal(t, noData, metric(p, "Average Contract Value"))
}

func TestRenderChart(t *testing.T) {
	for _, snap := range []*entity.Snapshot{fixture(), {ID: "empty"}} {
		for name := range charts {
			var buf bytes.Buffer
			require.NoError(t, RenderChart(&buf, name, snap), "chart %s snapshot %s", name, snap.ID)
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), name)
		}
	}
}

// singleMonth leaves one cohort after the latest is dropped and one close month.
func singleMonth() *entity.Snapshot {
	return &entity.Snapshot{
		ID: "single",
		Events: []entity.Event{
			{UserID: "u1", Timestamp: ts(2024, 1, 5)},
			{UserID: "u2", Timestamp: ts(2024, 2, 5)},
		},
		Deals: []entity.Deal{
			{ID: "d1", CompanyID: "1", Amount: amount(500), IsClosed: true, IsClosedWon: true, CloseDate: ts(2024, 2, 10)},
		},
	}
}

func TestRenderChart_SinglePoint(t *testing.T) {
	snap := singleMonth()
	for name := range charts {
		var buf bytes.Buffer
		require.NoError(t, RenderChart(&buf, name, snap), name)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), name)
	}

	_, isBar := retentionChart(snap).(*chart.BarChart)
	assert.True(t, isBar, "one cohort is drawn as bars")
	_, isBar = funnelWinRateChart(snap).(*chart.BarChart)
	assert.True(t, isBar, "one close month is drawn as bars")
}

func TestWinRateChart_SeriesNames(t *testing.T) {
	graph, ok := funnelWinRateChart(fixture()).(*chart.Chart)
	require.True(t, ok)
	var names []string
	for _, s := range graph.Series {
		names = append(names, s.GetName())
	}
	assert.Equal(t, []string{"Closed", "Won", "Win Rate %"}, names)
}

func TestRenderChart_Unknown(t *testing.T) {
	err := RenderChart(&bytes.Buffer{}, "nope", fixture())
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandler(fixture(), testContent(t), zap.NewNop().Sugar())
	require.NoError(t, err)
	return h
}

func TestHandler_Section(t *testing.T) {
	h := newTestHandler(t)
	for _, name := range Sections {
		rr := httptest.NewRecorder()
		h.Section(name)(rr, httptest.NewRequest(http.MethodGet, "/"+name, nil))
		require.Equal(t, http.StatusOK, rr.Code, name)
		assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Contains(t, rr.Body.String(), "1790000000000000000")
		assert.NotContains(t, rr.Body.String(), "style=")
	}
}

func TestHandler_SectionHTMLContent(t *testing.T) {
	h := newTestHandler(t)
	rr := httptest.NewRecorder()
	h.Section(SectionRetention)(rr, httptest.NewRequest(http.MethodGet, "/retention", nil))
	body := rr.Body.String()
	assert.Contains(t, body, `<td class="heat-3">50.0</td>`)
	assert.Contains(t, body, `<img src="/charts/retention.png"`)
	assert.Contains(t, body, `<a href="/retention" class="active">`)
}

func TestHandler_Chart(t *testing.T) {
	h := newTestHandler(t)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /charts/{file}", h.Chart)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/charts/funnel-win-rate.png", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), pngMagic))

	for _, path := range []string{"/charts/unknown.png", "/charts/retention", "/charts/retention.svg"} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
	}
}

func TestHandler_IndexAndStatic(t *testing.T) {
	h := newTestHandler(t)

	rr := httptest.NewRecorder()
	h.Index(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/customers", rr.Header().Get("Location"))

	rr = httptest.NewRecorder()
	h.Static().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/dashboard.css", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), ".heat-5")
}

func TestHandler_Health(t *testing.T) {
	h := newTestHandler(t)
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var got HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "1790000000000000000", got.SnapshotID)
	assert.Equal(t, "2024-06-01T08:00:00Z", got.LoadedAt)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport(&buf, testContent(t), false)
	require.NoError(t, r.Write(fixture(), SectionACV, SectionFunnel))

	out := buf.String()
	assert.Contains(t, out, "Q2 · ACV")
	assert.Contains(t, out, "€2,000.00")
	assert.Contains(t, out, "Contract Negotiation")
	assert.NotContains(t, out, "Q3 · Retention")
	assert.NotContains(t, out, "\x1b[")
}

func TestReport_AllSectionsWithColor(t *testing.T) {
	var buf bytes.Buffer
	r := NewReport(&buf, testContent(t), true)
	require.NoError(t, r.Write(fixture()))
	out := buf.String()
	for _, name := range Sections {
		sec, _ := testContent(t).Section(name)
		assert.Contains(t, out, strings.ToUpper(sec.Tab))
	}
	assert.Contains(t, out, ansiBold)
}

func TestReport_UnknownSection(t *testing.T) {
	r := NewReport(&bytes.Buffer{}, testContent(t), false)
	assert.ErrorIs(t, r.Write(fixture(), "nope"), ErrUnknownSection)
}
