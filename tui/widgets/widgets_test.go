package widgets

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zouxin96/vibeStock/internal/layout"
	"github.com/zouxin96/vibeStock/internal/widget"
	"github.com/zouxin96/vibeStock/internal/widget/widgettest"
	"github.com/zouxin96/vibeStock/tui/panels"
)

type fixture struct {
	tr   *widgettest.Transport
	mock *clock.Mock
	deps widget.Deps
	host *widget.Host
}

func newFixture() *fixture {
	tr := widgettest.NewTransport()
	mock := clock.NewMock()
	return &fixture{
		tr:   tr,
		mock: mock,
		deps: widgettest.Deps(tr, mock, panels.NewLibrary()),
		host: widget.NewHost(zerolog.Nop()),
	}
}

func (f *fixture) mount(t *testing.T, factory widget.Factory, inst layout.Instance) widget.Widget {
	t.Helper()
	w, err := factory(inst, f.deps)
	require.NoError(t, err)
	require.NoError(t, f.host.Mount(context.Background(), w))
	w.SetSize(80, 20)
	return w
}

func rankRows(n int) []any {
	rows := make([]any, n)
	for i := range rows {
		rows[i] = map[string]any{"名称": fmt.Sprintf("股票%02d", i), "最新价": 10.5, "涨跌幅": 10.0, "封板资金": 123456789}
	}
	return rows
}

func TestLimitRankPaging(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewLimitRank, layout.Instance{Kind: layout.KindLimitRank, WidgetID: "limit_rank"})
	rank := w.(*tableWidget)

	f.tr.Dispatch(limitRankChannel, rankRows(1))
	page, total := rank.Page()
	assert.Equal(t, 1, page)
	assert.Equal(t, 1, total)

	f.tr.Dispatch(limitRankChannel, rankRows(20))
	_, total = rank.Page()
	assert.Equal(t, 3, total)
	assert.Len(t, rank.Rows(), 20)

	w.SetFocus(true)
	w.Update(tea.KeyMsg{Type: tea.KeyRight})
	w.Update(tea.KeyMsg{Type: tea.KeyRight})
	page, _ = rank.Page()
	assert.Equal(t, 3, page)
	assert.Contains(t, w.View(), "12346")

	// Fewer rows send the pager back to the first page
	f.tr.Dispatch(limitRankChannel, rankRows(9))
	page, total = rank.Page()
	assert.Equal(t, 1, page)
	assert.Equal(t, 2, total)
}

func TestTableKeepsRowsOnBadPayload(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewWeightedLimitUp, layout.Instance{Kind: layout.KindWeightedLimitUp, WidgetID: "weighted"})
	table := w.(*tableWidget)

	f.tr.Dispatch(weightedLimitUpChannel, rankRows(2))
	f.tr.Dispatch(weightedLimitUpChannel, json.RawMessage(`{"not":"a list"}`))
	assert.Len(t, table.Rows(), 2)
}

func TestLimitRankInstancesShareChannel(t *testing.T) {
	f := newFixture()
	first := f.mount(t, NewLimitRank, layout.Instance{Kind: layout.KindLimitRank, WidgetID: "rank_a"})
	second := f.mount(t, NewLimitRank, layout.Instance{Kind: layout.KindLimitRank, WidgetID: "rank_b"})

	// The later binding replaces the earlier one
	f.tr.Dispatch(limitRankChannel, rankRows(3))
	assert.Empty(t, first.(*tableWidget).Rows())
	assert.Len(t, second.(*tableWidget).Rows(), 3)

	require.True(t, f.host.Unmount(first))
	f.tr.Dispatch(limitRankChannel, rankRows(5))
	assert.Len(t, second.(*tableWidget).Rows(), 3)
}

func TestPageSizeFromConfig(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewLimitRank, layout.Instance{Kind: layout.KindLimitRank, WidgetID: "r", Config: map[string]any{"page_size": 5}})

	f.tr.Dispatch(limitRankChannel, rankRows(20))
	_, total := w.(*tableWidget).Page()
	assert.Equal(t, 4, total)
}

func watchlistInstance() layout.Instance {
	return layout.Instance{
		Kind:     layout.KindWatchlist,
		WidgetID: "watchlist_main",
		ModuleID: "watchlist",
		Config:   map[string]any{"codes": []any{"600519.SH", "000001.SZ"}},
	}
}

func TestWatchlistSubscribesTwice(t *testing.T) {
	f := newFixture()
	f.mount(t, NewWatchlist, watchlistInstance())

	require.Equal(t, 1, f.tr.SentCount())
	sent := f.tr.Sent()[0]
	assert.Equal(t, subscribeKind, sent.Kind)
	assert.Equal(t, "watchlist_main", sent.Message["widgetId"])
	assert.Equal(t, "watchlist", sent.Message["moduleId"])
	cfg := sent.Message["config"].(map[string]any)
	assert.Equal(t, []string{"600519.SH", "000001.SZ"}, cfg["codes"])

	f.mock.Add(1999 * time.Millisecond)
	assert.Never(t, func() bool { return f.tr.SentCount() != 1 }, 50*time.Millisecond, 5*time.Millisecond)

	f.mock.Add(time.Millisecond)
	require.Eventually(t, func() bool { return f.tr.SentCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, subscribeKind, f.tr.Sent()[1].Kind)

	f.mock.Add(10 * time.Second)
	assert.Never(t, func() bool { return f.tr.SentCount() != 2 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestWatchlistRendersQuotes(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewWatchlist, watchlistInstance())

	f.tr.Dispatch("watchlist_main", json.RawMessage(`[{"code":"600519.SH","name":"贵州茅台","price":1688.5,"change":1.2}]`))
	view := w.View()
	assert.Contains(t, view, "贵州茅台")
	assert.Contains(t, view, "1688.50")
	assert.Contains(t, view, "+1.20%")
}

func TestWatchlistUnmount(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewWatchlist, watchlistInstance())
	wl := w.(*Watchlist)

	require.True(t, f.host.Unmount(w))
	assert.False(t, w.Active())

	// Neither payloads nor the pending resend have any effect
	f.tr.Dispatch("watchlist_main", json.RawMessage(`[{"code":"600519.SH"}]`))
	assert.Empty(t, wl.Rows())
	f.mock.Add(5 * time.Second)
	assert.Never(t, func() bool { return f.tr.SentCount() != 1 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestWatchlistEditCodes(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewWatchlist, watchlistInstance())
	wl := w.(*Watchlist)
	w.SetFocus(true)

	assert.False(t, wl.Capturing())
	w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	require.True(t, wl.Capturing())

	w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(", 300750.sz,600519.SH")})
	cmd := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.False(t, wl.Capturing())
	assert.Equal(t, []string{"600519.SH", "000001.SZ", "300750.SZ"}, wl.Codes())

	cmd()
	sent := f.tr.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, updateConfigKind, sent[1].Kind)
	cfg := sent[1].Message["config"].(map[string]any)
	assert.Equal(t, []string{"600519.SH", "000001.SZ", "300750.SZ"}, cfg["codes"])
}

func TestWatchlistEditCancelsPendingResend(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewWatchlist, watchlistInstance())
	wl := w.(*Watchlist)

	w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(",300750.SZ")})
	cmd := w.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, 2, f.tr.SentCount())

	f.mock.Add(2 * time.Second)
	assert.Never(t, func() bool { return f.tr.SentCount() != 2 }, 50*time.Millisecond, 5*time.Millisecond)

	last := f.tr.Sent()[1]
	assert.Equal(t, updateConfigKind, last.Kind)
	want := []string{"600519.SH", "000001.SZ", "300750.SZ"}
	assert.Equal(t, want, last.Message["config"].(map[string]any)["codes"])
	assert.Equal(t, want, wl.Codes())
}

func TestBadPayloadsAreLogged(t *testing.T) {
	f := newFixture()
	var buf bytes.Buffer
	f.deps.Logger = zerolog.New(&buf)

	f.mount(t, NewLimitRank, layout.Instance{Kind: layout.KindLimitRank, WidgetID: "limit_rank"})
	f.mount(t, NewSectorPie, layout.Instance{Kind: layout.KindSectorPie, WidgetID: "sector_pie"})
	f.mount(t, NewLimitUpMonitor, layout.Instance{Kind: layout.KindLimitUpMonitor, WidgetID: "limit_up_monitor"})

	f.tr.Dispatch(limitRankChannel, json.RawMessage(`{"not":"a list"}`))
	f.tr.Dispatch("sector_pie", json.RawMessage(`{"not":"a list"}`))
	f.tr.Dispatch("limit_up_monitor", json.RawMessage(`[1,2]`))

	out := buf.String()
	assert.Contains(t, out, "keeping previous rows")
	assert.Contains(t, out, "payload ignored")
	assert.Contains(t, out, "status payload ignored")
	assert.Contains(t, out, `"level":"warn"`)
}

func TestWatchlistEditCancelled(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewWatchlist, watchlistInstance())
	wl := w.(*Watchlist)

	w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(",AAA")})
	w.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, wl.Capturing())
	assert.Equal(t, []string{"600519.SH", "000001.SZ"}, wl.Codes())
	assert.Equal(t, 1, f.tr.SentCount())
}

func TestParseCodes(t *testing.T) {
	assert.Equal(t, []string{"600519.SH", "000001.SZ"}, parseCodes(" 600519.sh,,000001.SZ, 600519.SH "))
	assert.Empty(t, parseCodes(" , "))
}

func TestPieChannels(t *testing.T) {
	f := newFixture()
	region := f.mount(t, NewRegionPie, layout.Instance{Kind: layout.KindRegionPie, WidgetID: "region_pie_main", ModuleID: "region_pie"})
	sector := f.mount(t, NewSectorPie, layout.Instance{Kind: layout.KindSectorPie, WidgetID: "sector_pie"})

	f.tr.Dispatch("region_pie", json.RawMessage(`[{"name":"华东","value":3},{"name":"华南","value":"1"}]`))
	f.tr.Dispatch("sector_pie", json.RawMessage(`[{"name":"半导体","value":5}]`))

	assert.Equal(t, []panels.Slice{{Name: "华东", Value: 3}, {Name: "华南", Value: 1}}, region.(*PieWidget).Slices())
	assert.Equal(t, []panels.Slice{{Name: "半导体", Value: 5}}, sector.(*PieWidget).Slices())
}

func TestPieCustomKeys(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewSectorPie, layout.Instance{
		Kind: layout.KindSectorPie, WidgetID: "s",
		Config: map[string]any{"name_key": "sector", "value_key": "count"},
	})

	f.tr.Dispatch("s", []any{map[string]any{"sector": "银行", "count": 2}})
	assert.Equal(t, []panels.Slice{{Name: "银行", Value: 2}}, w.(*PieWidget).Slices())
}

func TestIndexLine(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewIndexLine, layout.Instance{
		Kind: layout.KindIndexLine, WidgetID: "index_line",
		Config: map[string]any{"value_keys": "sh, sz"},
	})

	f.tr.Dispatch("index_line", json.RawMessage(`[{"time":"09:30","sh":3000,"sz":9800},{"time":"09:31","sh":3004.5,"sz":"bad"}]`))
	series := w.(*LineWidget).Series()
	require.Len(t, series, 2)
	assert.Equal(t, "sh", series[0].Name)
	assert.Equal(t, []float64{3000, 3004.5}, series[0].Values)
	assert.Equal(t, []float64{9800, 0}, series[1].Values)
	assert.Contains(t, w.View(), "09:30")
}

func TestStockKline(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewStockKline, layout.Instance{Kind: layout.KindStockKline, WidgetID: "stock_kline"})

	f.tr.Dispatch("stock_kline", json.RawMessage(`[{"date":"2024-01-02","open":10,"close":10.8,"low":9.5,"high":11}]`))
	assert.Equal(t, []panels.Candle{{Label: "2024-01-02", Open: 10, High: 11, Low: 9.5, Close: 10.8}}, w.(*KlineWidget).Candles())
}

func TestMarketHeatmapUsesModuleChannel(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewMarketHeatmap, layout.Instance{Kind: layout.KindMarketHeatmap, WidgetID: "market_heatmap", ModuleID: "widget_market_heatmap"})

	f.tr.Dispatch("market_heatmap", json.RawMessage(`[{"name":"ignored"}]`))
	assert.Empty(t, w.(*HeatmapWidget).Tiles())

	f.tr.Dispatch("widget_market_heatmap", json.RawMessage(`[{"name":"半导体","change":3.2,"limit_weight":4}]`))
	assert.Equal(t, []panels.Tile{{Name: "半导体", Change: 3.2, Weight: 4}}, w.(*HeatmapWidget).Tiles())
}

func TestLimitUpMonitor(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewLimitUpMonitor, layout.Instance{Kind: layout.KindLimitUpMonitor, WidgetID: "limit_up_monitor"})

	f.tr.Dispatch("limit_up_monitor", json.RawMessage(`{
		"last_run":"15:00:03","status":"Running","count":42,
		"top_stocks":[{"名称":"中国中免","连板数":3}]
	}`))
	card := w.(*statusWidget).Card()
	assert.Equal(t, "Running", card.Status)
	assert.Equal(t, panels.LevelOK, card.Level)
	assert.Equal(t, "42", card.Fields[1].Value)
	require.Len(t, card.List, 1)
	assert.Equal(t, "中国中免", card.List[0].Label)
	assert.Equal(t, "3 boards", card.List[0].Value)

	f.tr.Dispatch("limit_up_monitor", map[string]any{"status": "Running", "error": "timeout"})
	card = w.(*statusWidget).Card()
	assert.Equal(t, panels.LevelError, card.Level)
	assert.Contains(t, w.View(), "timeout")
}

func TestAkshareMonitor(t *testing.T) {
	f := newFixture()
	w := f.mount(t, NewAkshareMonitor, layout.Instance{Kind: layout.KindAkshareMonitor, WidgetID: "akshare_monitor"})

	f.tr.Dispatch(akshareStatusChannel, json.RawMessage(`{"is_connected":true,"last_updated":"10:00:00","error_count":0}`))
	card := w.(*statusWidget).Card()
	assert.Equal(t, "Connected", card.Status)
	assert.Equal(t, panels.LevelOK, card.Level)

	f.tr.Dispatch(akshareStatusChannel, json.RawMessage(`{"is_connected":true,"error_count":2}`))
	assert.Equal(t, panels.LevelWarn, w.(*statusWidget).Card().Level)

	f.tr.Dispatch(akshareStatusChannel, json.RawMessage(`{"is_connected":false}`))
	card = w.(*statusWidget).Card()
	assert.Equal(t, "Disconnected", card.Status)
	assert.Equal(t, panels.LevelError, card.Level)
}

func TestRegisterAll(t *testing.T) {
	reg := widget.NewRegistry()
	require.NoError(t, RegisterAll(reg, panels.NewLibrary(), zerolog.Nop()))
	assert.Len(t, reg.Kinds(), len(entries))

	// A second pass collides on every kind
	err := RegisterAll(reg, panels.NewLibrary(), zerolog.Nop())
	assert.ErrorIs(t, err, widget.ErrDuplicateKind)
}

func TestRegisterAllSkipsMissingBases(t *testing.T) {
	lib := widget.NewLibrary()
	lib.Provide(widget.BaseTable, panels.TableConstructor(panels.NewTablePanel))

	reg := widget.NewRegistry()
	require.NoError(t, RegisterAll(reg, lib, zerolog.Nop()))
	assert.Equal(t, []string{layout.KindLimitRank, layout.KindWatchlist, layout.KindWeightedLimitUp}, reg.Kinds())
	assert.False(t, reg.Has(layout.KindRegionPie))
}

func TestFactoryFailsWithoutBase(t *testing.T) {
	deps := widgettest.Deps(widgettest.NewTransport(), clock.NewMock(), widget.NewLibrary())
	_, err := NewMarketHeatmap(layout.Instance{Kind: layout.KindMarketHeatmap, WidgetID: "h"}, deps)
	assert.ErrorIs(t, err, widget.ErrMissingBase)
}
