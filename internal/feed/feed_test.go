package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zouxin96/vibeStock/internal/bus"
	"github.com/zouxin96/vibeStock/internal/layout"
	"github.com/zouxin96/vibeStock/internal/socket"
)

// recorder is a Publisher that keeps the last payload per channel.
type recorder struct {
	mu   sync.Mutex
	last map[string]any
	n    int
}

func newRecorder() *recorder { return &recorder{last: make(map[string]any)} }

func (r *recorder) Broadcast(channel string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last[channel] = data
	r.n++
	return nil
}

func (r *recorder) get(channel string) any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last[channel]
}

func newTestSimulator(pub Publisher) *Simulator {
	cfg := DefaultConfig()
	cfg.Seed = 42
	return NewSimulator(pub, TargetsFor(layout.Default()), cfg, clock.NewMock(), zerolog.Nop())
}

func TestTargetsForDefaultLayout(t *testing.T) {
	targets := TargetsFor(layout.Default())

	channels := make(map[string]Generator)
	for _, tg := range targets {
		channels[tg.Channel] = tg.Generator
	}
	assert.Equal(t, map[string]Generator{
		LimitRankChannel:        GenLimitRank,
		WeightedLimitUpChannel:  GenWeighted,
		"widget_market_heatmap": GenHeatmap,
		"region_pie":            GenRegions,
		"sector_pie":            GenSectors,
		"index_line":            GenIndex,
		"stock_kline":           GenKline,
		"limit_up_monitor":      GenLimitMonitor,
		AkshareStatusChannel:    GenAkshareStatus,
	}, channels)
}

func TestSimulatorTick(t *testing.T) {
	rec := newRecorder()
	sim := newTestSimulator(rec)

	sim.Tick()
	assert.Equal(t, len(TargetsFor(layout.Default())), rec.n)

	rank := rec.get(LimitRankChannel).([]map[string]any)
	require.NotEmpty(t, rank)
	assert.LessOrEqual(t, len(rank), limitBoardSize)
	for i := 1; i < len(rank); i++ {
		assert.GreaterOrEqual(t, rank[i-1]["连板数"].(int), rank[i]["连板数"].(int))
	}

	weighted := rec.get(WeightedLimitUpChannel).([]map[string]any)
	for i := 1; i < len(weighted); i++ {
		assert.GreaterOrEqual(t, weighted[i-1]["weight"].(float64), weighted[i]["weight"].(float64))
	}

	index := rec.get("index_line").([]indexPoint)
	assert.Len(t, index, 1)
	sim.Tick()
	assert.Len(t, rec.get("index_line").([]indexPoint), 2)

	kline := rec.get("stock_kline").([]candle)
	assert.Len(t, kline, klineDays)
	last := kline[len(kline)-1]
	assert.GreaterOrEqual(t, last.High, last.Close)
	assert.LessOrEqual(t, last.Low, last.Close)

	monitor := rec.get("limit_up_monitor").(map[string]any)
	assert.Equal(t, "Running", monitor["status"])
	assert.Equal(t, len(rank), monitor["count"])
}

func TestSimulatorPricesStayWithinLimits(t *testing.T) {
	sim := newTestSimulator(newRecorder())
	for i := 0; i < 500; i++ {
		sim.Tick()
	}
	sim.mu.Lock()
	defer sim.mu.Unlock()
	for _, q := range sim.quotes {
		assert.LessOrEqual(t, q.change(), limitPct(q.Code)+0.1, q.Code)
		assert.GreaterOrEqual(t, q.change(), -limitPct(q.Code)-0.1, q.Code)
	}
}

func TestSimulatorWatchlistControl(t *testing.T) {
	rec := newRecorder()
	sim := newTestSimulator(rec)

	sim.HandleControl("c1", ControlSubscribe, map[string]any{
		"widgetId": "watchlist_main",
		"moduleId": "watchlist",
		"config":   map[string]any{"codes": []any{"600519.SH", "zz999.xx"}},
	})
	assert.Equal(t, map[string][]string{"watchlist_main": {"600519.SH", "ZZ999.XX"}}, sim.Watchlists())

	rows := rec.get("watchlist_main").([]map[string]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "贵州茅台", rows[0]["name"])
	assert.Equal(t, "ZZ999.XX", rows[1]["name"])

	sim.HandleControl("c1", ControlUpdateConfig, map[string]any{
		"widgetId": "watchlist_main",
		"config":   map[string]any{"codes": "000001.SZ"},
	})
	assert.Equal(t, []string{"000001.SZ"}, sim.Watchlists()["watchlist_main"])

	// Ticks keep feeding subscribed watchlists
	sim.Tick()
	rows = rec.get("watchlist_main").([]map[string]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "平安银行", rows[0]["name"])
}

func TestSimulatorIgnoresUnknownControl(t *testing.T) {
	rec := newRecorder()
	sim := newTestSimulator(rec)

	sim.HandleControl("c1", "refresh", map[string]any{"widgetId": "x"})
	sim.HandleControl("c1", ControlSubscribe, map[string]any{"config": map[string]any{}})
	assert.Empty(t, sim.Watchlists())
	assert.Zero(t, rec.n)
}

func TestLookupStock(t *testing.T) {
	assert.Equal(t, "宁德时代", lookupStock(" 300750.sz ").Name)
	unknown := lookupStock("123456.SZ")
	assert.Equal(t, unknown, lookupStock("123456.SZ"))
	assert.Greater(t, unknown.Base, 0.0)
	assert.Equal(t, 20.0, limitPct("300750.SZ"))
	assert.Equal(t, 10.0, limitPct("600519.SH"))
}

// startServer serves a feed over httptest and returns its websocket URL.
func startServer(t *testing.T, mock *clock.Mock) (*Server, string) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 7
	srv := NewServer(cfg, layout.Default(), mock, zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Hub().Close()
		ts.Close()
	})
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	return data
}

func TestHubPingPong(t *testing.T) {
	_, url := startServer(t, clock.NewMock())
	conn := dial(t, url)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	assert.Equal(t, "pong", string(readText(t, conn)))
}

func TestHubBroadcast(t *testing.T) {
	mock := clock.NewMock()
	srv, url := startServer(t, mock)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, srv.Hub().Broadcast("widget_limit_rank", []map[string]any{{"名称": "中国中免"}}))

	f, err := socket.DecodeFrame(readText(t, conn))
	require.NoError(t, err)
	assert.True(t, f.IsUpdate())
	assert.Equal(t, "widget_limit_rank", f.WidgetID)
	assert.JSONEq(t, `[{"名称":"中国中免"}]`, string(f.Data))
	assert.Equal(t, mock.Now(), srv.Hub().LastUpdates()["widget_limit_rank"])
}

func TestHubRoutesControlMessages(t *testing.T) {
	srv, url := startServer(t, clock.NewMock())
	conn := dial(t, url)

	msg, err := socket.EncodeControl(ControlSubscribe, map[string]any{
		"widgetId": "watchlist_main",
		"moduleId": "watchlist",
		"config":   map[string]any{"codes": []string{"600519.SH"}},
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, msg))

	f, err := socket.DecodeFrame(readText(t, conn))
	require.NoError(t, err)
	assert.Equal(t, "watchlist_main", f.WidgetID)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(f.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "600519.SH", rows[0]["code"])
	assert.Equal(t, []string{"600519.SH"}, srv.Simulator().Watchlists()["watchlist_main"])

	// Malformed and untyped messages are ignored
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{oops")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"widgetId":"x"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	assert.Equal(t, "pong", string(readText(t, conn)))
}

func TestHubCloseDisconnects(t *testing.T) {
	srv, url := startServer(t, clock.NewMock())
	conn := dial(t, url)
	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	srv.Hub().Close()
	assert.Zero(t, srv.Hub().ClientCount())
	assert.ErrorIs(t, srv.Hub().Broadcast("x", 1), ErrHubClosed)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestHandlerRoutes(t *testing.T) {
	srv := NewServer(DefaultConfig(), layout.Default(), clock.NewMock(), zerolog.Nop())
	defer srv.Hub().Close()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// a plain GET is not a websocket handshake
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, srv.Hub().ClientCount())
}

func TestClientReceivesSimulatedFeed(t *testing.T) {
	srv, url := startServer(t, clock.NewMock())

	cfg := socket.DefaultConfig()
	cfg.URL = url
	b := bus.New(zerolog.Nop())
	client := socket.NewClient(cfg, b, zerolog.Nop())

	got := make(chan any, 4)
	client.Subscribe(LimitRankChannel, func(payload any) { got <- payload })
	require.NoError(t, client.Start(context.Background()))
	defer client.Close()

	require.Eventually(t, client.Connected, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	srv.Simulator().Tick()

	select {
	case payload := <-got:
		var rows []map[string]any
		require.NoError(t, json.Unmarshal(payload.(json.RawMessage), &rows))
		assert.NotEmpty(t, rows)
	case <-time.After(2 * time.Second):
		t.Fatal("no limit rank update")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.Interval = time.Hour
	srv := NewServer(cfg, layout.Default(), clock.NewMock(), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
