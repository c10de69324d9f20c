package feed

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/zouxin96/vibeStock/internal/layout"
)

// Control message kinds understood by the simulator.
const (
	ControlSubscribe    = "subscribe"
	ControlUpdateConfig = "update_config"
)

// Fixed channels, independent of the layout.
const (
	LimitRankChannel       = "widget_limit_rank"
	WeightedLimitUpChannel = "widget_weighted_limit_up"
	AkshareStatusChannel   = "akshare_status"
)

const (
	maxIndexPoints = 240
	klineDays      = 60
	limitBoardSize = 20
	topStocks      = 5
)

// Generator names a simulated data set.
type Generator string

const (
	GenLimitRank     Generator = "limit_rank"
	GenWeighted      Generator = "weighted_limit_up"
	GenHeatmap       Generator = "heatmap"
	GenRegions       Generator = "regions"
	GenSectors       Generator = "sectors"
	GenIndex         Generator = "index"
	GenKline         Generator = "kline"
	GenLimitMonitor  Generator = "limit_monitor"
	GenAkshareStatus Generator = "akshare_status"
)

// Target binds a generator to the channel it publishes on.
type Target struct {
	Channel   string
	Generator Generator
}

// TargetsFor derives the published channels from a layout. Watchlists are
// not listed: they are fed once they subscribe.
func TargetsFor(instances []layout.Instance) []Target {
	seen := make(map[string]bool)
	var out []Target
	add := func(channel string, g Generator) {
		if channel == "" || seen[channel] {
			return
		}
		seen[channel] = true
		out = append(out, Target{Channel: channel, Generator: g})
	}
	for _, inst := range instances {
		switch inst.Kind {
		case layout.KindLimitRank:
			add(LimitRankChannel, GenLimitRank)
		case layout.KindWeightedLimitUp:
			add(WeightedLimitUpChannel, GenWeighted)
		case layout.KindMarketHeatmap:
			add(inst.ModuleChannel(), GenHeatmap)
		case layout.KindRegionPie:
			add(inst.ModuleChannel(), GenRegions)
		case layout.KindSectorPie:
			add(inst.WidgetID, GenSectors)
		case layout.KindIndexLine:
			add(inst.WidgetID, GenIndex)
		case layout.KindStockKline:
			add(inst.WidgetID, GenKline)
		case layout.KindLimitUpMonitor:
			add(inst.WidgetID, GenLimitMonitor)
		case layout.KindAkshareMonitor:
			add(AkshareStatusChannel, GenAkshareStatus)
		}
	}
	return out
}

// Publisher sends one channel update to the dashboards.
type Publisher interface {
	Broadcast(channel string, data any) error
}

// quote is the running state of one listing.
type quote struct {
	stock
	prevClose float64
	price     float64
	boards    int
}

func (q *quote) change() float64 {
	if q.prevClose == 0 {
		return 0
	}
	return (q.price - q.prevClose) / q.prevClose * 100
}

type indexPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

type candle struct {
	Date  string  `json:"date"`
	Open  float64 `json:"open"`
	Close float64 `json:"close"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// Simulator publishes random-walk market data on a schedule.
type Simulator struct {
	pub      Publisher
	targets  []Target
	interval time.Duration
	clock    clock.Clock
	log      zerolog.Logger

	mu         sync.Mutex
	rng        *rand.Rand
	quotes     map[string]*quote
	watchlists map[string][]string
	index      []indexPoint
	kline      []candle
	ticks      int
	errorCount int

	cron *cron.Cron
}

// NewSimulator creates a simulator publishing targets through pub.
func NewSimulator(pub Publisher, targets []Target, cfg Config, clk clock.Clock, log zerolog.Logger) *Simulator {
	cfg = cfg.withDefaults()
	if clk == nil {
		clk = clock.New()
	}
	seed := uint64(cfg.Seed)
	if seed == 0 {
		seed = uint64(clk.Now().UnixNano())
	}

	s := &Simulator{
		pub:        pub,
		targets:    targets,
		interval:   cfg.Interval,
		clock:      clk,
		log:        log,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		quotes:     make(map[string]*quote),
		watchlists: make(map[string][]string),
	}
	for _, st := range universe {
		s.quoteLocked(st.Code)
	}
	s.seedKlineLocked()
	return s
}

// quoteLocked returns the state for code, creating it on first use.
func (s *Simulator) quoteLocked(code string) *quote {
	st := lookupStock(code)
	if q, ok := s.quotes[st.Code]; ok {
		return q
	}
	q := &quote{stock: st, prevClose: st.Base, price: st.Base}
	if s.rng.Float64() < 0.4 {
		q.boards = 1 + s.rng.IntN(5)
	}
	s.quotes[st.Code] = q
	return q
}

func (s *Simulator) seedKlineLocked() {
	day := s.clock.Now().AddDate(0, 0, -klineDays)
	price := universe[0].Base
	for i := 0; i < klineDays; i++ {
		day = day.AddDate(0, 0, 1)
		open := price
		closing := open * (1 + s.rng.NormFloat64()*0.015)
		high := math.Max(open, closing) * (1 + s.rng.Float64()*0.01)
		low := math.Min(open, closing) * (1 - s.rng.Float64()*0.01)
		s.kline = append(s.kline, candle{
			Date: day.Format("2006-01-02"), Open: round2(open), Close: round2(closing),
			Low: round2(low), High: round2(high),
		})
		price = closing
	}
}

// Start publishes once, then on every interval.
func (s *Simulator) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.interval), s.Tick); err != nil {
		return errors.Wrap(err, "schedule simulator")
	}
	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()

	s.Tick()
	c.Start()
	s.log.Info().Dur("interval", s.interval).Int("channels", len(s.targets)).Msg("simulator started")
	return nil
}

// Stop halts the schedule and waits for a running tick.
func (s *Simulator) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Tick advances every price and publishes all targets and watchlists.
func (s *Simulator) Tick() {
	s.mu.Lock()
	s.ticks++
	s.stepLocked()

	type update struct {
		channel string
		data    any
	}
	updates := make([]update, 0, len(s.targets)+len(s.watchlists))
	for _, t := range s.targets {
		updates = append(updates, update{t.Channel, s.generateLocked(t.Generator)})
	}
	for id, codes := range s.watchlists {
		updates = append(updates, update{id, s.watchlistRowsLocked(codes)})
	}
	s.mu.Unlock()

	for _, u := range updates {
		if err := s.pub.Broadcast(u.channel, u.data); err != nil {
			s.log.Warn().Err(err).Str("channel", u.channel).Msg("publish failed")
		}
	}
}

func (s *Simulator) stepLocked() {
	for _, q := range s.quotes {
		limit := limitPct(q.Code)
		next := q.price * (1 + s.rng.NormFloat64()*0.006)
		hi := q.prevClose * (1 + limit/100)
		lo := q.prevClose * (1 - limit/100)
		q.price = round2(math.Min(math.Max(next, lo), hi))
	}

	last := s.kline[len(s.kline)-1]
	price := round2(last.Close * (1 + s.rng.NormFloat64()*0.004))
	last.Close = price
	last.High = math.Max(last.High, price)
	last.Low = math.Min(last.Low, price)
	s.kline[len(s.kline)-1] = last

	value := 3000.0
	if n := len(s.index); n > 0 {
		value = s.index[n-1].Value * (1 + s.rng.NormFloat64()*0.0008)
	}
	s.index = append(s.index, indexPoint{Time: s.clock.Now().Format("15:04:05"), Value: round2(value)})
	if len(s.index) > maxIndexPoints {
		s.index = s.index[len(s.index)-maxIndexPoints:]
	}

	if s.rng.Float64() < 0.05 {
		s.errorCount++
	}
}

func (s *Simulator) generateLocked(g Generator) any {
	switch g {
	case GenLimitRank:
		return s.limitRowsLocked(false)
	case GenWeighted:
		return s.limitRowsLocked(true)
	case GenHeatmap:
		return s.heatmapLocked()
	case GenRegions:
		return s.countByLocked(func(q *quote) string { return q.Region })
	case GenSectors:
		return s.countByLocked(func(q *quote) string { return q.Industry })
	case GenIndex:
		return append([]indexPoint(nil), s.index...)
	case GenKline:
		return append([]candle(nil), s.kline...)
	case GenLimitMonitor:
		return s.monitorLocked()
	case GenAkshareStatus:
		return map[string]any{
			"is_connected": s.ticks%20 != 0,
			"last_updated": s.clock.Now().Format(time.DateTime),
			"error_count":  s.errorCount,
		}
	}
	return nil
}

// limitBoardLocked lists the quotes on a limit-up streak, longest first.
func (s *Simulator) limitBoardLocked() []*quote {
	var out []*quote
	for _, q := range s.quotes {
		if q.boards > 0 {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].boards != out[j].boards {
			return out[i].boards > out[j].boards
		}
		return out[i].Code < out[j].Code
	})
	if len(out) > limitBoardSize {
		out = out[:limitBoardSize]
	}
	return out
}

func (s *Simulator) limitRowsLocked(weighted bool) []map[string]any {
	board := s.limitBoardLocked()
	rows := make([]map[string]any, 0, len(board))
	for _, q := range board {
		limit := limitPct(q.Code)
		row := map[string]any{
			"代码":   q.Code,
			"名称":   q.Name,
			"最新价":  round2(q.prevClose * (1 + limit/100)),
			"涨跌幅":  limit,
			"封板资金": math.Round(1e7 + s.rng.Float64()*9e8),
			"连板数":  q.boards,
			"所属行业": q.Industry,
		}
		if weighted {
			row["weight"] = round2(float64(q.boards)*10 + s.rng.Float64()*5)
		}
		rows = append(rows, row)
	}
	if weighted {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i]["weight"].(float64) > rows[j]["weight"].(float64)
		})
	}
	return rows
}

func (s *Simulator) heatmapLocked() []map[string]any {
	type agg struct {
		sum    float64
		n      int
		limits int
	}
	byIndustry := make(map[string]*agg)
	for _, q := range s.quotes {
		a, ok := byIndustry[q.Industry]
		if !ok {
			a = &agg{}
			byIndustry[q.Industry] = a
		}
		a.sum += q.change()
		a.n++
		if q.boards > 0 {
			a.limits++
		}
	}

	names := make([]string, 0, len(byIndustry))
	for name := range byIndustry {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		a := byIndustry[name]
		out = append(out, map[string]any{
			"name":         name,
			"change":       round2(a.sum / float64(a.n)),
			"limit_weight": a.limits,
		})
	}
	return out
}

func (s *Simulator) countByLocked(key func(*quote) string) []map[string]any {
	counts := make(map[string]int)
	for _, q := range s.limitBoardLocked() {
		counts[key(q)]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	out := make([]map[string]any, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]any{"name": name, "value": counts[name]})
	}
	return out
}

func (s *Simulator) monitorLocked() map[string]any {
	board := s.limitBoardLocked()
	top := make([]map[string]any, 0, topStocks)
	for _, q := range board[:min(topStocks, len(board))] {
		top = append(top, map[string]any{"名称": q.Name, "连板数": q.boards})
	}
	return map[string]any{
		"last_run":   s.clock.Now().Format("15:04:05"),
		"status":     "Running",
		"count":      len(board),
		"top_stocks": top,
		"error":      "",
	}
}

func (s *Simulator) watchlistRowsLocked(codes []string) []map[string]any {
	rows := make([]map[string]any, 0, len(codes))
	for _, code := range codes {
		q := s.quoteLocked(code)
		rows = append(rows, map[string]any{
			"code":   q.Code,
			"name":   q.Name,
			"price":  q.price,
			"change": round2(q.change()),
		})
	}
	return rows
}

// HandleControl applies subscribe and update_config messages from a
// dashboard and answers with the watchlist rows right away.
func (s *Simulator) HandleControl(clientID, kind string, msg map[string]any) {
	switch kind {
	case ControlSubscribe, ControlUpdateConfig:
	default:
		s.log.Debug().Str("client_id", clientID).Str("kind", kind).Msg("ignoring control message")
		return
	}

	widgetID, _ := msg["widgetId"].(string)
	if widgetID == "" {
		s.log.Debug().Str("client_id", clientID).Str("kind", kind).Msg("control message without widgetId")
		return
	}
	cfg, _ := msg["config"].(map[string]any)
	codes := codesFrom(cfg["codes"])

	s.mu.Lock()
	s.watchlists[widgetID] = codes
	rows := s.watchlistRowsLocked(codes)
	s.mu.Unlock()

	s.log.Info().Str("client_id", clientID).Str("widget_id", widgetID).Strs("codes", codes).Msg(kind)
	if err := s.pub.Broadcast(widgetID, rows); err != nil {
		s.log.Warn().Err(err).Str("channel", widgetID).Msg("publish failed")
	}
}

// Watchlists returns the subscribed watchlists and their codes.
func (s *Simulator) Watchlists() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]string, len(s.watchlists))
	for k, v := range s.watchlists {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func codesFrom(v any) []string {
	var raw []string
	switch c := v.(type) {
	case []any:
		for _, item := range c {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = c
	case string:
		raw = strings.Split(c, ",")
	}
	var codes []string
	for _, code := range raw {
		if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
