package widgets

import (
	"context"

	"github.com/zouxin96/vibeStock/internal/format"
	"github.com/zouxin96/vibeStock/internal/layout"
	"github.com/zouxin96/vibeStock/internal/widget"
	"github.com/zouxin96/vibeStock/tui/panels"
)

// recordWidget binds one channel and hands decoded rows to apply.
type recordWidget[P widget.Panel] struct {
	*widget.Base
	*guarded[P]
	channel func() string
	apply   func(p P, rows []widget.Record)
}

func (w *recordWidget[P]) Activate(context.Context) error {
	return w.Bind(w.channel(), func(payload any) {
		rows, err := widget.DecodeRecords(payload)
		if err != nil {
			log := w.Logger()
			log.Warn().Err(err).Msg("payload ignored")
			return
		}
		w.write(func(p P) { w.apply(p, rows) })
	})
}

// PieWidget shows a share breakdown.
type PieWidget struct {
	*recordWidget[*panels.PiePanel]
}

func newPie(inst layout.Instance, deps widget.Deps, title string, byModule bool) (*PieWidget, error) {
	newPanel, err := widget.Lookup[panels.PieConstructor](deps.Library, widget.BasePie)
	if err != nil {
		return nil, err
	}
	base := widget.NewBase(inst, deps, title)
	nameKey := inst.ConfigString("name_key", "name")
	valueKey := inst.ConfigString("value_key", "value")

	channel := base.ID
	if byModule {
		channel = base.ModuleChannel
	}
	return &PieWidget{&recordWidget[*panels.PiePanel]{
		Base:    base,
		guarded: guard(newPanel(base.Title())),
		channel: channel,
		apply: func(p *panels.PiePanel, rows []widget.Record) {
			slices := make([]panels.Slice, 0, len(rows))
			for _, r := range rows {
				slices = append(slices, panels.Slice{Name: format.Text(r[nameKey]), Value: format.Float(r[valueKey])})
			}
			p.SetSlices(slices)
		},
	}}, nil
}

// Slices returns the displayed slices.
func (w *PieWidget) Slices() []panels.Slice {
	var out []panels.Slice
	w.read(func(p *panels.PiePanel) { out = p.Slices() })
	return out
}

// NewRegionPie builds the region breakdown, fed on the module channel.
func NewRegionPie(inst layout.Instance, deps widget.Deps) (widget.Widget, error) {
	w, err := newPie(inst, deps, "Regions", true)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// NewSectorPie builds the sector breakdown, fed on the instance channel.
func NewSectorPie(inst layout.Instance, deps widget.Deps) (widget.Widget, error) {
	w, err := newPie(inst, deps, "Sectors", false)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// LineWidget plots index values over time.
type LineWidget struct {
	*recordWidget[*panels.LinePanel]
}

// NewIndexLine builds the intraday index chart. Rows carry a category key
// and one or more value keys, each plotted as a series.
func NewIndexLine(inst layout.Instance, deps widget.Deps) (widget.Widget, error) {
	newPanel, err := widget.Lookup[panels.LineConstructor](deps.Library, widget.BaseLine)
	if err != nil {
		return nil, err
	}
	base := widget.NewBase(inst, deps, "Index")
	categoryKey := inst.ConfigString("category_key", "time")
	valueKeys := inst.ConfigStrings("value_keys")
	if len(valueKeys) == 0 {
		valueKeys = []string{"value"}
	}

	return &LineWidget{&recordWidget[*panels.LinePanel]{
		Base:    base,
		guarded: guard(newPanel(base.Title())),
		channel: base.ID,
		apply: func(p *panels.LinePanel, rows []widget.Record) {
			labels := make([]string, len(rows))
			series := make([]panels.Series, len(valueKeys))
			for i, k := range valueKeys {
				series[i] = panels.Series{Name: k, Values: make([]float64, len(rows))}
			}
			for i, r := range rows {
				labels[i] = format.Text(r[categoryKey])
				for j, k := range valueKeys {
					series[j].Values[i] = format.Float(r[k])
				}
			}
			p.SetData(labels, series)
		},
	}}, nil
}

// Series returns the plotted series.
func (w *LineWidget) Series() []panels.Series {
	var out []panels.Series
	w.read(func(p *panels.LinePanel) { out = p.Series() })
	return out
}

// KlineWidget shows daily candles for one stock.
type KlineWidget struct {
	*recordWidget[*panels.CandlestickPanel]
}

// NewStockKline builds the candlestick chart.
func NewStockKline(inst layout.Instance, deps widget.Deps) (widget.Widget, error) {
	newPanel, err := widget.Lookup[panels.CandlestickConstructor](deps.Library, widget.BaseCandle)
	if err != nil {
		return nil, err
	}
	base := widget.NewBase(inst, deps, "K-Line")

	return &KlineWidget{&recordWidget[*panels.CandlestickPanel]{
		Base:    base,
		guarded: guard(newPanel(base.Title())),
		channel: base.ID,
		apply: func(p *panels.CandlestickPanel, rows []widget.Record) {
			candles := make([]panels.Candle, 0, len(rows))
			for _, r := range rows {
				candles = append(candles, panels.Candle{
					Label: format.Text(r["date"]),
					Open:  format.Float(r["open"]),
					High:  format.Float(r["high"]),
					Low:   format.Float(r["low"]),
					Close: format.Float(r["close"]),
				})
			}
			p.SetCandles(candles)
		},
	}}, nil
}

// Candles returns the displayed candles.
func (w *KlineWidget) Candles() []panels.Candle {
	var out []panels.Candle
	w.read(func(p *panels.CandlestickPanel) { out = p.Candles() })
	return out
}

// HeatmapWidget tiles sectors by change, sized by limit-up weight.
type HeatmapWidget struct {
	*recordWidget[*panels.HeatmapPanel]
}

// NewMarketHeatmap builds the heatmap, fed on the module channel.
func NewMarketHeatmap(inst layout.Instance, deps widget.Deps) (widget.Widget, error) {
	newPanel, err := widget.Lookup[panels.HeatmapConstructor](deps.Library, widget.BaseHeatmap)
	if err != nil {
		return nil, err
	}
	base := widget.NewBase(inst, deps, "Market Heatmap")

	return &HeatmapWidget{&recordWidget[*panels.HeatmapPanel]{
		Base:    base,
		guarded: guard(newPanel(base.Title())),
		channel: base.ModuleChannel,
		apply: func(p *panels.HeatmapPanel, rows []widget.Record) {
			tiles := make([]panels.Tile, 0, len(rows))
			for _, r := range rows {
				tiles = append(tiles, panels.Tile{
					Name:   format.Text(r["name"]),
					Change: format.Float(r["change"]),
					Weight: format.Float(r["limit_weight"]),
				})
			}
			p.SetTiles(tiles)
		},
	}}, nil
}

// Tiles returns the displayed tiles.
func (w *HeatmapWidget) Tiles() []panels.Tile {
	var out []panels.Tile
	w.read(func(p *panels.HeatmapPanel) { out = p.Tiles() })
	return out
}
