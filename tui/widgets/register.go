package widgets

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/zouxin96/vibeStock/internal/layout"
	"github.com/zouxin96/vibeStock/internal/widget"
)

type entry struct {
	kind    string
	bases   []widget.BaseKind
	factory widget.Factory
}

var entries = []entry{
	{layout.KindWatchlist, []widget.BaseKind{widget.BaseTable}, NewWatchlist},
	{layout.KindLimitRank, []widget.BaseKind{widget.BaseTable}, NewLimitRank},
	{layout.KindWeightedLimitUp, []widget.BaseKind{widget.BaseTable}, NewWeightedLimitUp},
	{layout.KindRegionPie, []widget.BaseKind{widget.BasePie}, NewRegionPie},
	{layout.KindSectorPie, []widget.BaseKind{widget.BasePie}, NewSectorPie},
	{layout.KindIndexLine, []widget.BaseKind{widget.BaseLine}, NewIndexLine},
	{layout.KindStockKline, []widget.BaseKind{widget.BaseCandle}, NewStockKline},
	{layout.KindMarketHeatmap, []widget.BaseKind{widget.BaseHeatmap}, NewMarketHeatmap},
	{layout.KindLimitUpMonitor, []widget.BaseKind{widget.BaseStatus}, NewLimitUpMonitor},
	{layout.KindAkshareMonitor, []widget.BaseKind{widget.BaseStatus}, NewAkshareMonitor},
}

// RegisterAll registers every widget whose base renderers are present in lib.
// Widgets with a missing base are logged and skipped so the rest of the
// dashboard still loads. Registration conflicts are returned.
func RegisterAll(reg *widget.Registry, lib *widget.Library, log zerolog.Logger) error {
	var errs []error
	for _, e := range entries {
		if err := lib.Require(e.bases...); err != nil {
			log.Error().Err(err).Str("kind", e.kind).Msg("widget skipped")
			continue
		}
		if err := reg.Register(e.kind, e.factory); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
