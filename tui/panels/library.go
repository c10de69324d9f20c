package panels

import "github.com/zouxin96/vibeStock/internal/widget"

// Install provides every base panel to lib.
func Install(lib *widget.Library) {
	lib.Provide(widget.BaseTable, TableConstructor(NewTablePanel))
	lib.Provide(widget.BasePie, PieConstructor(NewPiePanel))
	lib.Provide(widget.BaseLine, LineConstructor(NewLinePanel))
	lib.Provide(widget.BaseCandle, CandlestickConstructor(NewCandlestickPanel))
	lib.Provide(widget.BaseHeatmap, HeatmapConstructor(NewHeatmapPanel))
	lib.Provide(widget.BaseStatus, StatusConstructor(NewStatusPanel))
}

// NewLibrary returns a library holding every base panel.
func NewLibrary() *widget.Library {
	lib := widget.NewLibrary()
	Install(lib)
	return lib
}
