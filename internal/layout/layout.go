// Package layout loads and stores the dashboard layout: which widgets are
// mounted, with which ids and settings.
package layout

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingKind     = errors.New("layout: widget kind is required")
	ErrDuplicateWidget = errors.New("layout: duplicate widget id")
)

// Widget kinds known to the dashboard.
const (
	KindWatchlist       = "watchlist-widget"
	KindLimitRank       = "limit-rank-widget"
	KindWeightedLimitUp = "weighted-limit-up-widget"
	KindRegionPie       = "region-pie-widget"
	KindSectorPie       = "sector-pie-widget"
	KindIndexLine       = "index-line-widget"
	KindStockKline      = "stock-kline-widget"
	KindMarketHeatmap   = "market-heatmap-widget"
	KindLimitUpMonitor  = "limit-up-monitor-widget"
	KindAkshareMonitor  = "akshare-monitor-widget"
)

// Instance describes one mounted widget.
type Instance struct {
	Kind     string         `yaml:"kind" json:"kind"`
	WidgetID string         `yaml:"widget_id" json:"widget_id"`
	ModuleID string         `yaml:"module_id,omitempty" json:"module_id,omitempty"`
	Title    string         `yaml:"title,omitempty" json:"title,omitempty"`
	Config   map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
}

// ModuleChannel is the shared module topic, falling back to the instance id.
func (i Instance) ModuleChannel() string {
	if i.ModuleID != "" {
		return i.ModuleID
	}
	return i.WidgetID
}

type file struct {
	Widgets []Instance `yaml:"widgets"`
}

// ConfigString returns a string setting, or def when it is absent.
func (i Instance) ConfigString(key, def string) string {
	if v, ok := i.Config[key].(string); ok && v != "" {
		return v
	}
	return def
}

// ConfigInt returns an integer setting, or def when it is absent.
func (i Instance) ConfigInt(key string, def int) int {
	switch v := i.Config[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// ConfigStrings returns a list setting. A comma separated string is split.
func (i Instance) ConfigStrings(key string) []string {
	var out []string
	switch v := i.Config[key].(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case string:
		out = strings.Split(v, ",")
	}

	cleaned := out[:0]
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

// Default is the layout used when no layout file exists.
func Default() []Instance {
	return []Instance{
		{Kind: KindWatchlist, WidgetID: "watchlist_main", ModuleID: "watchlist", Title: "Watchlist",
			Config: map[string]any{"codes": []any{"600519.SH", "000001.SZ", "300750.SZ", "601318.SH"}}},
		{Kind: KindLimitRank, WidgetID: "limit_rank", ModuleID: "widget_limit_rank"},
		{Kind: KindWeightedLimitUp, WidgetID: "weighted_limit_up", ModuleID: "widget_weighted_limit_up"},
		{Kind: KindMarketHeatmap, WidgetID: "market_heatmap", ModuleID: "widget_market_heatmap"},
		{Kind: KindRegionPie, WidgetID: "region_pie_main", ModuleID: "region_pie"},
		{Kind: KindSectorPie, WidgetID: "sector_pie"},
		{Kind: KindIndexLine, WidgetID: "index_line", Config: map[string]any{"category_key": "time"}},
		{Kind: KindStockKline, WidgetID: "stock_kline"},
		{Kind: KindLimitUpMonitor, WidgetID: "limit_up_monitor"},
		{Kind: KindAkshareMonitor, WidgetID: "akshare_monitor"},
	}
}

// Load reads the layout at path. A missing file yields Default.
func Load(path string) ([]Instance, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "read layout %s", path)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, pkgerrors.Wrapf(err, "parse layout %s", path)
	}
	return Normalize(f.Widgets)
}

// Save writes instances to path, creating parent directories as needed.
func Save(path string, instances []Instance) error {
	instances, err := Normalize(instances)
	if err != nil {
		return err
	}
	data, err := Marshal(instances)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return pkgerrors.Wrapf(err, "create layout dir %s", dir)
		}
	}
	return pkgerrors.Wrapf(os.WriteFile(path, data, 0o644), "write layout %s", path)
}

// Marshal renders instances as layout YAML.
func Marshal(instances []Instance) ([]byte, error) {
	data, err := yaml.Marshal(file{Widgets: instances})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "encode layout")
	}
	return data, nil
}

// Normalize fills missing widget ids and validates the layout.
func Normalize(instances []Instance) ([]Instance, error) {
	out := make([]Instance, len(instances))
	seen := make(map[string]struct{}, len(instances))

	for i, inst := range instances {
		inst.Kind = strings.TrimSpace(inst.Kind)
		if inst.Kind == "" {
			return nil, fmt.Errorf("widget %d: %w", i, ErrMissingKind)
		}
		if inst.WidgetID == "" {
			inst.WidgetID = generateID(inst.Kind)
		}
		if _, dup := seen[inst.WidgetID]; dup {
			return nil, fmt.Errorf("%q: %w", inst.WidgetID, ErrDuplicateWidget)
		}
		seen[inst.WidgetID] = struct{}{}
		out[i] = inst
	}
	return out, nil
}

func generateID(kind string) string {
	base := strings.ReplaceAll(strings.TrimSuffix(kind, "-widget"), "-", "_")
	return base + "_" + uuid.NewString()[:8]
}
