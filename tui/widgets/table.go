// Package widgets holds the concrete dashboard widgets, each registered under
// the kind name used in the layout file.
package widgets

import (
	"context"

	"github.com/zouxin96/vibeStock/internal/layout"
	"github.com/zouxin96/vibeStock/internal/widget"
	"github.com/zouxin96/vibeStock/tui/panels"
)

const (
	limitRankChannel       = "widget_limit_rank"
	weightedLimitUpChannel = "widget_weighted_limit_up"
)

// tableWidget shows a feed channel as rows under fixed columns.
type tableWidget struct {
	*widget.Base
	*guarded[*panels.TablePanel]
	channel string
}

func newTableWidget(inst layout.Instance, deps widget.Deps, title, channel string, columns []widget.Column, pageSize int) (*tableWidget, error) {
	newTable, err := widget.Lookup[panels.TableConstructor](deps.Library, widget.BaseTable)
	if err != nil {
		return nil, err
	}
	base := widget.NewBase(inst, deps, title)
	return &tableWidget{
		Base:    base,
		guarded: guard(newTable(base.Title(), columns, pageSize)),
		channel: channel,
	}, nil
}

func (w *tableWidget) Activate(context.Context) error {
	return w.Bind(w.channel, w.apply)
}

func (w *tableWidget) apply(payload any) {
	rows, err := widget.DecodeRecords(payload)
	if err != nil {
		log := w.Logger()
		log.Warn().Err(err).Msg("keeping previous rows")
		return
	}
	w.write(func(p *panels.TablePanel) { p.SetRows(rows) })
}

// Rows returns the current snapshot.
func (w *tableWidget) Rows() []widget.Record {
	var rows []widget.Record
	w.read(func(p *panels.TablePanel) { rows = p.Rows() })
	return rows
}

// Page returns the current page and the page count.
func (w *tableWidget) Page() (page, total int) {
	w.read(func(p *panels.TablePanel) { page, total = p.Page(), p.TotalPages() })
	return page, total
}

func pageSize(inst layout.Instance, deps widget.Deps) int {
	def := deps.PageSize
	if def <= 0 {
		def = widget.DefaultPageSize
	}
	return inst.ConfigInt("page_size", def)
}

// NewLimitRank builds the paged limit-up ranking table.
func NewLimitRank(inst layout.Instance, deps widget.Deps) (widget.Widget, error) {
	cols := []widget.Column{
		widget.Plain("名称", "Name"),
		widget.Computed("最新价", "Price", widget.Fixed(2), nil).WithClass(widget.ClassPrice),
		widget.Computed("涨跌幅", "Chg", widget.Percent(2), widget.ByChange),
		widget.Computed("封板资金", "Seal(万)", widget.Wan, nil).WithClass(widget.ClassAccent),
		widget.Plain("连板数", "Boards").WithClass(widget.ClassInfo),
		widget.Plain("所属行业", "Industry").WithClass(widget.ClassMuted),
	}
	w, err := newTableWidget(inst, deps, "Limit-Up Rank", limitRankChannel, cols, pageSize(inst, deps))
	if err != nil {
		return nil, err
	}
	return w, nil
}

// NewWeightedLimitUp builds the paged weighted limit-up table.
func NewWeightedLimitUp(inst layout.Instance, deps widget.Deps) (widget.Widget, error) {
	cols := []widget.Column{
		widget.Plain("名称", "Name"),
		widget.Computed("最新价", "Price", widget.Fixed(2), nil).WithClass(widget.ClassPrice),
		widget.Computed("涨跌幅", "Chg", widget.Percent(2), widget.ByChange),
		widget.Plain("连板数", "Boards").WithClass(widget.ClassInfo),
		widget.Computed("weight", "Weight", widget.Fixed(1), nil).WithClass(widget.ClassAccent),
		widget.Plain("所属行业", "Industry").WithClass(widget.ClassMuted),
	}
	w, err := newTableWidget(inst, deps, "Weighted Limit-Up", weightedLimitUpChannel, cols, pageSize(inst, deps))
	if err != nil {
		return nil, err
	}
	return w, nil
}
