package widgets

import (
	"context"
	"fmt"
	"strings"

	"github.com/zouxin96/vibeStock/internal/format"
	"github.com/zouxin96/vibeStock/internal/layout"
	"github.com/zouxin96/vibeStock/internal/widget"
	"github.com/zouxin96/vibeStock/tui/panels"
)

const akshareStatusChannel = "akshare_status"

// statusWidget decodes a channel payload into a status card.
type statusWidget struct {
	*widget.Base
	*guarded[*panels.StatusPanel]
	channel string
	card    func(payload any) (panels.Card, error)
}

func newStatusWidget(inst layout.Instance, deps widget.Deps, title, channel string, card func(any) (panels.Card, error)) (*statusWidget, error) {
	newPanel, err := widget.Lookup[panels.StatusConstructor](deps.Library, widget.BaseStatus)
	if err != nil {
		return nil, err
	}
	base := widget.NewBase(inst, deps, title)
	if channel == "" {
		channel = base.ID()
	}
	return &statusWidget{
		Base:    base,
		guarded: guard(newPanel(base.Title())),
		channel: channel,
		card:    card,
	}, nil
}

func (w *statusWidget) Activate(context.Context) error {
	return w.Bind(w.channel, func(payload any) {
		c, err := w.card(payload)
		if err != nil {
			log := w.Logger()
			log.Warn().Err(err).Msg("status payload ignored")
			return
		}
		w.write(func(p *panels.StatusPanel) { p.SetCard(c) })
	})
}

// Card returns the displayed card.
func (w *statusWidget) Card() panels.Card {
	var c panels.Card
	w.read(func(p *panels.StatusPanel) { c = p.Card() })
	return c
}

type limitUpRun struct {
	LastRun   string          `json:"last_run"`
	Status    string          `json:"status"`
	Count     any             `json:"count"`
	TopStocks []widget.Record `json:"top_stocks"`
	Error     string          `json:"error"`
}

func limitUpCard(payload any) (panels.Card, error) {
	var run limitUpRun
	if err := widget.Decode(payload, &run); err != nil {
		return panels.Card{}, err
	}

	c := panels.Card{
		Status: run.Status,
		Level:  panels.LevelOK,
		Fields: []panels.Field{
			{Label: "Last run", Value: orWaiting(run.LastRun)},
			{Label: "Limit-ups", Value: format.Text(run.Count), Class: widget.ClassAccent},
		},
		ListTitle: "Top boards",
		Error:     run.Error,
	}
	switch {
	case run.Error != "":
		c.Level = panels.LevelError
	case run.Status == "":
		c.Status = "Waiting"
		c.Level = panels.LevelWarn
	case strings.Contains(strings.ToLower(run.Status), "stop"), strings.Contains(strings.ToLower(run.Status), "idle"):
		c.Level = panels.LevelWarn
	}
	for _, s := range run.TopStocks {
		c.List = append(c.List, panels.Field{
			Label: format.Text(s["名称"]),
			Value: fmt.Sprintf("%s boards", format.Text(s["连板数"])),
			Class: widget.ClassInfo,
		})
	}
	return c, nil
}

type akshareHealth struct {
	IsConnected bool   `json:"is_connected"`
	LastUpdated string `json:"last_updated"`
	ErrorCount  any    `json:"error_count"`
}

func akshareCard(payload any) (panels.Card, error) {
	var h akshareHealth
	if err := widget.Decode(payload, &h); err != nil {
		return panels.Card{}, err
	}

	errs := format.Float(h.ErrorCount)
	c := panels.Card{
		Status: "Connected",
		Level:  panels.LevelOK,
		Fields: []panels.Field{
			{Label: "Last updated", Value: orWaiting(h.LastUpdated)},
			{Label: "Errors", Value: format.Text(h.ErrorCount)},
		},
	}
	switch {
	case !h.IsConnected:
		c.Status = "Disconnected"
		c.Level = panels.LevelError
	case errs > 0:
		c.Level = panels.LevelWarn
		c.Fields[1].Class = widget.ClassDown
	}
	return c, nil
}

func orWaiting(s string) string {
	if s == "" {
		return "waiting..."
	}
	return s
}

// NewLimitUpMonitor builds the limit-up job card, fed on the instance channel.
func NewLimitUpMonitor(inst layout.Instance, deps widget.Deps) (widget.Widget, error) {
	w, err := newStatusWidget(inst, deps, "Limit-Up Monitor", "", limitUpCard)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// NewAkshareMonitor builds the data source health card.
func NewAkshareMonitor(inst layout.Instance, deps widget.Deps) (widget.Widget, error) {
	w, err := newStatusWidget(inst, deps, "AkShare Status", akshareStatusChannel, akshareCard)
	if err != nil {
		return nil, err
	}
	return w, nil
}
