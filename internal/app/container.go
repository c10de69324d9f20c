// Package app wires the dashboard services using go.uber.org/dig.
package app

import (
	"context"
	"errors"

	"github.com/benbjohnson/clock"
	tea "github.com/charmbracelet/bubbletea"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.uber.org/dig"

	"github.com/zouxin96/vibeStock/internal/bus"
	"github.com/zouxin96/vibeStock/internal/config"
	"github.com/zouxin96/vibeStock/internal/layout"
	"github.com/zouxin96/vibeStock/internal/logging"
	"github.com/zouxin96/vibeStock/internal/socket"
	"github.com/zouxin96/vibeStock/internal/widget"
	"github.com/zouxin96/vibeStock/tui"
	"github.com/zouxin96/vibeStock/tui/panels"
	"github.com/zouxin96/vibeStock/tui/widgets"
)

// Container holds the resolved dashboard singletons.
type Container struct {
	cfg      *config.Config
	log      zerolog.Logger
	clock    clock.Clock
	bus      *bus.ChannelBus
	client   *socket.Client
	library  *widget.Library
	registry *widget.Registry
	host     *widget.Host
	notifier *tui.Notifier
}

func (c *Container) Config() *config.Config      { return c.cfg }
func (c *Container) Logger() zerolog.Logger      { return c.log }
func (c *Container) Clock() clock.Clock          { return c.clock }
func (c *Container) Bus() *bus.ChannelBus        { return c.bus }
func (c *Container) Client() *socket.Client      { return c.client }
func (c *Container) Library() *widget.Library    { return c.library }
func (c *Container) Registry() *widget.Registry  { return c.registry }
func (c *Container) Host() *widget.Host          { return c.host }
func (c *Container) Notifier() *tui.Notifier     { return c.notifier }

// New builds and wires all dashboard services from cfg.
func New(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	return NewWithClock(cfg, log, clock.New())
}

// NewWithClock is New with an explicit clock.
func NewWithClock(cfg *config.Config, log zerolog.Logger, clk clock.Clock) (*Container, error) {
	d := dig.New()

	providers := []any{
		func() *config.Config { return cfg },
		func() zerolog.Logger { return log },
		func() clock.Clock { return clk },
		newBus,
		newClient,
		panels.NewLibrary,
		newRegistry,
		newHost,
		func() *tui.Notifier { return &tui.Notifier{} },
	}
	for _, p := range providers {
		if err := d.Provide(p); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		b *bus.ChannelBus,
		client *socket.Client,
		lib *widget.Library,
		reg *widget.Registry,
		host *widget.Host,
		notifier *tui.Notifier,
	) {
		result = &Container{
			cfg:      cfg,
			log:      log,
			clock:    clk,
			bus:      b,
			client:   client,
			library:  lib,
			registry: reg,
			host:     host,
			notifier: notifier,
		}
	})
	if err != nil {
		return nil, dig.RootCause(err)
	}
	return result, nil
}

func newBus(log zerolog.Logger) *bus.ChannelBus {
	return bus.New(logging.Component(log, "bus"))
}

func newClient(cfg *config.Config, b *bus.ChannelBus, log zerolog.Logger) *socket.Client {
	return socket.NewClient(cfg.Socket, b, logging.Component(log, "socket"))
}

func newRegistry(lib *widget.Library, log zerolog.Logger) (*widget.Registry, error) {
	reg := widget.NewRegistry()
	if err := widgets.RegisterAll(reg, lib, logging.Component(log, "registry")); err != nil {
		return nil, err
	}
	return reg, nil
}

func newHost(log zerolog.Logger) *widget.Host {
	return widget.NewHost(logging.Component(log, "host"))
}

// Deps returns the dependencies handed to every widget.
func (c *Container) Deps() widget.Deps {
	return widget.Deps{
		Transport:  c.client,
		Library:    c.library,
		Clock:      c.clock,
		Logger:     logging.Component(c.log, "widget"),
		Notify:     c.notifier.Notify,
		RetryDelay: c.cfg.Widgets.RetryDelay,
		PageSize:   c.cfg.Widgets.PageSize,
	}
}

// MountLayout builds and mounts every instance. A widget that fails is
// logged and left out; the others are still mounted. The failures are
// returned joined.
func (c *Container) MountLayout(ctx context.Context, instances []layout.Instance) error {
	deps := c.Deps()
	var errs []error
	for _, inst := range instances {
		w, err := c.registry.Build(inst, deps)
		if err != nil {
			c.log.Error().Err(err).Str("widget", inst.WidgetID).Str("kind", inst.Kind).Msg("widget not built")
			errs = append(errs, err)
			continue
		}
		if err := c.host.Mount(ctx, w); err != nil {
			c.log.Error().Err(err).Str("widget", inst.WidgetID).Msg("widget not mounted")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunDashboard connects to the feed, mounts the layout and runs the terminal
// UI until the user quits or ctx is cancelled.
func (c *Container) RunDashboard(ctx context.Context, instances []layout.Instance, opts ...tea.ProgramOption) error {
	if err := c.client.Start(ctx); err != nil {
		return pkgerrors.Wrap(err, "start feed client")
	}
	defer c.Close()

	if err := c.MountLayout(ctx, instances); err != nil {
		c.log.Warn().Err(err).Msg("dashboard started with missing widgets")
	}

	model := tui.NewModel(c.host, c.client, c.clock)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(model, opts...)
	c.notifier.Attach(p)
	defer c.notifier.Attach(nil)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Close unmounts every widget and disconnects from the feed.
func (c *Container) Close() {
	c.host.UnmountAll()
	c.client.Close()
}
