package dashboard

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"sales-dashboard/internal/logging"
	"sales-dashboard/internal/sales"
)

// State is the controller lifecycle phase.
type State string

const (
	StateIdle        State = "idle"
	StateRecomputing State = "recomputing"
)

// FilterState is the per-session filter selection.
type FilterState struct {
	Region sales.Region `json:"region"`
}

// View is the last rendered chart and summary for a filter.
type View struct {
	Filter  FilterState `json:"filter"`
	Chart   ChartSpec   `json:"chart"`
	Summary SummarySpec `json:"summary"`
}

// Options configure chart and summary wording.
type Options struct {
	Cutoff      time.Time
	MarkerLabel string
	EventName   string
	ChartTitle  string
}

// DefaultOptions match the Pink Morsel price increase dashboard.
func DefaultOptions() Options {
	return Options{
		Cutoff:      time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC),
		MarkerLabel: "Price Increase",
		EventName:   "Price Increase",
		ChartTitle:  "Daily Pink Morsel Sales",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Cutoff.IsZero() {
		o.Cutoff = def.Cutoff
	}
	if o.MarkerLabel == "" {
		o.MarkerLabel = def.MarkerLabel
	}
	if o.EventName == "" {
		o.EventName = o.MarkerLabel
	}
	if o.ChartTitle == "" {
		o.ChartTitle = def.ChartTitle
	}
	o.Cutoff = sales.DateOf(o.Cutoff)
	return o
}

// Controller recomputes the view whenever the region selection changes.
// It is not safe for concurrent use; callers serialise events per session.
type Controller struct {
	dataset *sales.Dataset
	opts    Options
	logger  zerolog.Logger

	state  State
	filter FilterState
	view   View
}

// New builds a controller and renders the initial view for all regions.
func New(dataset *sales.Dataset, opts Options, logger zerolog.Logger) *Controller {
	c := &Controller{
		dataset: dataset,
		opts:    opts.withDefaults(),
		logger:  logging.Component(logger, "dashboard"),
		state:   StateIdle,
	}
	c.filter = FilterState{Region: sales.RegionAll}
	c.view = c.compute(c.filter)
	return c
}

// Select handles a region selection event. On an invalid region the filter and
// the previous view are kept and an error wrapping sales.ErrInvalidFilter is returned.
func (c *Controller) Select(region string) (View, error) {
	parsed, err := sales.ParseRegion(region)
	if err != nil {
		c.logger.Warn().Str("region", region).Msg("rejected region selection")
		return c.view, err
	}

	c.state = StateRecomputing
	c.filter = FilterState{Region: parsed}
	c.view = c.compute(c.filter)
	c.state = StateIdle

	return c.view, nil
}

// View returns the last rendered view.
func (c *Controller) View() View {
	return c.view
}

// Filter returns the current filter selection.
func (c *Controller) Filter() FilterState {
	return c.filter
}

// State returns the controller phase.
func (c *Controller) State() State {
	return c.state
}

// Options returns the effective presentation options.
func (c *Controller) Options() Options {
	return c.opts
}

func (c *Controller) compute(filter FilterState) View {
	aggs := c.dataset.AggregateDaily(filter.Region)
	summary, err := sales.SummarizeThreshold(aggs, c.opts.Cutoff)
	if err != nil {
		if !errors.Is(err, sales.ErrInsufficientData) {
			c.logger.Error().Err(err).Msg("unexpected summary failure")
		} else {
			c.logger.Debug().Err(err).Str("region", string(filter.Region)).Msg("summary unavailable")
		}
	}

	view := View{
		Filter:  filter,
		Chart:   BuildChartSpec(aggs, filter.Region, c.opts),
		Summary: BuildSummarySpec(summary, err, c.opts),
	}

	c.logger.Debug().
		Str("region", string(filter.Region)).
		Int("points", len(view.Chart.Points)).
		Bool("summary", view.Summary.Available).
		Msg("view recomputed")
	return view
}
