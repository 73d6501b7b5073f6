// Package timer provides the `timer:` trigger, which fires a route
// periodically.
package timer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vk/kamelrun/internal/ctxlog"
	"github.com/vk/kamelrun/internal/endpoint"
	"github.com/vk/kamelrun/internal/registry"
)

// Headers set on every exchange started by a timer.
const (
	HeaderName      = "CamelTimerName"
	HeaderCounter   = "CamelTimerCounter"
	HeaderFiredTime = "CamelTimerFiredTime"
)

// DefaultPeriod is used when the endpoint has no period option.
const DefaultPeriod = time.Second

var knownOptions = map[string]struct{}{"period": {}, "delay": {}, "repeatCount": {}}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the timer trigger.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTrigger("timer", &Trigger{})
}

// Options are the parsed endpoint options of a timer.
type Options struct {
	Name        string
	Period      time.Duration
	Delay       time.Duration
	RepeatCount int
}

// ParseOptions reads a `timer:name?period=..&delay=..&repeatCount=..`
// endpoint. Durations accept milliseconds or Go duration strings.
func ParseOptions(ep *endpoint.Endpoint) (Options, error) {
	for k := range ep.Params {
		if _, ok := knownOptions[k]; !ok {
			return Options{}, fmt.Errorf("timer: unknown option '%s'", k)
		}
	}
	if ep.Path == "" {
		return Options{}, fmt.Errorf("timer: name is required")
	}

	period, err := ep.Duration("period", DefaultPeriod)
	if err != nil {
		return Options{}, fmt.Errorf("timer: %w", err)
	}
	if period <= 0 {
		return Options{}, fmt.Errorf("timer: period must be positive, got %s", period)
	}
	delay, err := ep.Duration("delay", 0)
	if err != nil {
		return Options{}, fmt.Errorf("timer: %w", err)
	}
	if delay < 0 {
		return Options{}, fmt.Errorf("timer: delay must not be negative, got %s", delay)
	}
	repeat, err := ep.Int("repeatCount", 0)
	if err != nil {
		return Options{}, fmt.Errorf("timer: %w", err)
	}
	if repeat < 0 {
		return Options{}, fmt.Errorf("timer: repeatCount must not be negative, got %d", repeat)
	}

	return Options{Name: ep.Path, Period: period, Delay: delay, RepeatCount: repeat}, nil
}

// Trigger fires once after the delay and then every period, until the
// context ends or repeatCount firings have happened.
type Trigger struct{}

// Validate implements registry.Trigger.
func (t *Trigger) Validate(ep *endpoint.Endpoint) error {
	_, err := ParseOptions(ep)
	return err
}

// Start implements registry.Trigger.
func (t *Trigger) Start(ctx context.Context, ep *endpoint.Endpoint, fire registry.Fire) error {
	opts, err := ParseOptions(ep)
	if err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx).With("timer", opts.Name)
	logger.Debug("Timer starting.", "period", opts.Period, "delay", opts.Delay, "repeatCount", opts.RepeatCount)

	if opts.Delay > 0 {
		delay := time.NewTimer(opts.Delay)
		select {
		case <-ctx.Done():
			delay.Stop()
			return nil
		case <-delay.C:
		}
	}

	ticker := time.NewTicker(opts.Period)
	defer ticker.Stop()

	for counter := 1; ; counter++ {
		headers := map[string]string{
			HeaderName:      opts.Name,
			HeaderCounter:   strconv.Itoa(counter),
			HeaderFiredTime: time.Now().Format(time.RFC3339Nano),
		}
		if err := fire(ctx, headers); err != nil {
			return err
		}
		if opts.RepeatCount > 0 && counter >= opts.RepeatCount {
			logger.Debug("Timer exhausted.", "fired", counter)
			return nil
		}

		select {
		case <-ctx.Done():
			logger.Debug("Timer stopped.", "fired", counter)
			return nil
		case <-ticker.C:
		}
	}
}
