package challenge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"
)

// ErrTimeout is returned when a challenge is still on the page after the
// gate's timeout.
var ErrTimeout = errors.New("challenge not cleared before timeout")

// DefaultMarker is searched for, case-insensitively, in the page markup.
const DefaultMarker = "captcha"

// Source yields the markup of the page currently loaded in the session.
type Source interface {
	HTML(ctx context.Context) (string, error)
}

// Gate blocks while a human-verification challenge is shown, giving the
// operator time to solve it in the browser window.
type Gate struct {
	Timeout  time.Duration
	Interval time.Duration
	Marker   string
	Logger   *log.Logger

	// Indicator spins on the terminal while the gate waits. Optional.
	Indicator *spinner.Spinner

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a Gate with a terminal spinner.
func New(timeout, interval time.Duration, logger *log.Logger) *Gate {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " waiting for the challenge to be solved in the browser"
	return &Gate{
		Timeout:   timeout,
		Interval:  interval,
		Marker:    DefaultMarker,
		Logger:    logger,
		Indicator: s,
	}
}

func (g *Gate) logger() *log.Logger {
	if g.Logger == nil {
		return log.Default()
	}
	return g.Logger
}

func (g *Gate) clock() time.Time {
	if g.now == nil {
		return time.Now()
	}
	return g.now()
}

func (g *Gate) wait(ctx context.Context, d time.Duration) error {
	if g.sleep != nil {
		return g.sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (g *Gate) present(html string) bool {
	marker := g.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	return strings.Contains(strings.ToLower(html), strings.ToLower(marker))
}

// AwaitClear returns nil at once when no challenge is shown. Otherwise it
// polls every Interval until the challenge disappears, returning ErrTimeout
// once more than Timeout has elapsed since it was first seen.
func (g *Gate) AwaitClear(ctx context.Context, src Source) error {
	html, err := src.HTML(ctx)
	if err != nil {
		return fmt.Errorf("reading page for challenge check: %w", err)
	}
	if !g.present(html) {
		return nil
	}

	start := g.clock()
	g.logger().Warn("challenge detected, solve it in the browser window", "timeout", g.Timeout)
	if g.Indicator != nil {
		g.Indicator.Start()
		defer g.Indicator.Stop()
	}

	for {
		elapsed := g.clock().Sub(start)
		if elapsed > g.Timeout {
			return fmt.Errorf("%w after %s", ErrTimeout, elapsed.Round(time.Second))
		}
		if err := g.wait(ctx, g.Interval); err != nil {
			return err
		}

		html, err = src.HTML(ctx)
		if err != nil {
			return fmt.Errorf("reading page for challenge check: %w", err)
		}
		if !g.present(html) {
			g.logger().Info("challenge cleared", "waited", g.clock().Sub(start).Round(time.Second))
			return nil
		}
	}
}
