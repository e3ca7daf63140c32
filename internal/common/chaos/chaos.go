// Package chaos holds the per-service fault-injection switch shared by the HTTP layer and background loops.
package chaos

import (
	"context"
	"sync"
	"time"

	"cafeteria-system/internal/common/apperr"
)

type Mode string

const (
	ModeError   Mode = "error"
	ModeTimeout Mode = "timeout"
)

// ParseMode normalizes anything that is not "timeout" to error mode.
func ParseMode(s string) Mode {
	if Mode(s) == ModeTimeout {
		return ModeTimeout
	}
	return ModeError
}

type State struct {
	Enabled bool `json:"enabled"`
	Mode    Mode `json:"mode"`
}

type SleepFunc func(ctx context.Context, d time.Duration) error

type Controller struct {
	mu    sync.RWMutex
	state State
	delay time.Duration
	sleep SleepFunc
}

type Option func(*Controller)

// WithSleep replaces the timer used in timeout mode.
func WithSleep(fn SleepFunc) Option { return func(c *Controller) { c.sleep = fn } }

// New returns a disabled controller; delay is the pause applied in timeout mode.
func New(delay time.Duration, opts ...Option) *Controller {
	c := &Controller{state: State{Mode: ModeError}, delay: delay, sleep: Sleep}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) Set(enabled bool, mode string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Enabled: enabled, Mode: ParseMode(mode)}
	return c.state
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) Enabled() bool { return c.State().Enabled }

// Inject returns nil while disabled. Otherwise it waits out the delay in timeout
// mode and returns a ChaosInjected error in both modes.
func (c *Controller) Inject(ctx context.Context) error {
	st := c.State()
	if !st.Enabled {
		return nil
	}
	if st.Mode == ModeTimeout {
		if err := c.sleep(ctx, c.delay); err != nil {
			return err
		}
	}
	return apperr.Chaos("service in chaos mode")
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
