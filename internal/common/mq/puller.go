package mq

import (
	"context"
	"errors"
	"time"

	"cafeteria-system/internal/common/chaos"
	"cafeteria-system/internal/common/logger"
)

// RetryPolicy is applied after a failed pull or a nacked message. There is no attempt
// limit and no dead-letter path: a message that keeps failing is requeued forever.
type RetryPolicy struct {
	Interval    time.Duration
	Backoff     float64 // multiplier per consecutive failure; <= 1 keeps Interval fixed
	MaxInterval time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: time.Second, Backoff: 1, MaxInterval: 30 * time.Second}
}

// Delay returns the wait after the given number of consecutive failures (starting at 1).
func (p RetryPolicy) Delay(failures int) time.Duration {
	d := p.Interval
	if p.Backoff <= 1 || failures <= 1 {
		return d
	}
	for i := 1; i < failures; i++ {
		d = time.Duration(float64(d) * p.Backoff)
		if p.MaxInterval > 0 && d >= p.MaxInterval {
			return p.MaxInterval
		}
	}
	return d
}

// Handler processes one message body. A nil error acks; any error nacks with requeue.
// Business failures that must not be retried return nil.
type Handler func(ctx context.Context, body []byte) error

type Outcome int

const (
	OutcomeEmpty Outcome = iota
	OutcomeAcked
	OutcomeRequeued
	OutcomePullFailed
)

type Puller struct {
	src   Getter
	queue string
	retry RetryPolicy
	idle  time.Duration
	lg    *logger.Logger
	sleep chaos.SleepFunc

	// OnFailure, if set, is called for every pull failure or requeued message.
	OnFailure func(err error)
}

func NewPuller(src Getter, queue string, retry RetryPolicy, idle time.Duration, lg *logger.Logger) *Puller {
	if retry.Interval <= 0 {
		retry = DefaultRetryPolicy()
	}
	if idle <= 0 {
		idle = time.Second
	}
	return &Puller{src: src, queue: queue, retry: retry, idle: idle, lg: lg, sleep: chaos.Sleep}
}

// Step performs one pull and applies the handler's verdict.
func (p *Puller) Step(ctx context.Context, h Handler) (Outcome, error) {
	msg, ok, err := p.src.Get(p.queue)
	if err != nil {
		return OutcomePullFailed, err
	}
	if !ok {
		return OutcomeEmpty, nil
	}
	if herr := h(ctx, msg.Body()); herr != nil {
		if nerr := msg.Nack(true); nerr != nil {
			return OutcomeRequeued, errors.Join(herr, nerr)
		}
		return OutcomeRequeued, herr
	}
	if err := msg.Ack(); err != nil {
		// unacked deliveries come back once the channel is gone
		return OutcomeRequeued, err
	}
	return OutcomeAcked, nil
}

// Run pulls until ctx is cancelled.
func (p *Puller) Run(ctx context.Context, h Handler) error {
	p.lg.Info("consumer_started", map[string]any{"queue": p.queue})
	failures := 0
	for {
		if ctx.Err() != nil {
			p.lg.Info("consumer_stopped", map[string]any{"queue": p.queue})
			return nil
		}
		out, err := p.Step(ctx, h)
		var wait time.Duration
		switch out {
		case OutcomeAcked:
			failures = 0
			continue
		case OutcomeEmpty:
			wait = p.idle
		default:
			failures++
			wait = p.retry.Delay(failures)
			if p.OnFailure != nil {
				p.OnFailure(err)
			}
			action := "message_requeued"
			if out == OutcomePullFailed {
				action = "pull_failed"
			}
			p.lg.Error(action, err, map[string]any{"queue": p.queue, "retry_in_ms": wait.Milliseconds(), "consecutive_failures": failures})
		}
		if err := p.sleep(ctx, wait); err != nil {
			p.lg.Info("consumer_stopped", map[string]any{"queue": p.queue})
			return nil
		}
	}
}
