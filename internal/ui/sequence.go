package ui

import (
	"context"
	"time"
)

// Step is one animation phase: Apply runs, then the phase lasts Duration.
type Step struct {
	Name     string
	Duration time.Duration
	Apply    func()
}

// Sequencer plays steps in order and returns when the last one ends.
type Sequencer interface {
	Play(ctx context.Context, steps ...Step) error
}

// TimerSequencer waits out each step's duration on a timer.
type TimerSequencer struct{}

func (TimerSequencer) Play(ctx context.Context, steps ...Step) error {
	for _, s := range steps {
		if s.Apply != nil {
			s.Apply()
		}
		if s.Duration <= 0 {
			continue
		}
		t := time.NewTimer(s.Duration)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// ImmediateSequencer applies every step without waiting.
type ImmediateSequencer struct{}

func (ImmediateSequencer) Play(ctx context.Context, steps ...Step) error {
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.Apply != nil {
			s.Apply()
		}
	}
	return nil
}

const (
	enterDuration    = 500 * time.Millisecond
	slideOutDuration = 300 * time.Millisecond
	collapseDuration = 300 * time.Millisecond
)
