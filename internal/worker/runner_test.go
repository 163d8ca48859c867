package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCycleRunsAllJobsDespiteFailure(t *testing.T) {
	var order []string
	r := &Runner{
		Interval: time.Minute,
		Jobs: []Job{
			{Name: "dispatch", Run: func(ctx context.Context, now time.Time) error {
				order = append(order, "dispatch")
				return errors.New("db down")
			}},
			{Name: "renewals", Run: func(ctx context.Context, now time.Time) error {
				order = append(order, "renewals")
				return nil
			}},
			{Name: "automation", Run: func(ctx context.Context, now time.Time) error {
				order = append(order, "automation")
				return nil
			}},
		},
	}

	r.Cycle(context.Background())

	if len(order) != 3 {
		t.Fatalf("expected all 3 jobs to run, got %v", order)
	}
	if order[0] != "dispatch" || order[1] != "renewals" || order[2] != "automation" {
		t.Fatalf("jobs ran out of order: %v", order)
	}
}

func TestStartRunsImmediatelyAndStopsOnCancel(t *testing.T) {
	ran := make(chan struct{}, 1)
	r := &Runner{
		Interval: time.Hour,
		Jobs: []Job{
			{Name: "dispatch", Run: func(ctx context.Context, now time.Time) error {
				select {
				case ran <- struct{}{}:
				default:
				}
				return nil
			}},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("first cycle did not run immediately")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("unexpected stop error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop on cancel")
	}
}

func TestCycleStopsMidwayWhenContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran []string
	r := &Runner{
		Interval: time.Minute,
		Jobs: []Job{
			{Name: "first", Run: func(ctx context.Context, now time.Time) error {
				ran = append(ran, "first")
				cancel()
				return nil
			}},
			{Name: "second", Run: func(ctx context.Context, now time.Time) error {
				ran = append(ran, "second")
				return nil
			}},
		},
	}

	r.Cycle(ctx)

	if len(ran) != 1 {
		t.Fatalf("expected cycle to stop after cancellation, ran %v", ran)
	}
}
