package worker

import (
	"context"
	"log/slog"
	"time"

	"coachrelay/internal/gateway/evolution"
	"coachrelay/internal/observability"
	"coachrelay/internal/store"
)

type DispatchStore interface {
	DueSchedules(ctx context.Context, now time.Time) ([]store.DueSchedule, error)
	MarkScheduleSent(ctx context.Context, id string, now time.Time) error
	RecordSendFailure(ctx context.Context, id, lastError string, now time.Time) (int, error)
	MarkScheduleFailed(ctx context.Context, id, lastError string, now time.Time) error
}

// Dispatcher turns due schedules into delivered messages, one at a time.
// A schedule is marked sent only after the gateway accepted it; a failed
// attempt leaves it pending so the next cycle picks it up again, until the
// attempt cap (if any) parks it as failed.
type Dispatcher struct {
	Store       DispatchStore
	Sender      MessageSender
	MaxAttempts int
}

func (d *Dispatcher) Run(ctx context.Context, now time.Time) error {
	items, err := d.Store.DueSchedules(ctx, now)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	slog.Info("dispatching due schedules", "count", len(items))

	for _, item := range items {
		d.process(ctx, item, now)
	}
	return nil
}

func (d *Dispatcher) process(ctx context.Context, item store.DueSchedule, now time.Time) {
	if item.ClientPhone == "" {
		// Stays pending; the dashboard shows it until someone fixes the
		// client record.
		observability.DispatchSkipped.WithLabelValues("no_phone").Inc()
		slog.Warn("schedule skipped, client has no phone",
			"schedule_id", item.ID, "client_id", item.ClientID, "client", item.ClientName)
		return
	}

	var att *evolution.Attachment
	if item.AttachmentURL != "" {
		att = &evolution.Attachment{URL: item.AttachmentURL, FileName: item.AttachmentName}
	}

	if d.Sender.Send(ctx, item.ClientPhone, item.Message, att) {
		if err := d.Store.MarkScheduleSent(ctx, item.ID, now); err != nil {
			slog.Error("failed to mark schedule sent", "schedule_id", item.ID, "err", err)
		} else {
			slog.Info("schedule sent", "schedule_id", item.ID, "client", item.ClientName,
				"type", string(item.Type))
		}
		return
	}

	attempts, err := d.Store.RecordSendFailure(ctx, item.ID, "gateway send failed", now)
	if err != nil {
		slog.Error("failed to record send failure", "schedule_id", item.ID, "err", err)
		return
	}
	if d.MaxAttempts > 0 && attempts >= d.MaxAttempts {
		if err := d.Store.MarkScheduleFailed(ctx, item.ID, "max attempts reached", now); err != nil {
			slog.Error("failed to mark schedule failed", "schedule_id", item.ID, "err", err)
			return
		}
		observability.DispatchSkipped.WithLabelValues("max_attempts").Inc()
		slog.Warn("schedule parked after repeated failures",
			"schedule_id", item.ID, "attempts", attempts)
	}
}
