package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coachrelay/internal/observability"
	"coachrelay/internal/store"
	"coachrelay/internal/util"
)

// SettingOperatorPhone is the app_settings key holding the trainer's own
// WhatsApp number.
const SettingOperatorPhone = "personal_phone"

type RenewalStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	ExpiringClients(ctx context.Context, by time.Time) ([]store.ExpiringClient, error)
	MarkRenewalNoticeSent(ctx context.Context, ids []string, now time.Time) error
}

// RenewalWatcher sends the operator one aggregated alert for clients whose
// plan ends within the horizon. Each client appears in at most one alert; the
// renewal_notice_sent flag suppresses repeats until the dashboard resets it.
type RenewalWatcher struct {
	Store       RenewalStore
	Sender      MessageSender
	HorizonDays int
}

func (w *RenewalWatcher) Run(ctx context.Context, now time.Time) error {
	operatorPhone, ok, err := w.Store.GetSetting(ctx, SettingOperatorPhone)
	if err != nil {
		return err
	}
	if !ok || operatorPhone == "" {
		// Nothing to alert to; checked again next cycle.
		return nil
	}

	by := now.AddDate(0, 0, w.HorizonDays)
	clients, err := w.Store.ExpiringClients(ctx, by)
	if err != nil {
		return err
	}
	if len(clients) == 0 {
		return nil
	}
	slog.Info("clients expiring without notice", "count", len(clients))

	if !w.Sender.Send(ctx, operatorPhone, renewalAlertMessage(clients), nil) {
		// Flags stay false so the whole batch is retried next cycle.
		return nil
	}

	ids := make([]string, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, c.ID)
	}
	if err := w.Store.MarkRenewalNoticeSent(ctx, ids, now); err != nil {
		return err
	}
	observability.RenewalAlerts.Inc()
	slog.Info("renewal alert sent", "clients", len(ids))
	return nil
}

func renewalAlertMessage(clients []store.ExpiringClient) string {
	var b strings.Builder
	b.WriteString("⚠️ *Renewal alert*\n\nThese plans end soon:\n")
	for _, c := range clients {
		fmt.Fprintf(&b, "• *%s* (%s) - %s\n  Ends: %s\n",
			c.Name, c.Phone, c.PlanType, util.FormatDate(c.EndDate))
	}
	b.WriteString("\nReach out to renew! 🚀")
	return b.String()
}
