package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"coachrelay/internal/store"
)

type fakeRenewalStore struct {
	settings map[string]string
	expiring []store.ExpiringClient
	marked   []string
}

func (f *fakeRenewalStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.settings[key]
	return v, ok, nil
}

func (f *fakeRenewalStore) ExpiringClients(ctx context.Context, by time.Time) ([]store.ExpiringClient, error) {
	var out []store.ExpiringClient
	for _, c := range f.expiring {
		if !c.EndDate.After(by) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRenewalStore) MarkRenewalNoticeSent(ctx context.Context, ids []string, now time.Time) error {
	f.marked = append(f.marked, ids...)
	return nil
}

func TestRenewalWatcherSendsOneAggregatedAlert(t *testing.T) {
	now := time.Now()
	st := &fakeRenewalStore{
		settings: map[string]string{SettingOperatorPhone: "+55 11 97777-0000"},
		expiring: []store.ExpiringClient{
			{ID: "cli_1", Name: "Bruno Lima", Phone: "+55 11 98888-0002", PlanType: "Quarterly", EndDate: now.AddDate(0, 0, 3)},
			{ID: "cli_2", Name: "Carla Dias", Phone: "+55 11 98888-0003", PlanType: "Monthly", EndDate: now.AddDate(0, 0, 3)},
		},
	}
	sender := &fakeSender{ok: true}
	w := &RenewalWatcher{Store: st, Sender: sender, HorizonDays: 7}

	if err := w.Run(context.Background(), now); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one gateway call, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Phone != "+55 11 97777-0000" {
		t.Fatalf("alert went to %q, want operator phone", msg.Phone)
	}
	if !strings.Contains(msg.Text, "Bruno Lima") || !strings.Contains(msg.Text, "Carla Dias") {
		t.Fatalf("alert body missing a client: %q", msg.Text)
	}
	if len(st.marked) != 2 {
		t.Fatalf("expected both clients flagged, got %v", st.marked)
	}
}

func TestRenewalWatcherNoOpWithoutOperatorPhone(t *testing.T) {
	st := &fakeRenewalStore{
		settings: map[string]string{},
		expiring: []store.ExpiringClient{
			{ID: "cli_1", Name: "Bruno", EndDate: time.Now()},
		},
	}
	sender := &fakeSender{ok: true}
	w := &RenewalWatcher{Store: st, Sender: sender, HorizonDays: 7}

	if err := w.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("must not send without a configured operator phone")
	}
}

func TestRenewalWatcherKeepsFlagsOnSendFailure(t *testing.T) {
	st := &fakeRenewalStore{
		settings: map[string]string{SettingOperatorPhone: "+55 11 97777-0000"},
		expiring: []store.ExpiringClient{
			{ID: "cli_1", Name: "Bruno", EndDate: time.Now()},
		},
	}
	sender := &fakeSender{ok: false}
	w := &RenewalWatcher{Store: st, Sender: sender, HorizonDays: 7}

	if err := w.Run(context.Background(), time.Now()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(st.marked) != 0 {
		t.Fatalf("flags must stay false after a failed alert, got %v", st.marked)
	}
}

func TestRenewalWatcherIgnoresClientsOutsideHorizon(t *testing.T) {
	now := time.Now()
	st := &fakeRenewalStore{
		settings: map[string]string{SettingOperatorPhone: "+55 11 97777-0000"},
		expiring: []store.ExpiringClient{
			{ID: "cli_far", Name: "Later", EndDate: now.AddDate(0, 0, 30)},
		},
	}
	sender := &fakeSender{ok: true}
	w := &RenewalWatcher{Store: st, Sender: sender, HorizonDays: 7}

	if err := w.Run(context.Background(), now); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("no alert expected when nothing expires inside the horizon")
	}
}
