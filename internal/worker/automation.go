package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coachrelay/internal/domain"
	"coachrelay/internal/observability"
)

type AutomationStore interface {
	DueFeedbackRules(ctx context.Context, now time.Time) ([]domain.FeedbackRule, error)
	GlobalQuestions(ctx context.Context) ([]string, error)
	ClientByID(ctx context.Context, id string) (domain.Client, bool, error)
	ActiveClientsByService(ctx context.Context, serviceType string) ([]domain.Client, error)
	SetRuleNextRun(ctx context.Context, id string, next, now time.Time) error
}

// AutomationRunner fires due feedback rules: resolve the question set, resolve
// the audience, send each member a numbered check-in prompt, reschedule the
// rule. Individual send failures never block the other members or the
// reschedule; a missed prompt is lost, not queued.
type AutomationRunner struct {
	Store  AutomationStore
	Sender MessageSender
}

func (r *AutomationRunner) Run(ctx context.Context, now time.Time) error {
	rules, err := r.Store.DueFeedbackRules(ctx, now)
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		return nil
	}
	slog.Info("feedback rules due", "count", len(rules))

	for _, rule := range rules {
		r.runRule(ctx, rule, now)
	}
	return nil
}

func (r *AutomationRunner) runRule(ctx context.Context, rule domain.FeedbackRule, now time.Time) {
	questions := rule.Questions
	if len(questions) == 0 {
		global, err := r.Store.GlobalQuestions(ctx)
		if err != nil {
			slog.Error("failed to load global questions", "rule_id", rule.ID, "err", err)
			observability.AutomationRuns.WithLabelValues("error").Inc()
			return
		}
		questions = global
	}
	if len(questions) == 0 {
		// Not rescheduled: the rule fires again next tick until someone gives
		// it questions.
		slog.Warn("feedback rule has no questions, skipping", "rule_id", rule.ID, "rule", rule.Name)
		observability.AutomationRuns.WithLabelValues("no_questions").Inc()
		return
	}

	clients, err := r.resolveAudience(ctx, rule)
	if err != nil {
		slog.Error("failed to resolve audience", "rule_id", rule.ID, "err", err)
		observability.AutomationRuns.WithLabelValues("error").Inc()
		return
	}

	sent := 0
	for _, c := range clients {
		if c.Phone == "" {
			continue
		}
		if r.Sender.Send(ctx, c.Phone, checkinMessage(c.Name, rule.Name, questions), nil) {
			sent++
			slog.Info("check-in prompt sent", "rule", rule.Name, "client", c.Name)
		}
	}
	if len(clients) == 0 {
		slog.Info("no active clients for rule", "rule_id", rule.ID, "rule", rule.Name)
	}

	next := now.AddDate(0, 0, rule.FrequencyDays)
	if err := r.Store.SetRuleNextRun(ctx, rule.ID, next, now); err != nil {
		slog.Error("failed to reschedule rule", "rule_id", rule.ID, "err", err)
		observability.AutomationRuns.WithLabelValues("error").Inc()
		return
	}
	observability.AutomationRuns.WithLabelValues("ok").Inc()
	slog.Info("feedback rule ran", "rule", rule.Name, "sent", sent, "next_run_at", next)
}

func (r *AutomationRunner) resolveAudience(ctx context.Context, rule domain.FeedbackRule) ([]domain.Client, error) {
	if err := rule.Audience.Validate(); err != nil {
		// Rule saved with no target; still rescheduled so it doesn't spin
		// every tick.
		slog.Warn("feedback rule has no audience", "rule_id", rule.ID)
		return nil, nil
	}
	switch rule.Audience.Kind {
	case domain.AudienceClient:
		c, found, err := r.Store.ClientByID(ctx, rule.Audience.ClientID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		return []domain.Client{c}, nil
	default: // domain.AudienceService, per Validate above
		return r.Store.ActiveClientsByService(ctx, rule.Audience.ServiceType)
	}
}

func checkinMessage(clientName, ruleName string, questions []string) string {
	first := clientName
	if f := strings.Fields(clientName); len(f) > 0 {
		first = f[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hey %s! How are things going?\n\nTime for our check-in (%s). Please answer the questions below:\n\n", first, ruleName)
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	b.WriteString("\nWaiting on your reply! 💪")
	return b.String()
}
