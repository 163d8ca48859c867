package pg

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"coachrelay/internal/domain"
	"coachrelay/internal/store"
)

type Store struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store { return &Store{DB: db} }

// DueSchedules returns every pending schedule whose date has passed, joined
// with the client fields the dispatcher needs. Oldest first, but callers must
// not depend on the order.
func (s *Store) DueSchedules(ctx context.Context, now time.Time) ([]store.DueSchedule, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT s.id, s.client_id, s.date, s.type, s.message,
		       COALESCE(s.attachment_url,''), COALESCE(s.attachment_name,''),
		       s.status, s.attempts, COALESCE(s.last_error,''),
		       c.name, COALESCE(c.phone,'')
		FROM schedules s
		JOIN clients c ON c.id = s.client_id
		WHERE s.status='pending' AND s.date <= $1
		ORDER BY s.date ASC
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.DueSchedule
	for rows.Next() {
		var d store.DueSchedule
		if err := rows.Scan(&d.ID, &d.ClientID, &d.Date, &d.Type, &d.Message,
			&d.AttachmentURL, &d.AttachmentName, &d.Status, &d.Attempts, &d.LastError,
			&d.ClientName, &d.ClientPhone); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) MarkScheduleSent(ctx context.Context, id string, now time.Time) error {
	_, err := s.DB.Exec(ctx, `
		UPDATE schedules SET status='sent', last_error=NULL, updated_at=$2 WHERE id=$1
	`, id, now)
	return err
}

// RecordSendFailure bumps the attempt counter and returns the new count so the
// dispatcher can decide whether the cap is reached.
func (s *Store) RecordSendFailure(ctx context.Context, id, lastError string, now time.Time) (int, error) {
	row := s.DB.QueryRow(ctx, `
		UPDATE schedules SET attempts=attempts+1, last_error=$2, updated_at=$3
		WHERE id=$1
		RETURNING attempts
	`, id, nullIfEmpty(lastError), now)
	var attempts int
	err := row.Scan(&attempts)
	return attempts, err
}

func (s *Store) MarkScheduleFailed(ctx context.Context, id, lastError string, now time.Time) error {
	_, err := s.DB.Exec(ctx, `
		UPDATE schedules SET status='failed', last_error=$2, updated_at=$3 WHERE id=$1
	`, id, nullIfEmpty(lastError), now)
	return err
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	row := s.DB.QueryRow(ctx, `SELECT value FROM app_settings WHERE key=$1`, key)
	var v string
	err := row.Scan(&v)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

// ExpiringClients returns active/expiring clients whose plan ends by the given
// date and who have not been listed in a renewal alert yet.
func (s *Store) ExpiringClients(ctx context.Context, by time.Time) ([]store.ExpiringClient, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, COALESCE(phone,''), COALESCE(plan_type,''), end_date
		FROM clients
		WHERE status IN ('active','expiring')
		  AND end_date IS NOT NULL AND end_date <= $1
		  AND renewal_notice_sent = FALSE
		ORDER BY end_date ASC
	`, by)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.ExpiringClient
	for rows.Next() {
		var c store.ExpiringClient
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.PlanType, &c.EndDate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) MarkRenewalNoticeSent(ctx context.Context, ids []string, now time.Time) error {
	_, err := s.DB.Exec(ctx, `
		UPDATE clients SET renewal_notice_sent=TRUE, updated_at=$2 WHERE id = ANY($1)
	`, ids, now)
	return err
}

func (s *Store) DueFeedbackRules(ctx context.Context, now time.Time) ([]domain.FeedbackRule, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, COALESCE(client_id,''), COALESCE(service_type,''),
		       frequency_days, next_run_at, active, questions
		FROM feedback_schedules
		WHERE active = TRUE AND next_run_at <= $1
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FeedbackRule
	for rows.Next() {
		var (
			r             domain.FeedbackRule
			clientID      string
			serviceType   string
			questionsJSON []byte
		)
		if err := rows.Scan(&r.ID, &r.Name, &clientID, &serviceType,
			&r.FrequencyDays, &r.NextRunAt, &r.Active, &questionsJSON); err != nil {
			return nil, err
		}
		if clientID != "" {
			r.Audience = domain.ByClient(clientID)
		} else if serviceType != "" {
			r.Audience = domain.ByService(serviceType)
		}
		_ = json.Unmarshal(questionsJSON, &r.Questions)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GlobalQuestions is the fallback question set for rules saved without a
// snapshot.
func (s *Store) GlobalQuestions(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT text FROM feedback_questions ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) ClientByID(ctx context.Context, id string) (domain.Client, bool, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, name, COALESCE(phone,''), COALESCE(plan_type,''),
		       COALESCE(service_type,''), COALESCE(end_date, 'epoch'::date),
		       status, renewal_notice_sent
		FROM clients WHERE id=$1
	`, id)
	var c domain.Client
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.PlanType, &c.ServiceType,
		&c.EndDate, &c.Status, &c.RenewalNoticeSent)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return domain.Client{}, false, nil
		}
		return domain.Client{}, false, err
	}
	return c, true, nil
}

// ActiveClientsByService resolves a category audience: active or expiring
// clients of the given service type.
func (s *Store) ActiveClientsByService(ctx context.Context, serviceType string) ([]domain.Client, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, name, COALESCE(phone,''), COALESCE(plan_type,''),
		       COALESCE(service_type,''), COALESCE(end_date, 'epoch'::date),
		       status, renewal_notice_sent
		FROM clients
		WHERE service_type=$1 AND status IN ('active','expiring')
	`, serviceType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Client
	for rows.Next() {
		var c domain.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.PlanType, &c.ServiceType,
			&c.EndDate, &c.Status, &c.RenewalNoticeSent); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) SetRuleNextRun(ctx context.Context, id string, next, now time.Time) error {
	_, err := s.DB.Exec(ctx, `
		UPDATE feedback_schedules SET next_run_at=$2, updated_at=$3 WHERE id=$1
	`, id, next, now)
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
