// seeder applies the schema and inserts demo data so the worker can be run
// locally end to end against the mock gateway.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"coachrelay/internal/store/pg"
	"coachrelay/internal/util"
)

func main() {
	_ = godotenv.Load()

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	slog.SetDefault(slog.New(h))

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		slog.Error("DB_DSN is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pg.NewPool(ctx, dsn, pg.PoolOptions{})
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := pg.Migrate(ctx, db); err != nil {
		slog.Error("migration failed", "err", err)
		os.Exit(1)
	}
	slog.Info("schema applied")

	// Demo data is replaced wholesale so the seeder can be re-run.
	if _, err := db.Exec(ctx, `TRUNCATE schedules, feedback_schedules, feedback_questions, clients CASCADE`); err != nil {
		slog.Error("truncate failed", "err", err)
		os.Exit(1)
	}

	now := time.Now().UTC()

	type client struct {
		id, name, phone, plan, service string
		status                         string
		endDate                        time.Time
	}
	clients := []client{
		{util.NewID("cli"), "Ana Souza", "+55 11 98888-0001", "Monthly", "Training", "active", now.AddDate(0, 0, 25)},
		{util.NewID("cli"), "Bruno Lima", "+55 11 98888-0002", "Quarterly", "Nutrition", "active", now.AddDate(0, 0, 3)},
		{util.NewID("cli"), "Carla Dias", "+55 11 98888-0003", "Monthly", "Nutrition", "expiring", now.AddDate(0, 0, 5)},
	}
	for _, c := range clients {
		_, err := db.Exec(ctx, `
			INSERT INTO clients (id, name, phone, plan_type, service_type, status, start_date, end_date)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (id) DO NOTHING
		`, c.id, c.name, c.phone, c.plan, c.service, c.status, now.AddDate(0, -1, 0), c.endDate)
		if err != nil {
			slog.Error("client insert failed", "name", c.name, "err", err)
			os.Exit(1)
		}
	}

	// One due text, one due document, one future send.
	schedules := []struct {
		clientID, typ, message, attURL, attName string
		date                                    time.Time
	}{
		{clients[0].id, "workout", "Here is today's workout. Warm up well!", "", "", now.Add(-time.Hour)},
		{clients[1].id, "diet", "Updated meal plan attached.", "https://files.example.com/plans/diet-v2.pdf", "diet-v2.pdf", now.Add(-10 * time.Minute)},
		{clients[2].id, "checkin", "How did this week feel?", "", "", now.Add(48 * time.Hour)},
	}
	for _, s := range schedules {
		_, err := db.Exec(ctx, `
			INSERT INTO schedules (id, client_id, date, type, message, attachment_url, attachment_name)
			VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),NULLIF($7,''))
		`, util.NewID("sch"), s.clientID, s.date, s.typ, s.message, s.attURL, s.attName)
		if err != nil {
			slog.Error("schedule insert failed", "err", err)
			os.Exit(1)
		}
	}

	questions := []string{
		"How was your energy this week?",
		"Did you follow the plan? What got in the way?",
		"Anything sore or bothering you?",
	}
	for i, q := range questions {
		_, err := db.Exec(ctx, `
			INSERT INTO feedback_questions (id, text, position) VALUES ($1,$2,$3)
			ON CONFLICT (id) DO NOTHING
		`, util.NewID("fq"), q, i)
		if err != nil {
			slog.Error("question insert failed", "err", err)
			os.Exit(1)
		}
	}

	snapshot, _ := json.Marshal(questions[:2])
	_, err = db.Exec(ctx, `
		INSERT INTO feedback_schedules (id, name, service_type, frequency_days, next_run_at, questions)
		VALUES ($1,$2,$3,$4,$5,$6::jsonb)
	`, util.NewID("fs"), "Weekly Nutrition Check-in", "Nutrition", 7, now.Add(-time.Minute), string(snapshot))
	if err != nil {
		slog.Error("feedback rule insert failed", "err", err)
		os.Exit(1)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO app_settings (key, value) VALUES ('personal_phone', '+55 11 97777-0000')
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`)
	if err != nil {
		slog.Error("settings insert failed", "err", err)
		os.Exit(1)
	}

	slog.Info("seed data inserted", "clients", len(clients), "schedules", len(schedules))
}
