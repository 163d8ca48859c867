package store

import (
	"time"

	"coachrelay/internal/domain"
)

// DueSchedule is a pending schedule joined with the minimal client fields the
// dispatcher needs.
type DueSchedule struct {
	domain.Schedule
	ClientName  string
	ClientPhone string
}

// ExpiringClient is the slice of a client row the renewal alert lists.
type ExpiringClient struct {
	ID       string
	Name     string
	Phone    string
	PlanType string
	EndDate  time.Time
}
