package domain

import (
	"errors"
	"time"
)

type ScheduleStatus string

const (
	ScheduleStatusPending ScheduleStatus = "pending"
	ScheduleStatusSent    ScheduleStatus = "sent"
	ScheduleStatusFailed  ScheduleStatus = "failed"
)

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusExpiring ClientStatus = "expiring"
	ClientStatusExpired  ClientStatus = "expired"
	ClientStatusPending  ClientStatus = "pending"
)

// ScheduleType tags what kind of content a schedule carries. Dispatch does not
// branch on it; it exists for the dashboard and for metrics labels.
type ScheduleType string

const (
	ScheduleTypeWorkout ScheduleType = "workout"
	ScheduleTypeDiet    ScheduleType = "diet"
	ScheduleTypeCheckin ScheduleType = "checkin"
	ScheduleTypeGeneral ScheduleType = "general"
)

// Schedule is one outbound unit of work, created by the dashboard and consumed
// by the dispatcher. When AttachmentURL is set, the message goes out as a
// document with Message as its caption.
type Schedule struct {
	ID             string
	ClientID       string
	Date           time.Time
	Type           ScheduleType
	Message        string
	AttachmentURL  string
	AttachmentName string
	Status         ScheduleStatus
	Attempts       int
	LastError      string
}

// Client is owned by the dashboard; the worker only reads it and flips
// RenewalNoticeSent.
type Client struct {
	ID                string
	Name              string
	Phone             string
	PlanType          string
	ServiceType       string
	EndDate           time.Time
	Status            ClientStatus
	RenewalNoticeSent bool
}

type AudienceKind int

const (
	AudienceClient AudienceKind = iota + 1
	AudienceService
)

// Audience is the target of a feedback rule: exactly one client or every
// active client of one service category. The constructors keep the two
// variants mutually exclusive.
type Audience struct {
	Kind        AudienceKind
	ClientID    string
	ServiceType string
}

func ByClient(id string) Audience {
	return Audience{Kind: AudienceClient, ClientID: id}
}

func ByService(name string) Audience {
	return Audience{Kind: AudienceService, ServiceType: name}
}

var ErrEmptyAudience = errors.New("feedback rule has no audience")

func (a Audience) Validate() error {
	if a.Kind != AudienceClient && a.Kind != AudienceService {
		return ErrEmptyAudience
	}
	return nil
}

// FeedbackRule is a recurrence definition for check-in prompts. Questions are
// snapshotted at rule creation; an empty slice means "use the global set".
type FeedbackRule struct {
	ID            string
	Name          string
	Audience      Audience
	FrequencyDays int
	NextRunAt     time.Time
	Active        bool
	Questions     []string
}
