package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID mints a ULID-backed id with a type prefix. ULID is sortable (nice for
// DB indexes and dashboards).
func NewID(prefix string) string {
	t := time.Now().UTC()
	return prefix + "_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatDate renders a date the way the dashboard shows plan end dates.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
