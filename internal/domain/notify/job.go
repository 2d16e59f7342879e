// Package notify describes mail deliveries produced by the scheduled jobs.
package notify

import (
	"github.com/okian/pairdesk/internal/domain/model"
)

// Kind names a mail template.
type Kind string

const (
	KindPairReminder    Kind = "pair_reminder"
	KindSoloReminder    Kind = "solo_reminder"
	KindMorningReminder Kind = "morning_reminder"
	KindPostSession     Kind = "post_session"
)

// Status is the result of one delivery.
type Status int

const (
	StatusSent Status = iota + 1
	StatusFailed
	StatusDuplicate
	StatusDropped
)

func (s Status) String() string {
	switch s {
	case StatusSent:
		return "sent"
	case StatusFailed:
		return "failed"
	case StatusDuplicate:
		return "duplicate"
	case StatusDropped:
		return "dropped"
	}
	return "unknown"
}

// Job is one mail to one recipient.
type Job struct {
	Kind          Kind
	AppointmentID string
	To            model.Contact
	Date          string
	StartTime     string
	Station       string
	RunID         string

	// Done is called exactly once with the delivery result.
	Done func(Status, error)
}

// Key identifies a delivery for deduplication.
func (j Job) Key() string {
	return string(j.Kind) + ":" + j.AppointmentID + ":" + j.Date
}

// Finish reports the result to Done if set.
func (j Job) Finish(s Status, err error) {
	if j.Done != nil {
		j.Done(s, err)
	}
}

// Report counts the results of a batch.
type Report struct {
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
	Duplicate int `json:"duplicate"`
	Dropped   int `json:"dropped"`
}

// Add counts one result.
func (r *Report) Add(s Status) {
	switch s {
	case StatusSent:
		r.Sent++
	case StatusFailed:
		r.Failed++
	case StatusDuplicate:
		r.Duplicate++
	case StatusDropped:
		r.Dropped++
	}
}

// Total is the number of counted results.
func (r Report) Total() int {
	return r.Sent + r.Failed + r.Duplicate + r.Dropped
}
