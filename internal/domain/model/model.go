// Package model contains domain models passed between layers.
package model

import (
	"fmt"

	"github.com/okian/pairdesk/internal/domain/types"
)

// Date and time layouts used by persisted appointments.
const (
	DateLayout = "02-01-2006"
	TimeLayout = "15:04"
)

// Contact is where notifications for a user go.
type Contact struct {
	Name  string `json:"name" db:"name" bson:"name"`
	Email string `json:"email" db:"email" bson:"email"`
}

// Slot identifies a bookable session by date and start time.
type Slot struct {
	Date  string // DD-MM-YYYY
	Start string // HH:mm
}

func (s Slot) String() string { return s.Date + " " + s.Start }

// Appointment is a user's booking for one slot.
type Appointment struct {
	ID                  string `json:"id" db:"id" bson:"_id"`
	UserID              int64  `json:"user_id" db:"user_id" bson:"user_id"`
	Date                string `json:"date" db:"date" bson:"date"`
	StartTime           string `json:"start_time" db:"start_time" bson:"start_time"`
	EndTime             string `json:"end_time" db:"end_time" bson:"end_time"`
	Duration            int    `json:"duration" db:"duration" bson:"duration"`
	IsPaired            bool   `json:"is_paired" db:"is_paired" bson:"is_paired"`
	PairedAppointmentID string `json:"paired_appointment_id,omitempty" db:"paired_appointment_id" bson:"paired_appointment_id,omitempty"`
	PairedUserID        int64  `json:"paired_user_id,omitempty" db:"paired_user_id" bson:"paired_user_id,omitempty"`
	Station             string `json:"station,omitempty" db:"station" bson:"station,omitempty"`

	Contact Contact `json:"contact" db:"contact" bson:"contact"`
}

// Slot returns the slot this appointment was booked for.
func (a Appointment) Slot() Slot {
	return Slot{Date: a.Date, Start: a.StartTime}
}

// Preferences are the matching attributes a user filled in.
type Preferences struct {
	UserID            int64             `json:"user_id" db:"user_id" bson:"user_id"`
	Language          types.Language    `json:"language" db:"language" bson:"language"`
	SkillLevel        types.SkillLevel  `json:"skill_level" db:"skill_level" bson:"skill_level"`
	PartnerSkillLevel types.SkillLevel  `json:"partner_skill_level" db:"partner_skill_level" bson:"partner_skill_level"`
	ProjectRole       types.ProjectRole `json:"project_role" db:"project_role" bson:"project_role"`
	Platform          types.Platform    `json:"platform" db:"platform" bson:"platform"`
}

// Normalize returns p with every enum in canonical form. Stored values are
// matched case-insensitively. An empty PartnerSkillLevel is allowed since it
// is never scored; any other unknown value wraps types.ErrUnknownValue.
func (p Preferences) Normalize() (Preferences, error) {
	var err error
	if p.Language, err = types.ParseLanguage(string(p.Language)); err != nil {
		return p, fmt.Errorf("user %d: %w", p.UserID, err)
	}
	if p.SkillLevel, err = types.ParseSkillLevel(string(p.SkillLevel)); err != nil {
		return p, fmt.Errorf("user %d: %w", p.UserID, err)
	}
	if p.PartnerSkillLevel != "" {
		if p.PartnerSkillLevel, err = types.ParseSkillLevel(string(p.PartnerSkillLevel)); err != nil {
			return p, fmt.Errorf("user %d: partner %w", p.UserID, err)
		}
	}
	if p.ProjectRole, err = types.ParseProjectRole(string(p.ProjectRole)); err != nil {
		return p, fmt.Errorf("user %d: %w", p.UserID, err)
	}
	if p.Platform, err = types.ParsePlatform(string(p.Platform)); err != nil {
		return p, fmt.Errorf("user %d: %w", p.UserID, err)
	}
	return p, nil
}

// Candidate is one unpaired appointment joined with its owner's preferences.
type Candidate struct {
	SubjectID         int64
	RequestID         string
	Language          types.Language
	SkillLevel        types.SkillLevel
	PartnerSkillLevel types.SkillLevel
	ProjectRole       types.ProjectRole
	Platform          types.Platform
	Contact           Contact
	Slot              Slot
}

// NewCandidate builds the candidate for an appointment and its owner's preferences.
func NewCandidate(a Appointment, p Preferences) Candidate {
	return Candidate{
		SubjectID:         a.UserID,
		RequestID:         a.ID,
		Language:          p.Language,
		SkillLevel:        p.SkillLevel,
		PartnerSkillLevel: p.PartnerSkillLevel,
		ProjectRole:       p.ProjectRole,
		Platform:          p.Platform,
		Contact:           a.Contact,
		Slot:              a.Slot(),
	}
}

// OutcomeKind distinguishes paired from solo outcomes.
type OutcomeKind int

const (
	Pair OutcomeKind = iota + 1
	Solo
)

func (k OutcomeKind) String() string {
	switch k {
	case Pair:
		return "pair"
	case Solo:
		return "solo"
	}
	return "unknown"
}

// Outcome is the selector's decision for one or two candidates.
// Second is nil for Solo. Station is empty until committed.
type Outcome struct {
	Kind    OutcomeKind
	First   Candidate
	Second  *Candidate
	Station string
}

// NewPair returns a Pair outcome.
func NewPair(a, b Candidate) Outcome {
	return Outcome{Kind: Pair, First: a, Second: &b}
}

// NewSolo returns a Solo outcome.
func NewSolo(a Candidate) Outcome {
	return Outcome{Kind: Solo, First: a}
}

// Members returns the candidates the outcome covers.
func (o Outcome) Members() []Candidate {
	if o.Second == nil {
		return []Candidate{o.First}
	}
	return []Candidate{o.First, *o.Second}
}
