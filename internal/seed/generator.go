// Package seed generates synthetic appointments and preferences.
package seed

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/okian/pairdesk/internal/domain/model"
	"github.com/okian/pairdesk/internal/domain/types"
	"github.com/okian/pairdesk/pkg/logger"
)

const (
	defaultUserBase    = 100000
	defaultEmailDomain = "example.com"
	defaultDuration    = 60
)

var (
	languages = []types.Language{types.LanguagePython, types.LanguageJavaScript, types.LanguageOpen}     //nolint:gochecknoglobals // enum tables
	skills    = []types.SkillLevel{types.SkillExplorer, types.SkillBuilder, types.SkillCreator}           //nolint:gochecknoglobals // enum tables
	roles     = []types.ProjectRole{types.RoleProvider, types.RoleTaker}                                  //nolint:gochecknoglobals // enum tables
	platforms = []types.Platform{types.PlatformWindows, types.PlatformMac}                                //nolint:gochecknoglobals // enum tables
)

// Writer persists generated records.
type Writer interface {
	Insert(ctx context.Context, appts []model.Appointment, prefs []model.Preferences) error
}

// Option configures a Generator.
type Option func(*Generator)

// WithUserBase sets the first generated user id.
func WithUserBase(base int64) Option {
	return func(g *Generator) {
		if base > 0 {
			g.userBase = base
		}
	}
}

// WithEmailDomain sets the domain of generated contact addresses.
func WithEmailDomain(domain string) Option {
	return func(g *Generator) {
		if domain != "" {
			g.emailDomain = domain
		}
	}
}

// WithMissingPreferences makes every nth user have no preferences.
func WithMissingPreferences(every int) Option {
	return func(g *Generator) {
		if every > 0 {
			g.missingEvery = every
		}
	}
}

// Generator produces random bookings for one slot.
type Generator struct {
	slot         model.Slot
	userBase     int64
	emailDomain  string
	missingEvery int
}

// New creates a generator for slot.
func New(slot model.Slot, opts ...Option) *Generator {
	g := &Generator{
		slot:        slot,
		userBase:    defaultUserBase,
		emailDomain: defaultEmailDomain,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns n unpaired appointments and the preferences of their owners.
func (g *Generator) Generate(n int) ([]model.Appointment, []model.Preferences) {
	appts := make([]model.Appointment, 0, n)
	prefs := make([]model.Preferences, 0, n)
	end := g.endTime()

	for i := 0; i < n; i++ {
		userID := g.userBase + int64(i)
		appts = append(appts, model.Appointment{
			ID:        uuid.New().String(),
			UserID:    userID,
			Date:      g.slot.Date,
			StartTime: g.slot.Start,
			EndTime:   end,
			Duration:  defaultDuration,
			Contact: model.Contact{
				Name:  fmt.Sprintf("user-%d", userID),
				Email: fmt.Sprintf("user-%d@%s", userID, g.emailDomain),
			},
		})
		if g.missingEvery > 0 && (i+1)%g.missingEvery == 0 {
			continue
		}
		prefs = append(prefs, randomPreferences(userID))
	}
	return appts, prefs
}

// Candidates returns n candidates with random attributes and distinct subjects.
func (g *Generator) Candidates(n int) []model.Candidate {
	appts, prefs := g.Generate(n)
	byUser := make(map[int64]model.Preferences, len(prefs))
	for _, p := range prefs {
		byUser[p.UserID] = p
	}
	out := make([]model.Candidate, 0, len(appts))
	for _, a := range appts {
		p, ok := byUser[a.UserID]
		if !ok {
			continue
		}
		out = append(out, model.NewCandidate(a, p))
	}
	return out
}

// Seed generates n bookings and writes them through w.
func (g *Generator) Seed(ctx context.Context, w Writer, n int) error {
	appts, prefs := g.Generate(n)
	logger.Get().Info(ctx, "seeding appointments",
		logger.Int("appointments", len(appts)),
		logger.Int("preferences", len(prefs)),
		logger.String("slot", g.slot.String()),
	)
	if err := w.Insert(ctx, appts, prefs); err != nil {
		return fmt.Errorf("seed insert: %w", err)
	}
	return nil
}

func (g *Generator) endTime() string {
	t, err := time.Parse(model.TimeLayout, g.slot.Start)
	if err != nil {
		return ""
	}
	return t.Add(defaultDuration * time.Minute).Format(model.TimeLayout)
}

func randomPreferences(userID int64) model.Preferences {
	return model.Preferences{
		UserID:            userID,
		Language:          languages[randomIndex(len(languages))],
		SkillLevel:        skills[randomIndex(len(skills))],
		PartnerSkillLevel: skills[randomIndex(len(skills))],
		ProjectRole:       roles[randomIndex(len(roles))],
		Platform:          platforms[randomIndex(len(platforms))],
	}
}

// randomIndex returns a uniform index in [0, n) using crypto/rand.
func randomIndex(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
