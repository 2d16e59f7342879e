// Package scoring computes pairwise compatibility between candidates.
package scoring

import (
	"github.com/okian/pairdesk/internal/domain/model"
	"github.com/okian/pairdesk/internal/domain/types"
)

// Func scores how well b fits a. Higher is better.
type Func func(a, b model.Candidate) int

// Weights are the additive terms of the compatibility score.
type Weights struct {
	SameLanguage     int
	OpenLanguage     int
	LanguageMismatch int
	Skill            int
	Role             int
	Platform         int
}

// DefaultWeights give a score range of [-1, 6].
var DefaultWeights = Weights{ //nolint:gochecknoglobals // read-only defaults
	SameLanguage:     3,
	OpenLanguage:     2,
	LanguageMismatch: -1,
	Skill:            1,
	Role:             1,
	Platform:         1,
}

// Option adjusts a scorer built by New.
type Option func(*Weights)

// WithWeights replaces all weights.
func WithWeights(w Weights) Option {
	return func(dst *Weights) {
		*dst = w
	}
}

// WithLanguageWeights overrides the language terms only.
func WithLanguageWeights(same, open, mismatch int) Option {
	return func(w *Weights) {
		w.SameLanguage = same
		w.OpenLanguage = open
		w.LanguageMismatch = mismatch
	}
}

// New returns a scorer using DefaultWeights adjusted by opts.
func New(opts ...Option) Func {
	w := DefaultWeights
	for _, opt := range opts {
		opt(&w)
	}
	return func(a, b model.Candidate) int {
		return score(w, a, b)
	}
}

// Compatibility is the production scorer.
func Compatibility(a, b model.Candidate) int {
	return score(DefaultWeights, a, b)
}

func score(w Weights, a, b model.Candidate) int {
	s := 0

	switch {
	case a.Language == types.LanguageOpen || b.Language == types.LanguageOpen:
		s += w.OpenLanguage
	case a.Language == b.Language:
		s += w.SameLanguage
	default:
		s += w.LanguageMismatch
	}

	// Only a's level decides; the rule is not symmetric.
	switch a.SkillLevel {
	case types.SkillExplorer:
		if b.SkillLevel == types.SkillExplorer || b.SkillLevel == types.SkillBuilder {
			s += w.Skill
		}
	case types.SkillCreator:
		if b.SkillLevel == types.SkillCreator {
			s += w.Skill
		}
	}

	if (a.ProjectRole == types.RoleProvider && b.ProjectRole == types.RoleTaker) ||
		(a.ProjectRole == types.RoleTaker && b.ProjectRole == types.RoleProvider) {
		s += w.Role
	}

	if a.Platform == b.Platform {
		s += w.Platform
	}

	return s
}
