package scoring_test

import (
	"testing"

	"github.com/okian/pairdesk/internal/domain/model"
	scoring "github.com/okian/pairdesk/internal/domain/scoring"
	"github.com/okian/pairdesk/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func cand(l types.Language, s types.SkillLevel, r types.ProjectRole, p types.Platform) model.Candidate {
	return model.Candidate{Language: l, SkillLevel: s, ProjectRole: r, Platform: p}
}

func TestCompatibility(t *testing.T) {
	Convey("Given two ideal partners", t, func() {
		a := cand(types.LanguagePython, types.SkillCreator, types.RoleProvider, types.PlatformMac)
		b := cand(types.LanguagePython, types.SkillCreator, types.RoleTaker, types.PlatformMac)

		Convey("Then they get the maximum score of 6", func() {
			So(scoring.Compatibility(a, b), ShouldEqual, 6)
		})
	})

	Convey("Given OPEN against JAVASCRIPT with nothing else in common", t, func() {
		a := cand(types.LanguageOpen, types.SkillBuilder, types.RoleProvider, types.PlatformWindows)
		b := cand(types.LanguageJavaScript, types.SkillCreator, types.RoleProvider, types.PlatformMac)

		Convey("Then only the open-language term counts", func() {
			So(scoring.Compatibility(a, b), ShouldEqual, 2)
			So(scoring.Compatibility(b, a), ShouldEqual, 2)
		})
	})

	Convey("Given both candidates OPEN", t, func() {
		a := cand(types.LanguageOpen, types.SkillBuilder, types.RoleProvider, types.PlatformWindows)
		b := cand(types.LanguageOpen, types.SkillBuilder, types.RoleProvider, types.PlatformMac)

		Convey("Then the language term is the open one", func() {
			So(scoring.Compatibility(a, b), ShouldEqual, 2)
		})
	})

	Convey("Given the worst possible partners", t, func() {
		a := cand(types.LanguagePython, types.SkillBuilder, types.RoleTaker, types.PlatformWindows)
		b := cand(types.LanguageJavaScript, types.SkillCreator, types.RoleTaker, types.PlatformMac)

		Convey("Then the score is the minimum of -1", func() {
			So(scoring.Compatibility(a, b), ShouldEqual, -1)
		})
	})

	Convey("Given an EXPLORER and a CREATOR", t, func() {
		explorer := cand(types.LanguagePython, types.SkillExplorer, types.RoleTaker, types.PlatformMac)
		builder := cand(types.LanguagePython, types.SkillBuilder, types.RoleTaker, types.PlatformMac)
		creator := cand(types.LanguagePython, types.SkillCreator, types.RoleTaker, types.PlatformMac)

		Convey("Then the skill term is evaluated from the first side only", func() {
			So(scoring.Compatibility(explorer, builder), ShouldEqual, 5)
			So(scoring.Compatibility(builder, explorer), ShouldEqual, 4)
			So(scoring.Compatibility(creator, explorer), ShouldEqual, 4)
			So(scoring.Compatibility(explorer, creator), ShouldEqual, 4)
		})
	})

	Convey("Given candidates differing only in partner skill level", t, func() {
		a := cand(types.LanguagePython, types.SkillBuilder, types.RoleTaker, types.PlatformMac)
		b := a
		a.PartnerSkillLevel = types.SkillCreator
		b.PartnerSkillLevel = types.SkillExplorer

		Convey("Then partner skill level does not change the score", func() {
			c := a
			c.PartnerSkillLevel = types.SkillExplorer
			So(scoring.Compatibility(a, b), ShouldEqual, scoring.Compatibility(c, b))
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given a scorer with custom language weights", t, func() {
		score := scoring.New(scoring.WithLanguageWeights(10, 5, -10))
		a := cand(types.LanguagePython, types.SkillBuilder, types.RoleTaker, types.PlatformWindows)
		b := cand(types.LanguageJavaScript, types.SkillBuilder, types.RoleTaker, types.PlatformMac)

		Convey("Then the overridden terms are used", func() {
			So(score(a, b), ShouldEqual, -10)
			So(score(a, a), ShouldEqual, 11)
		})
	})

	Convey("Given a scorer without options", t, func() {
		score := scoring.New()
		a := cand(types.LanguageOpen, types.SkillCreator, types.RoleProvider, types.PlatformMac)
		b := cand(types.LanguagePython, types.SkillCreator, types.RoleTaker, types.PlatformMac)

		Convey("Then it agrees with Compatibility", func() {
			So(score(a, b), ShouldEqual, scoring.Compatibility(a, b))
		})
	})
}
