package model_test

import (
	"errors"
	"testing"

	"github.com/okian/pairdesk/internal/domain/model"
	"github.com/okian/pairdesk/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewCandidate(t *testing.T) {
	Convey("Given an appointment and its owner's preferences", t, func() {
		appt := model.Appointment{
			ID:        "apt-1",
			UserID:    7,
			Date:      "18-10-2026",
			StartTime: "10:00",
			Contact:   model.Contact{Name: "Ada", Email: "ada@example.com"},
		}
		prefs := model.Preferences{
			UserID:            7,
			Language:          types.LanguagePython,
			SkillLevel:        types.SkillBuilder,
			PartnerSkillLevel: types.SkillCreator,
			ProjectRole:       types.RoleTaker,
			Platform:          types.PlatformMac,
		}

		Convey("When building a candidate", func() {
			c := model.NewCandidate(appt, prefs)

			Convey("Then identity, contact and slot come from the appointment", func() {
				So(c.SubjectID, ShouldEqual, 7)
				So(c.RequestID, ShouldEqual, "apt-1")
				So(c.Contact.Email, ShouldEqual, "ada@example.com")
				So(c.Slot, ShouldResemble, model.Slot{Date: "18-10-2026", Start: "10:00"})
			})

			Convey("Then attributes come from the preferences", func() {
				So(c.Language, ShouldEqual, types.LanguagePython)
				So(c.PartnerSkillLevel, ShouldEqual, types.SkillCreator)
				So(c.Platform, ShouldEqual, types.PlatformMac)
			})
		})
	})
}

func TestOutcomeMembers(t *testing.T) {
	Convey("Given pair and solo outcomes", t, func() {
		a := model.Candidate{RequestID: "a"}
		b := model.Candidate{RequestID: "b"}

		Convey("Then a pair has two members and a solo one", func() {
			So(model.NewPair(a, b).Members(), ShouldHaveLength, 2)
			So(model.NewSolo(a).Members(), ShouldHaveLength, 1)
			So(model.NewSolo(a).Second, ShouldBeNil)
			So(model.Pair.String(), ShouldEqual, "pair")
			So(model.Solo.String(), ShouldEqual, "solo")
		})
	})
}

func TestPreferencesNormalize(t *testing.T) {
	Convey("Given preferences stored in mixed case", t, func() {
		p := model.Preferences{
			UserID:      3,
			Language:    "open",
			SkillLevel:  " Builder",
			ProjectRole: "provider",
			Platform:    "Windows",
		}

		Convey("When normalizing", func() {
			got, err := p.Normalize()

			Convey("Then every value is canonical", func() {
				So(err, ShouldBeNil)
				So(got.Language, ShouldEqual, types.LanguageOpen)
				So(got.SkillLevel, ShouldEqual, types.SkillBuilder)
				So(got.PartnerSkillLevel, ShouldBeEmpty)
				So(got.ProjectRole, ShouldEqual, types.RoleProvider)
				So(got.Platform, ShouldEqual, types.PlatformWindows)
			})
		})
	})

	Convey("Given preferences with an unknown platform", t, func() {
		p := model.Preferences{UserID: 4, Language: "PYTHON", SkillLevel: "CREATOR", ProjectRole: "TAKER", Platform: "linux"}

		Convey("Then normalizing fails with ErrUnknownValue", func() {
			_, err := p.Normalize()
			So(errors.Is(err, types.ErrUnknownValue), ShouldBeTrue)
		})
	})
}
