package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/pairdesk/internal/adapters/repository"
	"github.com/okian/pairdesk/internal/domain/model"
	"github.com/okian/pairdesk/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var contractSlot = model.Slot{Date: "18-10-2026", Start: "10:00"} //nolint:gochecknoglobals // fixture

func contractFixture() ([]model.Appointment, []model.Preferences) {
	mk := func(id string, user int64, start string) model.Appointment {
		return model.Appointment{
			ID: id, UserID: user, Date: contractSlot.Date, StartTime: start, EndTime: "11:00", Duration: 60,
			Contact: model.Contact{Name: id, Email: id + "@example.com"},
		}
	}
	appts := []model.Appointment{
		mk("apt-1", 1, "10:00"),
		mk("apt-2", 2, "10:00"),
		mk("apt-3", 3, "10:00"),
		mk("apt-4", 4, "12:00"),
	}
	prefs := []model.Preferences{
		{UserID: 1, Language: types.LanguagePython, SkillLevel: types.SkillBuilder, PartnerSkillLevel: types.SkillBuilder, ProjectRole: types.RoleTaker, Platform: types.PlatformMac},
		{UserID: 2, Language: types.LanguageOpen, SkillLevel: types.SkillCreator, PartnerSkillLevel: types.SkillExplorer, ProjectRole: types.RoleProvider, Platform: types.PlatformWindows},
	}
	return appts, prefs
}

// runStoreContract checks behavior every Store backend must share.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func() repository.Store) {
	ctx := context.Background()

	Convey("Given a store seeded with one slot", t, func() {
		s := newStore()
		appts, prefs := contractFixture()
		So(s.Insert(ctx, appts, prefs), ShouldBeNil)

		Convey("When listing the unpaired appointments of the slot", func() {
			got, err := s.ListUnpaired(ctx, contractSlot)

			Convey("Then only the slot's rows come back in insertion order", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 3)
				So(got[0].ID, ShouldEqual, "apt-1")
				So(got[1].ID, ShouldEqual, "apt-2")
				So(got[2].ID, ShouldEqual, "apt-3")
				So(got[0].Contact.Email, ShouldEqual, "apt-1@example.com")
			})
		})

		Convey("When reading preferences", func() {
			p, err := s.GetPreferences(ctx, 2)
			_, missing := s.GetPreferences(ctx, 3)

			Convey("Then known users resolve and unknown ones are ErrNotFound", func() {
				So(err, ShouldBeNil)
				So(p.Language, ShouldEqual, types.LanguageOpen)
				So(p.PartnerSkillLevel, ShouldEqual, types.SkillExplorer)
				So(errors.Is(missing, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When committing a pair", func() {
			err := s.CommitPair(ctx, appts[0], appts[1], "A")
			got, _ := s.ListByDate(ctx, contractSlot.Date)

			Convey("Then both sides reference each other at the same station", func() {
				So(err, ShouldBeNil)
				So(got[0].IsPaired, ShouldBeTrue)
				So(got[0].Station, ShouldEqual, "A")
				So(got[0].PairedAppointmentID, ShouldEqual, "apt-2")
				So(got[0].PairedUserID, ShouldEqual, 2)
				So(got[1].IsPaired, ShouldBeTrue)
				So(got[1].Station, ShouldEqual, "A")
				So(got[1].PairedAppointmentID, ShouldEqual, "apt-1")
				So(got[1].PairedUserID, ShouldEqual, 1)
			})

			Convey("Then they leave the unpaired pool", func() {
				left, err := s.ListUnpaired(ctx, contractSlot)
				So(err, ShouldBeNil)
				So(left, ShouldHaveLength, 1)
				So(left[0].ID, ShouldEqual, "apt-3")
			})

			Convey("Then replaying the commit changes nothing", func() {
				again := s.CommitPair(ctx, appts[0], appts[1], "B")
				So(errors.Is(again, repository.ErrAlreadyPaired), ShouldBeTrue)
				got, _ := s.ListByDate(ctx, contractSlot.Date)
				So(got[0].Station, ShouldEqual, "A")
			})

			Convey("Then pairing one side with a third fails and leaves the third unpaired", func() {
				again := s.CommitPair(ctx, appts[2], appts[0], "C")
				So(errors.Is(again, repository.ErrAlreadyPaired), ShouldBeTrue)
				left, _ := s.ListUnpaired(ctx, contractSlot)
				So(left, ShouldHaveLength, 1)
				So(left[0].Station, ShouldEqual, "")
			})
		})

		Convey("When assigning a solo station", func() {
			err := s.AssignStation(ctx, "apt-3", "B")
			left, _ := s.ListUnpaired(ctx, contractSlot)

			Convey("Then the appointment stays unpaired with its station", func() {
				So(err, ShouldBeNil)
				So(left, ShouldHaveLength, 3)
				So(left[2].Station, ShouldEqual, "B")
				So(left[2].IsPaired, ShouldBeFalse)
			})

			Convey("Then unknown and paired appointments are rejected", func() {
				So(errors.Is(s.AssignStation(ctx, "nope", "C"), repository.ErrNotFound), ShouldBeTrue)
				So(s.CommitPair(ctx, appts[0], appts[1], "A"), ShouldBeNil)
				So(errors.Is(s.AssignStation(ctx, "apt-1", "C"), repository.ErrAlreadyPaired), ShouldBeTrue)
			})
		})

		Convey("When listing by date", func() {
			got, err := s.ListByDate(ctx, contractSlot.Date)
			none, _ := s.ListByDate(ctx, "19-10-2026")

			Convey("Then every appointment of the day is returned", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 4)
				So(none, ShouldBeEmpty)
			})
		})

		Reset(func() {
			_ = s.Close()
		})
	})
}
