package station_test

import (
	"errors"
	"testing"

	"github.com/okian/pairdesk/internal/domain/station"
	"github.com/smartystreets/goconvey/convey"
)

func TestAllocatorLabel(t *testing.T) {
	convey.Convey("Given the extend policy", t, func() {
		a := station.Allocator{Policy: station.PolicyExtend}

		convey.Convey("Then the first 26 indexes map to A..Z", func() {
			first, err := a.Label(0)
			convey.So(err, convey.ShouldBeNil)
			convey.So(first, convey.ShouldEqual, "A")
			second, _ := a.Label(1)
			convey.So(second, convey.ShouldEqual, "B")
			last, _ := a.Label(25)
			convey.So(last, convey.ShouldEqual, "Z")
		})

		convey.Convey("Then later indexes continue like spreadsheet columns", func() {
			for i, want := range map[int]string{26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"} {
				got, err := a.Label(i)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
			convey.So(a.Check(100), convey.ShouldBeNil)
		})

		convey.Convey("Then a negative index is rejected", func() {
			_, err := a.Label(-1)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given the fail policy", t, func() {
		a := station.Allocator{Policy: station.PolicyFail}

		convey.Convey("Then Z is the last label", func() {
			z, err := a.Label(25)
			convey.So(err, convey.ShouldBeNil)
			convey.So(z, convey.ShouldEqual, "Z")

			_, err = a.Label(26)
			convey.So(errors.Is(err, station.ErrOverflow), convey.ShouldBeTrue)
		})

		convey.Convey("Then Check rejects more than 26 outcomes", func() {
			convey.So(a.Check(26), convey.ShouldBeNil)
			convey.So(errors.Is(a.Check(27), station.ErrOverflow), convey.ShouldBeTrue)
		})
	})
}

func TestParsePolicy(t *testing.T) {
	convey.Convey("Given policy names", t, func() {
		convey.Convey("Then known names parse and empty means extend", func() {
			p, err := station.ParsePolicy("")
			convey.So(err, convey.ShouldBeNil)
			convey.So(p, convey.ShouldEqual, station.PolicyExtend)
			p, err = station.ParsePolicy("FAIL")
			convey.So(err, convey.ShouldBeNil)
			convey.So(p, convey.ShouldEqual, station.PolicyFail)
			_, err = station.ParsePolicy("wrap")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
