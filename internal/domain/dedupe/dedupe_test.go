package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/pairdesk/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a key is new", func() {
			seen := d.SeenAndRecord(ctx, "pair_reminder:apt-1:18-10-2026")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key was already seen", func() {
			d.SeenAndRecord(ctx, "k")
			seen := d.SeenAndRecord(ctx, "k")

			Convey("Then it reports a duplicate", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "k")
			d.Unrecord(ctx, "k")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "k"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		Convey("When recording past capacity", func() {
			for _, k := range []string{"a", "b", "c", "d"} {
				d.SeenAndRecord(ctx, k)
			}

			Convey("Then the oldest key is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "d"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

		Convey("When recording many keys", func() {
			for i := 0; i < 20000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i))
			}

			Convey("Then nothing is evicted", func() {
				So(d.Size(), ShouldEqual, 20000)
			})
		})
	})

	Convey("Given concurrent writers", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When each key is recorded by two goroutines", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			fresh := 0
			for i := 0; i < 100; i++ {
				for j := 0; j < 2; j++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						if !d.SeenAndRecord(ctx, fmt.Sprintf("k-%d", i)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}(i)
				}
			}
			wg.Wait()

			Convey("Then each key is new exactly once", func() {
				So(fresh, ShouldEqual, 100)
				So(d.Size(), ShouldEqual, 100)
			})
		})
	})
}
