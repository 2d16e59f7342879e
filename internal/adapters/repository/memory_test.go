package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/okian/pairdesk/internal/adapters/repository"
	"github.com/okian/pairdesk/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func() repository.Store { return repository.NewMemoryStore() })
}

func TestMemoryStoreConcurrentCommit(t *testing.T) {
	Convey("Given two unpaired appointments", t, func() {
		ctx := context.Background()
		s := repository.NewMemoryStore()
		appts, prefs := contractFixture()
		So(s.Insert(ctx, appts, prefs), ShouldBeNil)

		Convey("When the same pair is committed concurrently", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			ok := 0
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if s.CommitPair(ctx, appts[0], appts[1], "A") == nil {
						mu.Lock()
						ok++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one commit wins", func() {
				So(ok, ShouldEqual, 1)
				a, found := s.Get("apt-1")
				So(found, ShouldBeTrue)
				So(a.IsPaired, ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := s.ListUnpaired(cctx, model.Slot{Date: "18-10-2026", Start: "10:00"})

			Convey("Then the call fails fast", func() {
				So(err, ShouldEqual, context.Canceled)
				So(s.Count(), ShouldEqual, 4)
			})
		})
	})
}
