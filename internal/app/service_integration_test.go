package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/pairdesk/internal/adapters/mail"
	"github.com/okian/pairdesk/internal/adapters/repository"
	service "github.com/okian/pairdesk/internal/app"
	"github.com/okian/pairdesk/internal/matching"
	"github.com/okian/pairdesk/internal/seed"
	"github.com/okian/pairdesk/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("scheduled run takes a few seconds")
	}
	loc := losAngeles(t)

	Convey("Given a service matching every second", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// The minute may roll over before the first run, so both slots are booked.
		collector := matching.NewCollector(nil, matching.WithLocation(loc), matching.WithLogger(logger.Nop()))
		now := time.Now()
		store := repository.NewMemoryStore()
		So(seed.New(collector.SlotAt(now)).Seed(ctx, store, 4), ShouldBeNil)
		So(seed.New(collector.SlotAt(now.Add(time.Minute)), seed.WithUserBase(200000)).Seed(ctx, store, 4), ShouldBeNil)

		mailer := mail.NewConsoleMailer(logger.Nop(), mail.WithCapture())
		svc := service.New(
			service.WithStore(store),
			service.WithMailer(mailer),
			service.WithLocation(loc),
			service.WithWorkerCount(2),
			service.WithSchedule(service.JobMatch, "@every 1s"),
			service.WithSite(mail.Site{AppName: "Pairdesk", FrontendURL: "https://pairdesk.example"}),
			service.WithLogger(logger.Nop()),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the scheduler has run", func() {
			deadline := time.Now().Add(10 * time.Second)
			for len(mailer.Sent()) < 4 && time.Now().Before(deadline) {
				time.Sleep(100 * time.Millisecond)
			}

			Convey("Then pair confirmations were rendered and sent", func() {
				sent := mailer.Sent()
				So(len(sent), ShouldBeGreaterThanOrEqualTo, 4)
				for _, m := range sent {
					So(m.TemplateName, ShouldEqual, "pair_reminder")
					So(m.TextContent, ShouldContainSubstring, "https://pairdesk.example")
				}
			})

			Convey("Then the stats carry the last tick", func() {
				stats := svc.GetStats()
				So(stats["ticks"], ShouldBeGreaterThan, 0)
				So(stats, ShouldContainKey, "lastTick")
			})
		})
	})
}
