package scheduler_test

import (
	"context"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/okian/pairdesk/internal/scheduler"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRedisLockerIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start redis: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	client, err := scheduler.NewRedisClient(ctx, addr, "", 0)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	locker := scheduler.NewRedisLocker(client)
	t.Cleanup(func() { _ = locker.Close() })

	Convey("Given a redis locker", t, func() {
		Convey("When the same key is locked twice", func() {
			first, err1 := locker.TryLock(ctx, "match:202610181600", time.Second)
			second, err2 := locker.TryLock(ctx, "match:202610181600", time.Second)

			Convey("Then only the first caller gets it", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldBeTrue)
				So(second, ShouldBeFalse)
			})
		})

		Convey("When the lock expires", func() {
			ok, err := locker.TryLock(ctx, "feedback:202610181900", 200*time.Millisecond)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			time.Sleep(400 * time.Millisecond)
			again, err := locker.TryLock(ctx, "feedback:202610181900", time.Second)

			Convey("Then it can be taken again", func() {
				So(err, ShouldBeNil)
				So(again, ShouldBeTrue)
			})
		})
	})
}
