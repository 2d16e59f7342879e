package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/pairdesk/internal/adapters/mail"
	"github.com/okian/pairdesk/internal/adapters/repository"
	"github.com/okian/pairdesk/internal/config"
	"github.com/okian/pairdesk/internal/matching"
	"github.com/okian/pairdesk/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	logger.SetOutput(io.Discard)
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		root := newRootCmd()

		convey.Convey("Then serve, tick and seed are registered", func() {
			names := map[string]bool{}
			for _, c := range root.Commands() {
				names[c.Name()] = true
			}
			convey.So(names["serve"], convey.ShouldBeTrue)
			convey.So(names["tick"], convey.ShouldBeTrue)
			convey.So(names["seed"], convey.ShouldBeTrue)
			convey.So(root.PersistentFlags().Lookup("config"), convey.ShouldNotBeNil)
		})
	})
}

func TestLoadConfigFlags(t *testing.T) {
	convey.Convey("Given a YAML file passed with --config", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "pairdesk.yaml")
		convey.So(os.WriteFile(path, []byte("addr: \":7070\"\nstation_overflow: fail\n"), 0o600), convey.ShouldBeNil)
		defer func() { _ = os.Unsetenv("PAIRDESK_CONFIG") }()

		convey.Convey("When loading the configuration", func() {
			cfg, err := loadConfig(context.Background(), &rootFlags{configPath: path})

			convey.Convey("Then the file values are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.StationOverflow, convey.ShouldEqual, "fail")
			})
		})
	})
}

func TestWiring(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("Then the memory store and console mailer are used", func() {
			st, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			_, isMemory := st.(*repository.MemoryStore)
			convey.So(isMemory, convey.ShouldBeTrue)

			_, isConsole := newMailer(cfg, logger.Nop()).(*mail.ConsoleMailer)
			convey.So(isConsole, convey.ShouldBeTrue)
		})

		convey.Convey("Then sendgrid is selected by mail_provider", func() {
			cfg.MailProvider = "sendgrid"
			cfg.SendGridAPIKey = "SG.test"
			_, isSendGrid := newMailer(cfg, logger.Nop()).(*mail.SendGridMailer)
			convey.So(isSendGrid, convey.ShouldBeTrue)
		})

		convey.Convey("Then an unknown store driver is rejected", func() {
			cfg.StoreDriver = "sqlite"
			_, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then service options are built without a lock", func() {
			opts, cleanup, err := serviceOptions(ctx, cfg, repository.NewMemoryStore(), logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(opts), convey.ShouldBeGreaterThan, 0)
			cleanup()
		})

		convey.Convey("Then a bad timezone is reported", func() {
			cfg.Timezone = "Mars/Olympus"
			_, _, err := serviceOptions(ctx, cfg, repository.NewMemoryStore(), logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestTickCommand(t *testing.T) {
	convey.Convey("Given the tick command on an empty memory store", t, func() {
		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs([]string{"tick", "--at", "2026-10-18T09:00:00-07:00"})

		convey.Convey("When it runs", func() {
			err := root.Execute()

			convey.Convey("Then it prints the report for the next slot", func() {
				convey.So(err, convey.ShouldBeNil)
				var rep matching.TickReport
				convey.So(json.Unmarshal(out.Bytes(), &rep), convey.ShouldBeNil)
				convey.So(rep.Slot, convey.ShouldEqual, "18-10-2026 10:00")
				convey.So(rep.Candidates, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When --at is malformed", func() {
			root.SetArgs([]string{"tick", "--at", "tomorrow"})
			err := root.Execute()

			convey.Convey("Then it fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestSeedCommand(t *testing.T) {
	convey.Convey("Given the seed command on the memory store", t, func() {
		root := newRootCmd()
		root.SetArgs([]string{"seed", "--count", "5", "--reset", "--at", "2026-10-18T09:00:00-07:00"})

		convey.Convey("Then it succeeds", func() {
			convey.So(root.Execute(), convey.ShouldBeNil)
		})
	})
}
