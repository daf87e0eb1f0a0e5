package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/squares/internal/config"
	"github.com/okian/squares/pkg/logger"
)

const boards = `pools:
  - id: office
    name: Office
    axis_a: [0, 1, 2, 3, 4, 5, 6, 7, 8, 9]
    axis_b: [0, 1, 2, 3, 4, 5, 6, 7, 8, 9]
    cells:
      "7,3": [Pat]
`

func TestWiring(t *testing.T) {
	convey.Convey("Given the default configuration and a boards file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "boards.yaml")
		convey.So(os.WriteFile(path, []byte(boards), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.BoardsFile = path

		convey.Convey("When the service is built and started", func() {
			svc, err := buildService(cfg, logger.NewNop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			convey.Reset(func() { _ = svc.Stop(ctx) })
			mux := newMux(ctx, svc)

			convey.Convey("Then the API and docs are routed", func() {
				for _, target := range []string{"/pools", "/pools/office/leader", "/stats", "/healthz", "/openapi.yaml", "/api-docs"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("Then the service metrics updater reads the stats", func() {
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
				convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When NATS is unreachable", func() {
			cfg.NATSURL = "nats://127.0.0.1:1"
			_, err := buildService(cfg, logger.NewNop())

			convey.Convey("Then building fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
