// Package httptransport assembles the public router from the feature
// handlers and the shared middleware chain.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	classroomhandler "github.com/ahmadsobohhh/UnityPlatform/internal/classroom/handler"
	identityhandler "github.com/ahmadsobohhh/UnityPlatform/internal/identity/handler"
	"github.com/ahmadsobohhh/UnityPlatform/internal/platform/metrics"
	"github.com/ahmadsobohhh/UnityPlatform/internal/platform/middleware"
	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/httputil"
)

const requestTimeout = 30 * time.Second

// NewRouter wires all public endpoints behind the shared middleware chain.
func NewRouter(
	identity *identityhandler.Handler,
	classrooms *classroomhandler.Handler,
	logger *slog.Logger,
	m *metrics.Metrics,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)
	if m != nil {
		r.Use(m.LatencyMiddleware)
	}

	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	identity.Register(r)
	classrooms.Register(r)

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
