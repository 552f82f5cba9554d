package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/reviewhub/credential-service/internal/health"
	"github.com/reviewhub/credential-service/internal/http/handler"
	"github.com/reviewhub/credential-service/internal/http/middleware"
	"github.com/reviewhub/credential-service/internal/http/response"
)

const defaultBodyLimit = 64 << 10

type Dependencies struct {
	CredentialHandler *handler.CredentialHandler
	UserHandler       *handler.UserHandler
	CORSOrigins       []string
	BodyLimitBytes    int64
	Readiness         *health.ProbeRunner
	Logger            *slog.Logger
	EnableOTelHTTP    bool
}

func NewRouter(dep Dependencies) http.Handler {
	bodyLimit := dep.BodyLimitBytes
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(dep.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(bodyLimit))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireJSON)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", dep.CredentialHandler.Register)
			r.Post("/verify/resend", dep.CredentialHandler.ResendVerification)
			r.Post("/verify/confirm", dep.CredentialHandler.ConfirmEmail)
			r.Post("/password/forgot", dep.CredentialHandler.ForgotPassword)
			r.Post("/password/reset", dep.CredentialHandler.ResetPassword)
			r.Post("/login/check", dep.CredentialHandler.LoginCheck)
		})
		r.Get("/users/{id}", dep.UserHandler.Get)
		r.Post("/users/{id}/password", dep.UserHandler.ChangePassword)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
