package handler

import (
	"context"
	"net/http"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/config"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
)

// Services bundles what the router dispatches to.
type Services struct {
	Links     ports.LinkService
	Clicks    ports.ClickService
	Analytics ports.AnalyticsService
	Scheduler ports.SchedulerService
	Users     ports.UserService
	// Health is optional; when set, /healthz reports its error as 503.
	Health func(ctx context.Context) error
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services) http.Handler {
	h := NewHTTPHandler(svc.Links)
	ah := NewAnalyticsHandler(svc.Analytics, svc.Users, cfg.BaseURL)
	ph := NewPublicHandler(svc.Links, svc.Clicks)
	sh := NewSchedulerHandler(svc.Scheduler)
	authHandler := NewAuthHandler(cfg, svc.Users)

	mw := NewMiddleware(cfg)
	clickLimiter := NewIPRateLimiter(cfg.ClickRatePerMinute, cfg.ClickRatePerMinute/4)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Health != nil {
			if err := svc.Health(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "degraded"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /u/{username}", ph.Profile)
	mux.Handle("GET /l/{id}", clickLimiter.Middleware(http.HandlerFunc(ph.Redirect)))
	mux.HandleFunc("GET /auth/google/login", authHandler.Login)
	mux.HandleFunc("GET /auth/google/callback", authHandler.Callback)
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Trigger source for the lifecycle scheduler, guarded by the shared secret.
	// Vercel Cron only issues GET requests.
	pass := mw.RequireCronSecret(http.HandlerFunc(sh.RunPass))
	mux.Handle("POST /api/v1/scheduler/pass", pass)
	mux.Handle("GET /api/v1/scheduler/pass", pass)

	// Protected Routes
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("GET /api/v1/links", h.List)
	protectedMux.HandleFunc("POST /api/v1/links", h.Create)
	protectedMux.HandleFunc("PUT /api/v1/links/order", h.Reorder)
	protectedMux.HandleFunc("PATCH /api/v1/links/{id}", h.Update)
	protectedMux.HandleFunc("DELETE /api/v1/links/{id}", h.Delete)
	protectedMux.HandleFunc("GET /api/v1/analytics", ah.Get)
	protectedMux.HandleFunc("GET /api/v1/qr-options", ah.QROptions)

	// protectedMux holds full paths, so mounting it on the prefix dispatches as is.
	// The more specific scheduler patterns above win over this prefix.
	mux.Handle("/api/v1/", mw.AuthMiddleware(protectedMux))

	return RequestLogger(mux)
}
