package handler

import (
	"context"
	"net/http"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/app"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/config"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/logger"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger.Init(cfg.AppEnv)

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL.
	// Vercel Cron calls /api/v1/scheduler/pass with CRON_SECRET as the bearer token.
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	mux = a.Router
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
