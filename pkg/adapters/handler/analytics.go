package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
)

type AnalyticsHandler struct {
	service ports.AnalyticsService
	users   ports.UserService
	baseURL string
}

func NewAnalyticsHandler(service ports.AnalyticsService, users ports.UserService, baseURL string) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, users: users, baseURL: baseURL}
}

// Get Analytics. from/to accept RFC 3339 or YYYY-MM-DD; fill=true asks for
// zero-count days in the timeline.
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.Unauthenticated("missing credentials"))
		return
	}

	q := r.URL.Query()
	from, err := parseBound("from", q.Get("from"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := parseBound("to", q.Get("to"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	fill, _ := strconv.ParseBool(q.Get("fill"))

	data, err := h.service.ComputeAnalytics(r.Context(), userID, domain.AnalyticsOptions{
		From:     from,
		To:       to,
		FillGaps: fill,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, data)
}

// QROptions returns the public profile URL with the requested rendering
// options. Rendering itself happens on the client.
func (h *AnalyticsHandler) QROptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.Unauthenticated("missing credentials"))
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "png"
	}
	if format != "png" && format != "svg" {
		writeError(w, r, domain.Invalid("format", "format must be png or svg"))
		return
	}

	size := 256
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 64 || v > 1024 {
			writeError(w, r, domain.Invalid("size", "size must be between 64 and 1024"))
			return
		}
		size = v
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"url":    h.baseURL + "/u/" + user.Username,
		"format": format,
		"size":   size,
	})
}

func parseBound(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, domain.Invalid(field, "must be RFC 3339 or YYYY-MM-DD")
}
