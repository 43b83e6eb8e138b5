package handler

import (
	"net/http"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
)

type PublicHandler struct {
	links  ports.LinkService
	clicks ports.ClickService
}

func NewPublicHandler(links ports.LinkService, clicks ports.ClickService) *PublicHandler {
	return &PublicHandler{links: links, clicks: clicks}
}

// Profile returns the active links of a user in display order.
func (h *PublicHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		writeError(w, r, domain.Invalid("username", "username missing"))
		return
	}

	profile, err := h.links.PublicProfile(r.Context(), username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Redirect records a click on an active link and sends the visitor to its
// target. The click is stored before redirecting so it is never lost to a
// cancelled request context.
func (h *PublicHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	target, err := h.clicks.Visit(r.Context(), id, clickMetadata(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// clickMetadata reads requester details, including the geo headers set by
// Vercel and Cloudflare edges.
func clickMetadata(r *http.Request) domain.ClickMetadata {
	country := r.Header.Get("X-Vercel-IP-Country")
	if country == "" {
		country = r.Header.Get("CF-IPCountry")
	}
	return domain.ClickMetadata{
		IP:        clientIP(r),
		Country:   country,
		City:      r.Header.Get("X-Vercel-IP-City"),
		Referrer:  r.Referer(),
		UserAgent: r.UserAgent(),
	}
}
