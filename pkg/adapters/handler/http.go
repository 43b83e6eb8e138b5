package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
)

type HTTPHandler struct {
	service ports.LinkService
}

func NewHTTPHandler(service ports.LinkService) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// CreateLinkRequest payload
type CreateLinkRequest struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Icon        *string    `json:"icon,omitempty"`
	EmbedType   *string    `json:"embed_type,omitempty"`
	Active      *bool      `json:"active,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateLinkRequest payload. A JSON null for scheduled_at / expires_at clears
// the timestamp; an absent key leaves it untouched.
type UpdateLinkRequest struct {
	Title       *string         `json:"title,omitempty"`
	URL         *string         `json:"url,omitempty"`
	Icon        *string         `json:"icon,omitempty"`
	EmbedType   *string         `json:"embed_type,omitempty"`
	Active      *bool           `json:"active,omitempty"`
	ScheduledAt json.RawMessage `json:"scheduled_at,omitempty"`
	ExpiresAt   json.RawMessage `json:"expires_at,omitempty"`
}

// ReorderRequest payload
type ReorderRequest struct {
	IDs []int64 `json:"ids"`
}

// Create Link
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.Unauthenticated("missing credentials"))
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.Invalid("body", "invalid request body"))
		return
	}

	// Links are live immediately unless the caller says otherwise.
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	link, err := h.service.AppendLink(r.Context(), userID, domain.NewLink{
		Title:       req.Title,
		URL:         req.URL,
		Icon:        req.Icon,
		EmbedType:   req.EmbedType,
		Active:      active,
		ScheduledAt: req.ScheduledAt,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, link)
}

// List Links in display order with click counts
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.Unauthenticated("missing credentials"))
		return
	}

	links, err := h.service.ListLinks(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  links,
		"total": len(links),
	})
}

// Reorder Links
func (h *HTTPHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.Unauthenticated("missing credentials"))
		return
	}

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.Invalid("body", "invalid request body"))
		return
	}

	if err := h.service.Reorder(r.Context(), userID, req.IDs); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Update Link
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.Unauthenticated("missing credentials"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.Invalid("body", "invalid request body"))
		return
	}

	patch := domain.LinkPatch{
		Title:     req.Title,
		URL:       req.URL,
		Icon:      req.Icon,
		EmbedType: req.EmbedType,
		Active:    req.Active,
	}
	if patch.ScheduledAt, patch.ClearScheduledAt, err = optionalTime("scheduled_at", req.ScheduledAt); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.ExpiresAt, patch.ClearExpiresAt, err = optionalTime("expires_at", req.ExpiresAt); err != nil {
		writeError(w, r, err)
		return
	}

	link, err := h.service.UpdateLink(r.Context(), userID, id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// Delete Link
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.Unauthenticated("missing credentials"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteLink(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("id", "invalid link id")
	}
	return id, nil
}

// optionalTime decodes a nullable timestamp field. clear is true for an
// explicit JSON null.
func optionalTime(field string, raw json.RawMessage) (t *time.Time, clear bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var v time.Time
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, domain.Invalid(field, "must be an RFC 3339 timestamp")
	}
	return &v, false, nil
}
