package handler

import (
	"net/http"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
)

type SchedulerHandler struct {
	service ports.SchedulerService
	now     func() time.Time
}

func NewSchedulerHandler(service ports.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{service: service, now: time.Now}
}

type passResponse struct {
	Published    int                       `json:"published"`
	PublishedIDs []int64                   `json:"publishedIds"`
	Expired      int                       `json:"expired"`
	ExpiredIDs   []int64                   `json:"expiredIds"`
	Failed       []domain.FailedTransition `json:"failed,omitempty"`
	Error        *domain.Error             `json:"error,omitempty"`
}

// RunPass executes one lifecycle pass at the current time. A partial failure
// still returns the published/expired partition next to the failed ids.
func (h *SchedulerHandler) RunPass(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.RunPass(r.Context(), h.now().UTC())
	if result == nil {
		writeError(w, r, err)
		return
	}

	resp := passResponse{
		Published:    len(result.PublishedIDs),
		PublishedIDs: result.PublishedIDs,
		Expired:      len(result.ExpiredIDs),
		ExpiredIDs:   result.ExpiredIDs,
		Failed:       result.Failed,
	}
	status := http.StatusOK
	if err != nil {
		appErr := domain.AsError(err)
		resp.Error = &domain.Error{Kind: appErr.Kind, Message: appErr.Message}
		status = statusFor(appErr.Kind)
	}
	writeJSON(w, status, resp)
}
