package history

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/wsupload/service/internal/logger"
	"github.com/wsupload/service/internal/response"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

var errBadLimit = errors.New("limit must be a positive integer")

// Handler holds HTTP handlers for the upload history endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new history Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List godoc
//
//	@Summary		List upload attempts
//	@Description	Returns the most recent upload attempts, newest first.
//	@Tags			uploads
//	@Produce		json
//	@Param			limit	query		int	false	"Maximum number of attempts (default 50, max 500)"
//	@Success		200		{object}	response.Envelope{data=[]Attempt}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/api/v1/uploads [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	attempts, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		logger.Log.Error().Err(err).Msg("history: list upload attempts")
		response.InternalError(w)
		return
	}
	if attempts == nil {
		attempts = []Attempt{}
	}

	response.OK(w, attempts)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errBadLimit
	}
	if n > maxLimit {
		n = maxLimit
	}
	return n, nil
}
