package rest

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

type synthesizeRequest struct {
	SeedIDs []string `json:"seed_ids"`
}

// SynthesizePlaylist handles POST /v1/playlists/synthesize
func (h *Handler) SynthesizePlaylist(w http.ResponseWriter, r *http.Request) {
	// 1. Decode Request
	var req synthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// 2. Call Service
	result, err := h.svc.Synthesize(r.Context(), req.SeedIDs)
	if err != nil {
		h.log.Warn().Err(err).Int("seed_count", len(req.SeedIDs)).Msg("synthesis failed")
		status, msg := statusForError(err)
		writeError(w, status, msg)
		return
	}

	// 3. Respond
	writeJSON(w, http.StatusOK, result)
}

// statusForError maps service errors to HTTP responses.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNoSeeds):
		return http.StatusBadRequest, "at least one resolvable seed track is required"
	case errors.Is(err, domain.ErrNoCandidates):
		return http.StatusUnprocessableEntity, "no candidates survived synthesis"
	}
	switch domain.KindOf(err) {
	case domain.KindRateLimited:
		return http.StatusServiceUnavailable, "upstream rate limited, try again later"
	case domain.KindUnavailable:
		return http.StatusBadGateway, "upstream unavailable"
	case domain.KindInvalid:
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "synthesis failed"
	}
}
