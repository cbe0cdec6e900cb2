package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/kozaktomas/face-portal/internal/facedelete"
	"github.com/kozaktomas/face-portal/internal/metrics"
	"github.com/kozaktomas/face-portal/internal/web/middleware"
)

// DeleteHandler serves delete-by-name.
type DeleteHandler struct {
	deleter *facedelete.Deleter
}

// NewDeleteHandler creates a new delete handler.
func NewDeleteHandler(deleter *facedelete.Deleter) *DeleteHandler {
	return &DeleteHandler{deleter: deleter}
}

type deleteByNameRequest struct {
	Name string `json:"name"`
}

type deleteByNameResponse struct {
	Outcome                  string               `json:"outcome"`
	Message                  string               `json:"message"`
	SuccessfullyDeletedCount int                  `json:"successfully_deleted_count"`
	FailedDeletionsCount     int                  `json:"failed_deletions_count,omitempty"`
	Failures                 []facedelete.Failure `json:"failures,omitempty"`
}

// newDeleteByNameResponse renders a delete-by-name result.
func newDeleteByNameResponse(result *facedelete.Result) deleteByNameResponse {
	resp := deleteByNameResponse{
		Outcome:                  result.Outcome.String(),
		SuccessfullyDeletedCount: result.Deleted,
	}

	switch result.Outcome {
	case facedelete.NoneMatched:
		resp.Message = fmt.Sprintf("No faces found with name '%s' to delete.", result.Name)
	case facedelete.AllDeleted:
		resp.Message = fmt.Sprintf("Successfully deleted %d entries for name '%s'.", result.Deleted, result.Name)
	default:
		resp.Message = fmt.Sprintf("Deletion attempt for name '%s' completed with some issues.", result.Name)
		resp.FailedDeletionsCount = len(result.Failures)
		resp.Failures = result.Failures
	}
	return resp
}

// DeleteByName deletes every face entry registered under the name in the JSON body.
func (h *DeleteHandler) DeleteByName(w http.ResponseWriter, r *http.Request) {
	uid := middleware.IdentityFromContext(r.Context())

	var req deleteByNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		log.Printf("[proxy delete by name] 'name' not found in JSON body")
		respondError(w, http.StatusBadRequest, "'name' not found in JSON body")
		return
	}

	log.Printf("[proxy delete by name] Deleting faces named %s", sanitizeForLog(req.Name))

	ctx := context.WithoutCancel(r.Context())
	result, err := h.deleter.DeleteByName(ctx, uid, req.Name)
	if err != nil {
		if facedelete.IsInputError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[proxy delete by name] Error listing faces from backend API: %v", err)
		metrics.ObserveDeleteByName("list_failed")
		respondUpstreamError(w, err, deleteListMessages)
		return
	}

	for _, f := range result.Failures {
		log.Printf("[proxy delete by name] Failed to delete face ID %s: status %d: %s",
			f.ID, f.Status, sanitizeForLog(f.Error))
	}
	metrics.ObserveDeleteByName(result.Outcome.String())

	respondJSON(w, result.HTTPStatus(), newDeleteByNameResponse(result))
}
