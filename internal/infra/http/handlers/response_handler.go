package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vanguardcontact/data-server/internal/entity"
	"github.com/vanguardcontact/data-server/internal/infra/http/middleware"
	"github.com/vanguardcontact/data-server/internal/usecase"
)

type ResponseHandler struct {
	Directory  ActorLookup
	OutcomeUC  *usecase.RecordOutcomeUseCase
	AllocateUC *usecase.AllocateContactUseCase
}

func NewResponseHandler(directory ActorLookup, outcomeUC *usecase.RecordOutcomeUseCase, allocateUC *usecase.AllocateContactUseCase) *ResponseHandler {
	return &ResponseHandler{Directory: directory, OutcomeUC: outcomeUC, AllocateUC: allocateUC}
}

type recordOutcomeRequest struct {
	ActorID int64 `json:"actorId"`
	usecase.RecordOutcomeInput
}

type recordOutcomeResponse struct {
	Status  string          `json:"status"`
	Contact *entity.Contact `json:"contact,omitempty"`
}

// Handle records an outcome and, in the same round-trip, hands the actor
// their next contact for the same (reason, method).
// POST /contact-responses
func (h *ResponseHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req recordOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	actor, err := h.Directory.GetActor(r.Context(), req.ActorID)
	if err != nil {
		http.Error(w, "error resolving actor: "+err.Error(), http.StatusBadGateway)
		return
	}

	if err := h.OutcomeUC.Execute(r.Context(), actor, req.RecordOutcomeInput); err != nil {
		writeError(w, err)
		return
	}
	middleware.RecordOutcome(req.Action, req.Result)

	// A blocked actor's report still counts; they just get nothing back.
	if actor.IsBlocked {
		http.Error(w, "Forbidden: Actor has been blocked", http.StatusUnauthorized)
		return
	}

	resp := recordOutcomeResponse{Status: "recorded"}
	contact, err := h.AllocateUC.Execute(r.Context(), actor, req.Reason, req.Method)
	switch {
	case err == nil:
		middleware.RecordLeaseGranted(req.Reason, req.Method)
		resp.Contact = contact
	case errors.Is(err, usecase.ErrNoContactsAvailable):
		// The outcome is already durable; an empty pool is not a failure.
	default:
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}
