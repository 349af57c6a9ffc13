package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vanguardcontact/data-server/internal/entity"
	"github.com/vanguardcontact/data-server/internal/infra/http/middleware"
	"github.com/vanguardcontact/data-server/internal/usecase"
)

// ActorLookup resolves an actor through the external directory.
type ActorLookup interface {
	GetActor(ctx context.Context, actorID int64) (*entity.Actor, error)
}

type ContactHandler struct {
	Directory  ActorLookup
	AllocateUC *usecase.AllocateContactUseCase
}

func NewContactHandler(directory ActorLookup, allocateUC *usecase.AllocateContactUseCase) *ContactHandler {
	return &ContactHandler{Directory: directory, AllocateUC: allocateUC}
}

// Handle leases the best available contact to the requesting actor.
// GET /contacts?actorId=&contactReason=&contactMethod=
func (h *ContactHandler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, err := strconv.ParseInt(r.URL.Query().Get("actorId"), 10, 64)
	if err != nil {
		http.Error(w, "actorId must be an integer", http.StatusBadRequest)
		return
	}

	actor, err := h.Directory.GetActor(r.Context(), actorID)
	if err != nil {
		http.Error(w, "error resolving actor: "+err.Error(), http.StatusBadGateway)
		return
	}
	if actor.IsBlocked {
		http.Error(w, "Forbidden: Actor has been blocked", http.StatusUnauthorized)
		return
	}

	reason := r.URL.Query().Get("contactReason")
	method := r.URL.Query().Get("contactMethod")

	contact, err := h.AllocateUC.Execute(r.Context(), actor, reason, method)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.RecordLeaseGranted(reason, method)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(contact)
}

// writeError maps the error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch usecase.ErrorCode(err) {
	case usecase.CodeInvalidArgument:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case usecase.CodeNoContactsAvailable:
		// Recoverable: the caller should retry later or switch pools.
		http.Error(w, err.Error(), http.StatusNotFound)
	case usecase.CodeInvalidTransition, usecase.CodeInvalidContactReason, usecase.CodeInvalidContactMethod:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
