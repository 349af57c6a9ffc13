package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vanguardcontact/data-server/internal/entity"
)

// AllocateContactUseCase hands the best available contact to a single
// requesting actor and marks the person unavailable to everyone else.
type AllocateContactUseCase struct {
	Pool        *QueuePool
	Store       ContactStatusStoreInterface
	Recorder    ActionRecorderInterface
	Errors      ErrorRecorderInterface
	LeaseWindow time.Duration
}

func NewAllocateContactUseCase(pool *QueuePool, store ContactStatusStoreInterface, recorder ActionRecorderInterface, errors ErrorRecorderInterface, leaseWindow time.Duration) *AllocateContactUseCase {
	return &AllocateContactUseCase{
		Pool:        pool,
		Store:       store,
		Recorder:    recorder,
		Errors:      errors,
		LeaseWindow: leaseWindow,
	}
}

func (uc *AllocateContactUseCase) Execute(ctx context.Context, actor *entity.Actor, reasonStr, methodStr string) (*entity.Contact, error) {
	// Validate before any I/O.
	reason, ok := entity.ParseContactReason(reasonStr)
	if !ok {
		return nil, NewDomainError(CodeInvalidArgument, fmt.Sprintf("%q is not a valid contact reason", reasonStr))
	}
	method, ok := entity.ParseContactMethod(methodStr)
	if !ok {
		return nil, NewDomainError(CodeInvalidArgument, fmt.Sprintf("%q is not a valid contact method", methodStr))
	}

	refilled := false
	for {
		contact, ok := uc.Pool.Pop(reason, method)
		if !ok {
			if refilled {
				return nil, ErrNoContactsAvailable
			}
			if err := uc.Pool.Refill(ctx, reason, method); err != nil {
				uc.Errors.Record(ctx, entity.NewAppError("usecase/allocate_contact", "Execute", "database error refilling prefetch queue", err))
				return nil, NewTechnicalError(CodeStorageError, "refilling contact queue", err)
			}
			refilled = true
			continue
		}

		// The queue entry is a stale snapshot; another instance may have
		// leased the person since the refill. Re-check against the store.
		status, err := uc.Store.GetStatus(ctx, contact.PersonID)
		if err != nil {
			uc.Errors.Record(ctx, entity.NewAppError("usecase/allocate_contact", "Execute", "database error re-checking lease freshness", err))
			return nil, NewTechnicalError(CodeStorageError, "checking contact status", err)
		}
		if status.Leased(time.Now(), uc.LeaseWindow) {
			// Discard and move on. The entry is not requeued; it comes
			// back naturally on a later refill once the lease expires.
			continue
		}

		requested := entity.NewContactAction(entity.ActionContactRequested, actor, reason, method, entity.ResultContactRequested, entity.ActionDetail{})
		if err := uc.Recorder.Record(ctx, requested); err != nil {
			return nil, err
		}

		// The leased event goes out before the lease write lands. The
		// broadcast is the primary cross-campaign defense; committing
		// after publishing narrows the window in which a peer could pick
		// the same person.
		leased := entity.NewContactAction(entity.ActionContactLeased, actor, reason, method, entity.ResultContactLeased, entity.ActionDetail{
			PersonID:  contact.PersonID,
			FirstName: contact.FirstName,
			LastName:  contact.LastName,
		})
		if err := uc.Recorder.Record(ctx, leased); err != nil {
			return nil, err
		}

		if err := uc.Store.MarkLeased(ctx, contact.PersonID, actor.Username); err != nil {
			uc.Errors.Record(ctx, entity.NewAppError("usecase/allocate_contact", "Execute", "database error marking contact as leased", err))
			return nil, NewTechnicalError(CodeStorageError, "marking contact as leased", err)
		}

		return contact, nil
	}
}
