package usecase

import (
	"context"
	"log"

	"github.com/vanguardcontact/data-server/internal/entity"
)

// ErrorRecorder durably records an application error and broadcasts it on
// the AppErrors channel. Recording must never fail the operation that hit
// the error, so all failures here are logged and swallowed.
type ErrorRecorder struct {
	Repo     ErrorRepositoryInterface
	Producer EventProducerInterface
}

func NewErrorRecorder(repo ErrorRepositoryInterface, producer EventProducerInterface) *ErrorRecorder {
	return &ErrorRecorder{Repo: repo, Producer: producer}
}

func (r *ErrorRecorder) Record(ctx context.Context, appErr *entity.AppError) {
	if err := r.Repo.Insert(ctx, appErr); err != nil {
		log.Printf("error recorder: storing app error: %v", err)
		// The store failed; the broadcast below is the only durable trace.
	}
	if err := r.Producer.PublishAppError(ctx, appErr); err != nil {
		log.Printf("error recorder: broadcasting app error: %v", err)
	}
}

// ActionRecorder appends a ContactAction to the audit log and broadcasts
// it to the other campaign instances. Both steps must happen; a failure at
// either is itself recorded before being returned.
type ActionRecorder struct {
	Repo     ActionRepositoryInterface
	Producer EventProducerInterface
	Errors   ErrorRecorderInterface
}

func NewActionRecorder(repo ActionRepositoryInterface, producer EventProducerInterface, errors ErrorRecorderInterface) *ActionRecorder {
	return &ActionRecorder{Repo: repo, Producer: producer, Errors: errors}
}

func (r *ActionRecorder) Record(ctx context.Context, action *entity.ContactAction) error {
	if err := r.Repo.Insert(ctx, action); err != nil {
		r.Errors.Record(ctx, entity.NewAppError("usecase/recorder", "Record", "database error recording contact action", err))
		return NewTechnicalError(CodeStorageError, "recording contact action", err)
	}
	if err := r.Producer.PublishContactAction(ctx, action); err != nil {
		r.Errors.Record(ctx, entity.NewAppError("usecase/recorder", "Record", "error broadcasting contact action", err))
		return NewTechnicalError(CodeTransportError, "broadcasting contact action", err)
	}
	return nil
}
