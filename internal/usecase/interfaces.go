package usecase

import (
	"context"

	"github.com/vanguardcontact/data-server/internal/entity"
)

// ContactStatusStoreInterface is the storage-facing contract for the
// per-person cooldown record. Pure storage; no policy lives behind it.
type ContactStatusStoreInterface interface {
	// GetStatus returns (nil, nil) when the person is unknown locally and
	// a virtual status when the person exists without a status row.
	GetStatus(ctx context.Context, personID int64) (*entity.ContactStatus, error)

	// MarkLeased upserts the lease: INSERT first, UPDATE on a
	// unique-constraint violation.
	MarkLeased(ctx context.Context, personID int64, modifiedBy string) error

	ApplyChange(ctx context.Context, personID int64, change entity.StatusChange, modifiedBy string) error
	Delete(ctx context.Context, personID int64) error
}

// ContactRepositoryInterface reads candidate contacts and applies the
// person-data side effects of outcomes.
type ContactRepositoryInterface interface {
	FetchCandidates(ctx context.Context, reason entity.ContactReason, method entity.ContactMethod, limit int) ([]entity.Contact, error)
	RemovePhone(ctx context.Context, personID, phoneID int64) error
	// RemoveAddress deletes the given address, or the primary address when
	// addressID is nil.
	RemoveAddress(ctx context.Context, personID int64, addressID *int64) error
	MarkPhoneDoNotCall(ctx context.Context, personID, phoneID int64, modifiedBy string) error
	RemoveRating(ctx context.Context, personID int64) error
}

type ActionRepositoryInterface interface {
	Insert(ctx context.Context, action *entity.ContactAction) error
}

type ErrorRepositoryInterface interface {
	Insert(ctx context.Context, appErr *entity.AppError) error
}

// EventProducerInterface broadcasts audit events and app errors to the
// other campaign instances.
type EventProducerInterface interface {
	PublishContactAction(ctx context.Context, action *entity.ContactAction) error
	PublishAppError(ctx context.Context, appErr *entity.AppError) error
}

type ActionRecorderInterface interface {
	Record(ctx context.Context, action *entity.ContactAction) error
}

type ErrorRecorderInterface interface {
	Record(ctx context.Context, appErr *entity.AppError)
}

type MailerInterface interface {
	SendReviewNotice(to string, personID int64, note string) error
}
