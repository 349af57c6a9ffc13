package usecase

import (
	"context"
	"time"

	"github.com/vanguardcontact/data-server/internal/entity"
)

// The bounded wrappers give every storage call its own execution deadline,
// so a hung database can never stall a request or the replay consumer. A
// call that expires comes back with the context error, which the use cases
// convert to a StorageError like any other storage failure.

type boundedStatusStore struct {
	inner   ContactStatusStoreInterface
	timeout time.Duration
}

func NewBoundedStatusStore(inner ContactStatusStoreInterface, timeout time.Duration) ContactStatusStoreInterface {
	return &boundedStatusStore{inner: inner, timeout: timeout}
}

func (s *boundedStatusStore) GetStatus(ctx context.Context, personID int64) (*entity.ContactStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.GetStatus(ctx, personID)
}

func (s *boundedStatusStore) MarkLeased(ctx context.Context, personID int64, modifiedBy string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.MarkLeased(ctx, personID, modifiedBy)
}

func (s *boundedStatusStore) ApplyChange(ctx context.Context, personID int64, change entity.StatusChange, modifiedBy string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.ApplyChange(ctx, personID, change, modifiedBy)
}

func (s *boundedStatusStore) Delete(ctx context.Context, personID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.inner.Delete(ctx, personID)
}

type boundedContactRepository struct {
	inner   ContactRepositoryInterface
	timeout time.Duration
}

func NewBoundedContactRepository(inner ContactRepositoryInterface, timeout time.Duration) ContactRepositoryInterface {
	return &boundedContactRepository{inner: inner, timeout: timeout}
}

func (r *boundedContactRepository) FetchCandidates(ctx context.Context, reason entity.ContactReason, method entity.ContactMethod, limit int) ([]entity.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.FetchCandidates(ctx, reason, method, limit)
}

func (r *boundedContactRepository) RemovePhone(ctx context.Context, personID, phoneID int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.RemovePhone(ctx, personID, phoneID)
}

func (r *boundedContactRepository) RemoveAddress(ctx context.Context, personID int64, addressID *int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.RemoveAddress(ctx, personID, addressID)
}

func (r *boundedContactRepository) MarkPhoneDoNotCall(ctx context.Context, personID, phoneID int64, modifiedBy string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.MarkPhoneDoNotCall(ctx, personID, phoneID, modifiedBy)
}

func (r *boundedContactRepository) RemoveRating(ctx context.Context, personID int64) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.RemoveRating(ctx, personID)
}

type boundedActionRepository struct {
	inner   ActionRepositoryInterface
	timeout time.Duration
}

func NewBoundedActionRepository(inner ActionRepositoryInterface, timeout time.Duration) ActionRepositoryInterface {
	return &boundedActionRepository{inner: inner, timeout: timeout}
}

func (r *boundedActionRepository) Insert(ctx context.Context, action *entity.ContactAction) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.Insert(ctx, action)
}

type boundedErrorRepository struct {
	inner   ErrorRepositoryInterface
	timeout time.Duration
}

func NewBoundedErrorRepository(inner ErrorRepositoryInterface, timeout time.Duration) ErrorRepositoryInterface {
	return &boundedErrorRepository{inner: inner, timeout: timeout}
}

func (r *boundedErrorRepository) Insert(ctx context.Context, appErr *entity.AppError) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.inner.Insert(ctx, appErr)
}
