package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vanguardcontact/data-server/internal/entity"
)

// MockContactStatusStore
type MockContactStatusStore struct {
	mock.Mock
}

func (m *MockContactStatusStore) GetStatus(ctx context.Context, personID int64) (*entity.ContactStatus, error) {
	args := m.Called(ctx, personID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ContactStatus), args.Error(1)
}

func (m *MockContactStatusStore) MarkLeased(ctx context.Context, personID int64, modifiedBy string) error {
	args := m.Called(ctx, personID, modifiedBy)
	return args.Error(0)
}

func (m *MockContactStatusStore) ApplyChange(ctx context.Context, personID int64, change entity.StatusChange, modifiedBy string) error {
	args := m.Called(ctx, personID, change, modifiedBy)
	return args.Error(0)
}

func (m *MockContactStatusStore) Delete(ctx context.Context, personID int64) error {
	args := m.Called(ctx, personID)
	return args.Error(0)
}

// MockContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) FetchCandidates(ctx context.Context, reason entity.ContactReason, method entity.ContactMethod, limit int) ([]entity.Contact, error) {
	args := m.Called(ctx, reason, method, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Contact), args.Error(1)
}

func (m *MockContactRepository) RemovePhone(ctx context.Context, personID, phoneID int64) error {
	args := m.Called(ctx, personID, phoneID)
	return args.Error(0)
}

func (m *MockContactRepository) RemoveAddress(ctx context.Context, personID int64, addressID *int64) error {
	args := m.Called(ctx, personID, addressID)
	return args.Error(0)
}

func (m *MockContactRepository) MarkPhoneDoNotCall(ctx context.Context, personID, phoneID int64, modifiedBy string) error {
	args := m.Called(ctx, personID, phoneID, modifiedBy)
	return args.Error(0)
}

func (m *MockContactRepository) RemoveRating(ctx context.Context, personID int64) error {
	args := m.Called(ctx, personID)
	return args.Error(0)
}

// MockActionRecorder
type MockActionRecorder struct {
	mock.Mock
}

func (m *MockActionRecorder) Record(ctx context.Context, action *entity.ContactAction) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}

// MockErrorRecorder
type MockErrorRecorder struct {
	mock.Mock
}

func (m *MockErrorRecorder) Record(ctx context.Context, appErr *entity.AppError) {
	m.Called(ctx, appErr)
}

// MockMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendReviewNotice(to string, personID int64, note string) error {
	args := m.Called(to, personID, note)
	return args.Error(0)
}

func testActor() *entity.Actor {
	return &entity.Actor{
		ActorID:    42,
		Username:   "jdoe",
		FirstName:  "Jane",
		LastName:   "Doe",
		ClientID:   1,
		CampaignID: 7,
	}
}
