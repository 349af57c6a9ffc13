package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vanguardcontact/data-server/internal/config"
	"github.com/vanguardcontact/data-server/internal/entity"
	"github.com/vanguardcontact/data-server/internal/infra/http/handlers"
	"github.com/vanguardcontact/data-server/internal/usecase"
)

// MockDirectory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetActor(ctx context.Context, actorID int64) (*entity.Actor, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Actor), args.Error(1)
}

// MockStatusStore
type MockStatusStore struct {
	mock.Mock
}

func (m *MockStatusStore) GetStatus(ctx context.Context, personID int64) (*entity.ContactStatus, error) {
	args := m.Called(ctx, personID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ContactStatus), args.Error(1)
}

func (m *MockStatusStore) MarkLeased(ctx context.Context, personID int64, modifiedBy string) error {
	args := m.Called(ctx, personID, modifiedBy)
	return args.Error(0)
}

func (m *MockStatusStore) ApplyChange(ctx context.Context, personID int64, change entity.StatusChange, modifiedBy string) error {
	args := m.Called(ctx, personID, change, modifiedBy)
	return args.Error(0)
}

func (m *MockStatusStore) Delete(ctx context.Context, personID int64) error {
	args := m.Called(ctx, personID)
	return args.Error(0)
}

// MockContactRepo
type MockContactRepo struct {
	mock.Mock
}

func (m *MockContactRepo) FetchCandidates(ctx context.Context, reason entity.ContactReason, method entity.ContactMethod, limit int) ([]entity.Contact, error) {
	args := m.Called(ctx, reason, method, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Contact), args.Error(1)
}

func (m *MockContactRepo) RemovePhone(ctx context.Context, personID, phoneID int64) error {
	args := m.Called(ctx, personID, phoneID)
	return args.Error(0)
}

func (m *MockContactRepo) RemoveAddress(ctx context.Context, personID int64, addressID *int64) error {
	args := m.Called(ctx, personID, addressID)
	return args.Error(0)
}

func (m *MockContactRepo) MarkPhoneDoNotCall(ctx context.Context, personID, phoneID int64, modifiedBy string) error {
	args := m.Called(ctx, personID, phoneID, modifiedBy)
	return args.Error(0)
}

func (m *MockContactRepo) RemoveRating(ctx context.Context, personID int64) error {
	args := m.Called(ctx, personID)
	return args.Error(0)
}

// MockRecorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, action *entity.ContactAction) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}

// MockErrRecorder
type MockErrRecorder struct {
	mock.Mock
}

func (m *MockErrRecorder) Record(ctx context.Context, appErr *entity.AppError) {
	m.Called(ctx, appErr)
}

type fixture struct {
	directory *MockDirectory
	store     *MockStatusStore
	repo      *MockContactRepo
	recorder  *MockRecorder

	contactHandler  *handlers.ContactHandler
	responseHandler *handlers.ResponseHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		directory: new(MockDirectory),
		store:     new(MockStatusStore),
		repo:      new(MockContactRepo),
		recorder:  new(MockRecorder),
	}
	errs := new(MockErrRecorder)
	errs.On("Record", mock.Anything, mock.Anything).Return().Maybe()

	pool := usecase.NewQueuePool(f.repo, 100)
	allocateUC := usecase.NewAllocateContactUseCase(pool, f.store, f.recorder, errs, 23*time.Hour)
	policy := usecase.NewCooldownPolicy(testIntervals())
	outcomeUC := usecase.NewRecordOutcomeUseCase(policy, f.store, f.repo, f.recorder, errs, nil, "")

	f.contactHandler = handlers.NewContactHandler(f.directory, allocateUC)
	f.responseHandler = handlers.NewResponseHandler(f.directory, outcomeUC, allocateUC)
	return f
}

func testIntervals() config.CooldownIntervals {
	return config.CooldownIntervals{
		DonationAfterResponseMonths: 6,
		RecurringDonationYears:      4,
		PersuasionAfterDonationDays: 14,
		AfterPersuasionDays:         7,
		NoAnswerRetryDays:           7,
		RefusalMonths:               1,
	}
}

func TestContactEndpointLeasesContact(t *testing.T) {
	f := newFixture(t)

	f.directory.On("GetActor", mock.Anything, int64(42)).
		Return(&entity.Actor{ActorID: 42, Username: "jdoe", CampaignID: 7}, nil)
	f.repo.On("FetchCandidates", mock.Anything, entity.ReasonDonationRequest, entity.MethodPhoneCall, 100).
		Return([]entity.Contact{{PersonID: 100, FirstName: "Ana", LastName: "Silva"}}, nil)
	f.store.On("GetStatus", mock.Anything, int64(100)).Return(nil, nil)
	f.recorder.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.store.On("MarkLeased", mock.Anything, int64(100), "jdoe").Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/contacts?actorId=42&contactReason=Donation+request&contactMethod=Phone+call", nil)
	rec := httptest.NewRecorder()
	f.contactHandler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var contact entity.Contact
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contact))
	assert.Equal(t, int64(100), contact.PersonID)
	assert.Equal(t, "Ana", contact.FirstName)
}

func TestContactEndpointRejectsBlockedActor(t *testing.T) {
	f := newFixture(t)

	f.directory.On("GetActor", mock.Anything, int64(42)).
		Return(&entity.Actor{ActorID: 42, Username: "jdoe", IsBlocked: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/contacts?actorId=42&contactReason=Donation+request&contactMethod=Phone+call", nil)
	rec := httptest.NewRecorder()
	f.contactHandler.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Actor has been blocked")
	f.repo.AssertNotCalled(t, "FetchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestContactEndpointRequiresActorID(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/contacts?contactReason=Donation+request&contactMethod=Phone+call", nil)
	rec := httptest.NewRecorder()
	f.contactHandler.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.directory.AssertNotCalled(t, "GetActor", mock.Anything, mock.Anything)
}

func TestContactEndpointEmptyPoolIs404(t *testing.T) {
	f := newFixture(t)

	f.directory.On("GetActor", mock.Anything, int64(42)).
		Return(&entity.Actor{ActorID: 42, Username: "jdoe"}, nil)
	f.repo.On("FetchCandidates", mock.Anything, entity.ReasonTurnout, entity.MethodText, 100).
		Return([]entity.Contact{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/contacts?actorId=42&contactReason=Turnout&contactMethod=Text", nil)
	rec := httptest.NewRecorder()
	f.contactHandler.Handle(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactEndpointInvalidReasonIs400(t *testing.T) {
	f := newFixture(t)

	f.directory.On("GetActor", mock.Anything, int64(42)).
		Return(&entity.Actor{ActorID: 42, Username: "jdoe"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/contacts?actorId=42&contactReason=Birthday&contactMethod=Phone+call", nil)
	rec := httptest.NewRecorder()
	f.contactHandler.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactEndpointDirectoryFailureIs502(t *testing.T) {
	f := newFixture(t)

	f.directory.On("GetActor", mock.Anything, int64(42)).Return(nil, assert.AnError)

	req := httptest.NewRequest(http.MethodGet, "/contacts?actorId=42&contactReason=Donation+request&contactMethod=Phone+call", nil)
	rec := httptest.NewRecorder()
	f.contactHandler.Handle(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestResponseEndpointRecordsAndReturnsNextContact(t *testing.T) {
	f := newFixture(t)

	f.directory.On("GetActor", mock.Anything, int64(42)).
		Return(&entity.Actor{ActorID: 42, Username: "jdoe", CampaignID: 7}, nil)
	f.recorder.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.store.On("ApplyChange", mock.Anything, int64(100), mock.Anything, "jdoe").Return(nil)
	f.repo.On("FetchCandidates", mock.Anything, entity.ReasonDonationRequest, entity.MethodPhoneCall, 100).
		Return([]entity.Contact{{PersonID: 101, FirstName: "Bruno", LastName: "Costa"}}, nil)
	f.store.On("GetStatus", mock.Anything, int64(101)).Return(nil, nil)
	f.store.On("MarkLeased", mock.Anything, int64(101), "jdoe").Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"actorId":       42,
		"contactAction": "Contact responded",
		"contactReason": "Donation request",
		"contactMethod": "Phone call",
		"contactResult": "Negative response",
		"detail":        map[string]interface{}{"personId": 100},
	})

	req := httptest.NewRequest(http.MethodPost, "/contact-responses", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.responseHandler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status  string          `json:"status"`
		Contact *entity.Contact `json:"contact"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "recorded", resp.Status)
	assert.NotNil(t, resp.Contact)
	assert.Equal(t, int64(101), resp.Contact.PersonID)
}

func TestResponseEndpointEmptyPoolStillRecords(t *testing.T) {
	f := newFixture(t)

	f.directory.On("GetActor", mock.Anything, int64(42)).
		Return(&entity.Actor{ActorID: 42, Username: "jdoe", CampaignID: 7}, nil)
	f.recorder.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.store.On("ApplyChange", mock.Anything, int64(100), mock.Anything, "jdoe").Return(nil)
	f.repo.On("FetchCandidates", mock.Anything, entity.ReasonDonationRequest, entity.MethodPhoneCall, 100).
		Return([]entity.Contact{}, nil)

	body, _ := json.Marshal(map[string]interface{}{
		"actorId":       42,
		"contactAction": "Contact responded",
		"contactReason": "Donation request",
		"contactMethod": "Phone call",
		"contactResult": "Negative response",
		"detail":        map[string]interface{}{"personId": 100},
	})

	req := httptest.NewRequest(http.MethodPost, "/contact-responses", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.responseHandler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status  string          `json:"status"`
		Contact *entity.Contact `json:"contact"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "recorded", resp.Status)
	assert.Nil(t, resp.Contact)
}

func TestResponseEndpointBlockedActorReportStillCounts(t *testing.T) {
	f := newFixture(t)

	f.directory.On("GetActor", mock.Anything, int64(42)).
		Return(&entity.Actor{ActorID: 42, Username: "jdoe", CampaignID: 7, IsBlocked: true}, nil)
	f.recorder.On("Record", mock.Anything, mock.Anything).Return(nil)
	f.store.On("ApplyChange", mock.Anything, int64(100), mock.Anything, "jdoe").Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"actorId":       42,
		"contactAction": "Contact responded",
		"contactReason": "Donation request",
		"contactMethod": "Phone call",
		"contactResult": "Negative response",
		"detail":        map[string]interface{}{"personId": 100},
	})

	req := httptest.NewRequest(http.MethodPost, "/contact-responses", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.responseHandler.Handle(rec, req)

	// The outcome landed, but no new contact goes to a blocked actor.
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	f.store.AssertCalled(t, "ApplyChange", mock.Anything, int64(100), mock.Anything, "jdoe")
	f.repo.AssertNotCalled(t, "FetchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResponseEndpointInvalidJSONIs400(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/contact-responses", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	f.responseHandler.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.directory.AssertNotCalled(t, "GetActor", mock.Anything, mock.Anything)
}

func TestResponseEndpointInvalidTransitionIs422(t *testing.T) {
	f := newFixture(t)

	f.directory.On("GetActor", mock.Anything, int64(42)).
		Return(&entity.Actor{ActorID: 42, Username: "jdoe", CampaignID: 7}, nil)
	f.recorder.On("Record", mock.Anything, mock.Anything).Return(nil)

	// "No answer" reported as a response instead of a failed attempt.
	body, _ := json.Marshal(map[string]interface{}{
		"actorId":       42,
		"contactAction": "Contact responded",
		"contactReason": "Donation request",
		"contactMethod": "Phone call",
		"contactResult": "No answer/Not home",
		"detail":        map[string]interface{}{"personId": 100},
	})

	req := httptest.NewRequest(http.MethodPost, "/contact-responses", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	f.responseHandler.Handle(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
