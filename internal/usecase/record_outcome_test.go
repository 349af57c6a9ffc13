package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vanguardcontact/data-server/internal/entity"
	"github.com/vanguardcontact/data-server/internal/usecase"
)

func newOutcomeFixture(t *testing.T) (*usecase.RecordOutcomeUseCase, *MockContactStatusStore, *MockContactRepository, *MockActionRecorder, *MockErrorRecorder, *MockMailer) {
	t.Helper()
	store := new(MockContactStatusStore)
	contacts := new(MockContactRepository)
	recorder := new(MockActionRecorder)
	errs := new(MockErrorRecorder)
	mailer := new(MockMailer)
	policy := usecase.NewCooldownPolicy(testIntervals())
	uc := usecase.NewRecordOutcomeUseCase(policy, store, contacts, recorder, errs, mailer, "review@vanguardcontact.com")
	return uc, store, contacts, recorder, errs, mailer
}

func TestRecordOutcomeAppliesCooldown(t *testing.T) {
	ctx := context.Background()
	uc, store, _, recorder, _, _ := newOutcomeFixture(t)

	recorder.On("Record", ctx, mock.Anything).Return(nil)

	var applied entity.StatusChange
	store.On("ApplyChange", ctx, int64(100), mock.Anything, "jdoe").
		Run(func(args mock.Arguments) {
			applied = args.Get(2).(entity.StatusChange)
		}).Return(nil)

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact responded",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Negative response",
		Detail: entity.ActionDetail{PersonID: 100},
	})

	assert.NoError(t, err)
	recorder.AssertNumberOfCalls(t, "Record", 1)
	assert.NotNil(t, applied.DonationRequestAllowedDate)
	assert.NotNil(t, applied.PersuasionAttemptAllowedDate)
	assert.True(t, applied.ClearCallback)
}

func TestRecordOutcomeAuditGoesFirst(t *testing.T) {
	ctx := context.Background()
	uc, store, _, recorder, _, _ := newOutcomeFixture(t)

	var order []string
	recorder.On("Record", ctx, mock.Anything).Run(func(mock.Arguments) {
		order = append(order, "audit")
	}).Return(nil)
	store.On("ApplyChange", ctx, int64(100), mock.Anything, "jdoe").Run(func(mock.Arguments) {
		order = append(order, "apply")
	}).Return(nil)

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact responded",
		Reason: "Persuasion",
		Method: "Canvass",
		Result: "Positive response",
		Detail: entity.ActionDetail{PersonID: 100},
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"audit", "apply"}, order)
}

func TestRecordOutcomeStopsWhenAuditFails(t *testing.T) {
	ctx := context.Background()
	uc, store, contacts, recorder, _, _ := newOutcomeFixture(t)

	recorder.On("Record", ctx, mock.Anything).
		Return(usecase.NewTechnicalError(usecase.CodeStorageError, "inserting contact action", assert.AnError))

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact responded",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Negative response",
		Detail: entity.ActionDetail{PersonID: 100},
	})

	assert.True(t, usecase.IsTechnicalError(err))
	store.AssertNotCalled(t, "ApplyChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	contacts.AssertNotCalled(t, "RemoveRating", mock.Anything, mock.Anything)
}

func TestRecordOutcomeValidatesInput(t *testing.T) {
	ctx := context.Background()
	uc, _, _, recorder, _, _ := newOutcomeFixture(t)

	// Unknown result string.
	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact responded",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Maybe later",
		Detail: entity.ActionDetail{PersonID: 100},
	})
	assert.Equal(t, usecase.CodeInvalidArgument, usecase.ErrorCode(err))

	// Callback without its required detail fields.
	err = uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact responded",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Callback scheduled",
		Detail: entity.ActionDetail{PersonID: 100},
	})
	assert.Equal(t, usecase.CodeInvalidArgument, usecase.ErrorCode(err))

	// Missing person.
	err = uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact responded",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Negative response",
	})
	assert.Equal(t, usecase.CodeInvalidArgument, usecase.ErrorCode(err))

	recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestRecordOutcomeDeceasedRemovesPerson(t *testing.T) {
	ctx := context.Background()
	uc, store, contacts, recorder, _, _ := newOutcomeFixture(t)

	recorder.On("Record", ctx, mock.Anything).Return(nil)
	contacts.On("RemoveRating", ctx, int64(100)).Return(nil)
	store.On("Delete", ctx, int64(100)).Return(nil)

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact attempt failed",
		Reason: "Persuasion",
		Method: "Phone call",
		Result: "Contact is deceased",
		Detail: entity.ActionDetail{PersonID: 100},
	})

	assert.NoError(t, err)
	contacts.AssertCalled(t, "RemoveRating", ctx, int64(100))
	store.AssertCalled(t, "Delete", ctx, int64(100))
	store.AssertNotCalled(t, "ApplyChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordOutcomeInvalidPhoneRemovesIt(t *testing.T) {
	ctx := context.Background()
	uc, store, contacts, recorder, _, _ := newOutcomeFixture(t)

	phoneID := int64(555)
	recorder.On("Record", ctx, mock.Anything).Return(nil)
	contacts.On("RemovePhone", ctx, int64(100), int64(555)).Return(nil)

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact attempt failed",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Phone/Address is invalid",
		Detail: entity.ActionDetail{PersonID: 100, PhoneID: &phoneID},
	})

	assert.NoError(t, err)
	contacts.AssertCalled(t, "RemovePhone", ctx, int64(100), int64(555))
	// Pure side effect, no status row change.
	store.AssertNotCalled(t, "ApplyChange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordOutcomeRefusedByPhoneMarksDoNotCall(t *testing.T) {
	ctx := context.Background()
	uc, _, contacts, recorder, _, _ := newOutcomeFixture(t)

	phoneID := int64(555)
	recorder.On("Record", ctx, mock.Anything).Return(nil)
	contacts.On("MarkPhoneDoNotCall", ctx, int64(100), int64(555), "jdoe").Return(nil)

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact attempt failed",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Refused (Do not call again)",
		Detail: entity.ActionDetail{PersonID: 100, PhoneID: &phoneID},
	})

	assert.NoError(t, err)
	contacts.AssertCalled(t, "MarkPhoneDoNotCall", ctx, int64(100), int64(555), "jdoe")
}

func TestRecordOutcomeMovedRemovesPrimaryAddress(t *testing.T) {
	ctx := context.Background()
	uc, _, contacts, recorder, _, _ := newOutcomeFixture(t)

	recorder.On("Record", ctx, mock.Anything).Return(nil)
	contacts.On("RemoveAddress", ctx, int64(100), (*int64)(nil)).Return(nil)

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact attempt failed",
		Reason: "Turnout",
		Method: "Canvass",
		Result: "Contact has moved",
		Detail: entity.ActionDetail{PersonID: 100},
	})

	assert.NoError(t, err)
	contacts.AssertCalled(t, "RemoveAddress", ctx, int64(100), (*int64)(nil))
}

func TestRecordOutcomeReviewSendsNotice(t *testing.T) {
	ctx := context.Background()
	uc, store, _, recorder, _, mailer := newOutcomeFixture(t)

	recorder.On("Record", ctx, mock.Anything).Return(nil)
	store.On("ApplyChange", ctx, int64(100), mock.Anything, "jdoe").Return(nil)
	mailer.On("SendReviewNotice", "review@vanguardcontact.com", int64(100), "knows the candidate personally").Return(nil)

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact rejected",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Other",
		Detail: entity.ActionDetail{PersonID: 100, Note: "knows the candidate personally"},
	})

	assert.NoError(t, err)
	mailer.AssertCalled(t, "SendReviewNotice", "review@vanguardcontact.com", int64(100), "knows the candidate personally")
}

func TestRecordOutcomeMailFailureDoesNotFailOutcome(t *testing.T) {
	ctx := context.Background()
	uc, store, _, recorder, errs, mailer := newOutcomeFixture(t)

	recorder.On("Record", ctx, mock.Anything).Return(nil)
	store.On("ApplyChange", ctx, int64(100), mock.Anything, "jdoe").Return(nil)
	mailer.On("SendReviewNotice", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	errs.On("Record", ctx, mock.Anything).Return()

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact rejected",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Contact is elected official",
		Detail: entity.ActionDetail{PersonID: 100, Note: "state senator"},
	})

	assert.NoError(t, err)
	errs.AssertCalled(t, "Record", ctx, mock.Anything)
}

func TestRecordOutcomeWithoutMailerSkipsNotice(t *testing.T) {
	ctx := context.Background()
	store := new(MockContactStatusStore)
	recorder := new(MockActionRecorder)
	policy := usecase.NewCooldownPolicy(testIntervals())
	uc := usecase.NewRecordOutcomeUseCase(policy, store, new(MockContactRepository), recorder, new(MockErrorRecorder), nil, "")

	recorder.On("Record", ctx, mock.Anything).Return(nil)
	store.On("ApplyChange", ctx, int64(100), mock.Anything, "jdoe").Return(nil)

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact rejected",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Other",
		Detail: entity.ActionDetail{PersonID: 100, Note: "needs a supervisor"},
	})

	assert.NoError(t, err)
}

func TestRecordOutcomeCallbackScheduled(t *testing.T) {
	ctx := context.Background()
	uc, store, _, recorder, _, _ := newOutcomeFixture(t)

	cb := time.Date(2025, 4, 1, 19, 0, 0, 0, time.UTC)
	actorID := int64(42)

	recorder.On("Record", ctx, mock.Anything).Return(nil)
	var applied entity.StatusChange
	store.On("ApplyChange", ctx, int64(100), mock.Anything, "jdoe").
		Run(func(args mock.Arguments) {
			applied = args.Get(2).(entity.StatusChange)
		}).Return(nil)

	err := uc.Execute(ctx, testActor(), usecase.RecordOutcomeInput{
		Action: "Contact responded",
		Reason: "Donation request",
		Method: "Phone call",
		Result: "Callback scheduled",
		Detail: entity.ActionDetail{PersonID: 100, CallbackTimestamp: &cb, CallbackActorID: &actorID},
	})

	assert.NoError(t, err)
	assert.True(t, applied.SetCallback)
	assert.Equal(t, cb, *applied.CallbackTimestamp)
	assert.Equal(t, actorID, *applied.CallbackActorID)
}
