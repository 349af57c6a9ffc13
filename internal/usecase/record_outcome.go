package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vanguardcontact/data-server/internal/entity"
)

type RecordOutcomeInput struct {
	Action string              `json:"contactAction"`
	Reason string              `json:"contactReason"`
	Method string              `json:"contactMethod"`
	Result string              `json:"contactResult"`
	Detail entity.ActionDetail `json:"detail"`
}

// RecordOutcomeUseCase processes an actor's report of what happened on a
// contact attempt: it records and broadcasts the audit event, runs the
// cooldown policy, and applies the resulting change-set.
type RecordOutcomeUseCase struct {
	Policy   *CooldownPolicy
	Store    ContactStatusStoreInterface
	Contacts ContactRepositoryInterface
	Recorder ActionRecorderInterface
	Errors   ErrorRecorderInterface

	// Review notices are best-effort; a mail failure never fails the
	// outcome. Mailer may be nil when mail is not configured.
	Mailer            MailerInterface
	ReviewNotifyEmail string
}

func NewRecordOutcomeUseCase(policy *CooldownPolicy, store ContactStatusStoreInterface, contacts ContactRepositoryInterface, recorder ActionRecorderInterface, errors ErrorRecorderInterface, mailer MailerInterface, reviewNotifyEmail string) *RecordOutcomeUseCase {
	return &RecordOutcomeUseCase{
		Policy:            policy,
		Store:             store,
		Contacts:          contacts,
		Recorder:          recorder,
		Errors:            errors,
		Mailer:            mailer,
		ReviewNotifyEmail: reviewNotifyEmail,
	}
}

func (uc *RecordOutcomeUseCase) Execute(ctx context.Context, actor *entity.Actor, input RecordOutcomeInput) error {
	kind, ok := entity.ParseContactActionKind(input.Action)
	if !ok {
		return NewDomainError(CodeInvalidArgument, fmt.Sprintf("%q is not a valid contact action", input.Action))
	}
	reason, ok := entity.ParseContactReason(input.Reason)
	if !ok {
		return NewDomainError(CodeInvalidArgument, fmt.Sprintf("%q is not a valid contact reason", input.Reason))
	}
	method, ok := entity.ParseContactMethod(input.Method)
	if !ok {
		return NewDomainError(CodeInvalidArgument, fmt.Sprintf("%q is not a valid contact method", input.Method))
	}
	result, ok := entity.ParseContactResult(input.Result)
	if !ok {
		return NewDomainError(CodeInvalidArgument, fmt.Sprintf("%q is not a valid contact result", input.Result))
	}
	if err := input.Detail.Validate(kind, method, result); err != nil {
		return NewDomainError(CodeInvalidArgument, err.Error())
	}

	// The audit record goes first: it is both the durable trace and the
	// broadcast that lets the other campaigns converge.
	action := entity.NewContactAction(kind, actor, reason, method, result, input.Detail)
	if err := uc.Recorder.Record(ctx, action); err != nil {
		return err
	}

	change, err := uc.Policy.Evaluate(time.Now(), kind, reason, method, result, input.Detail)
	if err != nil {
		uc.Errors.Record(ctx, entity.NewAppError("usecase/record_outcome", "Execute", err.Error(), err))
		return err
	}

	if err := uc.apply(ctx, input.Detail, change, actor.Username); err != nil {
		return err
	}

	if change.ReviewRequired {
		uc.notifyReview(ctx, input.Detail.PersonID, change.ReviewRequiredNote)
	}
	return nil
}

func (uc *RecordOutcomeUseCase) apply(ctx context.Context, detail entity.ActionDetail, change entity.StatusChange, modifiedBy string) error {
	personID := detail.PersonID

	if change.DeletePerson {
		if err := uc.Contacts.RemoveRating(ctx, personID); err != nil {
			return uc.storageError(ctx, "removing contact rating", err)
		}
		if err := uc.Store.Delete(ctx, personID); err != nil {
			return uc.storageError(ctx, "deleting contact status", err)
		}
		return nil
	}

	if change.RemovePhone && detail.PhoneID != nil {
		if err := uc.Contacts.RemovePhone(ctx, personID, *detail.PhoneID); err != nil {
			return uc.storageError(ctx, "removing phone", err)
		}
	}
	if change.RemoveAddress {
		if err := uc.Contacts.RemoveAddress(ctx, personID, detail.AddressID); err != nil {
			return uc.storageError(ctx, "removing address", err)
		}
	}
	if change.MarkPhoneDoNotCall && detail.PhoneID != nil {
		if err := uc.Contacts.MarkPhoneDoNotCall(ctx, personID, *detail.PhoneID, modifiedBy); err != nil {
			return uc.storageError(ctx, "marking phone do-not-call", err)
		}
	}

	if change.TouchesStatus() {
		if err := uc.Store.ApplyChange(ctx, personID, change, modifiedBy); err != nil {
			return uc.storageError(ctx, "updating contact status", err)
		}
	}
	return nil
}

func (uc *RecordOutcomeUseCase) storageError(ctx context.Context, op string, err error) error {
	uc.Errors.Record(ctx, entity.NewAppError("usecase/record_outcome", "apply", "database error "+op, err))
	return NewTechnicalError(CodeStorageError, op, err)
}

func (uc *RecordOutcomeUseCase) notifyReview(ctx context.Context, personID int64, note string) {
	if uc.Mailer == nil || uc.ReviewNotifyEmail == "" {
		return
	}
	if err := uc.Mailer.SendReviewNotice(uc.ReviewNotifyEmail, personID, note); err != nil {
		log.Printf("record outcome: sending review notice for person %d: %v", personID, err)
		uc.Errors.Record(ctx, entity.NewAppError("usecase/record_outcome", "notifyReview", "error sending review notice email", err))
	}
}
